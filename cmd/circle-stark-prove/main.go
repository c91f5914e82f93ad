// Command circle-stark-prove proves and verifies §8 scenario A's constant
// statement from a small JSON-lines stdin protocol, in the same shape as
// the teacher's stdin-JSON-lines prover: one JSON value per line, a fatal
// logged to stderr and a non-zero exit on any read, parse, proving or
// serialization failure, the result written to stdout as one JSON line. A
// failed self-verification is logged and reported as "verified": false.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/pkg/circlestark"
)

// StatementInput is a Statement's two claimed sums, each a QM31 given as
// its four base-field coordinates (c0.a, c0.b, c1.a, c1.b).
type StatementInput struct {
	XAxisClaimedSum [4]uint32 `json:"x_axis_claimed_sum"`
	YAxisClaimedSum [4]uint32 `json:"y_axis_claimed_sum"`
}

// ConfigInput mirrors pkg/circlestark.Config at the JSON boundary; a field
// absent from the JSON falls back to circlestark.DefaultConfig()'s value,
// while an explicit zero is kept.
type ConfigInput struct {
	PowBits                 *uint32 `json:"pow_bits"`
	LogBlowupFactor         *uint32 `json:"log_blowup_factor"`
	LogLastLayerDegreeBound *uint32 `json:"log_last_layer_degree_bound"`
	NQueries                *uint64 `json:"n_queries"`
}

func (c ConfigInput) resolve() circlestark.Config {
	cfg := circlestark.DefaultConfig()
	if c.PowBits != nil {
		cfg.PowBits = *c.PowBits
	}
	if c.LogBlowupFactor != nil {
		cfg.Fri.LogBlowupFactor = *c.LogBlowupFactor
	}
	if c.LogLastLayerDegreeBound != nil {
		cfg.Fri.LogLastLayerDegreeBound = *c.LogLastLayerDegreeBound
	}
	if c.NQueries != nil {
		cfg.Fri.NQueries = *c.NQueries
	}
	return cfg
}

func toQM31(coords [4]uint32) m31.QM31 {
	return m31.FromM31Array([4]m31.M31{
		m31.M31(coords[0]), m31.M31(coords[1]), m31.M31(coords[2]), m31.M31(coords[3]),
	})
}

// Output is the stdout value: a JSON artifact (config input, statement,
// expected constant, and proof) plus the verification outcome, so a caller
// can confirm the proof this process just produced also verifies before
// shipping it onward.
type Output struct {
	Verified bool            `json:"verified"`
	Artifact json.RawMessage `json:"artifact"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)

	// Line 1: statement (two claimed sums).
	if !scanner.Scan() {
		fatal("failed to read statement")
	}
	var stmtInput StatementInput
	if err := json.Unmarshal(scanner.Bytes(), &stmtInput); err != nil {
		fatal(fmt.Sprintf("failed to parse statement: %v", err))
	}

	// Line 2: expected constant.
	if !scanner.Scan() {
		fatal("failed to read expected constant")
	}
	var expectedInput [4]uint32
	if err := json.Unmarshal(scanner.Bytes(), &expectedInput); err != nil {
		fatal(fmt.Sprintf("failed to parse expected constant: %v", err))
	}

	// Line 3: pcs/fri config (optional; blank line falls back to defaults).
	if !scanner.Scan() {
		fatal("failed to read config")
	}
	var configInput ConfigInput
	if line := scanner.Bytes(); len(line) > 0 {
		if err := json.Unmarshal(line, &configInput); err != nil {
			fatal(fmt.Sprintf("failed to parse config: %v", err))
		}
	}

	stmt := circlestark.Statement{
		XAxisClaimedSum: toQM31(stmtInput.XAxisClaimedSum),
		YAxisClaimedSum: toQM31(stmtInput.YAxisClaimedSum),
	}
	expected := toQM31(expectedInput)
	config := configInput.resolve()

	logStderr("proving constant statement...")
	prover := circlestark.NewConstantProver(config)
	proof, err := prover.Prove(stmt, expected)
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	logStderr(fmt.Sprintf("proof generated, nonce=%d", proof.Nonce))

	logStderr("verifying generated proof...")
	verifier := circlestark.NewConstantVerifier(config)
	verifyErr := verifier.Verify(proof, stmt, expected)
	if verifyErr != nil {
		logStderr(fmt.Sprintf("self-verification failed: %v", verifyErr))
	}

	artifactJSON, err := json.Marshal(struct {
		SchemaVersion int                     `json:"schema_version"`
		Config        ConfigInput             `json:"config"`
		Statement     StatementInput          `json:"statement"`
		Expected      [4]uint32               `json:"expected"`
		Proof         circlestark.ConstantProof `json:"proof"`
	}{
		SchemaVersion: 1,
		Config:        configInput,
		Statement:     stmtInput,
		Expected:      expectedInput,
		Proof:         *proof,
	})
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize artifact: %v", err))
	}

	out, err := json.Marshal(Output{Verified: verifyErr == nil, Artifact: artifactJSON})
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize output: %v", err))
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "circle-stark-prove:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
