package pcs

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// Config bundles the FRI configuration with the proof-of-work grinding
// difficulty that together fix the scheme's soundness.
type Config struct {
	PowBits uint32
	Fri     fri.Config
}

// SecurityBits estimates the scheme's soundness in bits: the FRI query
// count scaled by the blowup factor, plus the grinding difficulty.
func (c Config) SecurityBits() uint32 {
	return uint32(c.Fri.NQueries)*c.Fri.LogBlowupFactor + c.PowBits
}

// MixInto absorbs the config into ch as a single packed QM31, so prover and
// verifier transcripts diverge immediately on any configuration mismatch
// rather than only once query positions are drawn.
func (c Config) MixInto(ch *channel.Channel) {
	ch.MixFelts([]m31.QM31{m31.FromM31Array([4]m31.M31{
		m31.M31(c.PowBits),
		m31.M31(c.Fri.LogBlowupFactor),
		m31.M31(c.Fri.NQueries),
		m31.M31(c.Fri.LogLastLayerDegreeBound),
	})})
}
