package fri

// Config bounds the prover and verifier's fold schedule and query count.
type Config struct {
	LogBlowupFactor         uint32
	LogLastLayerDegreeBound uint32
	NQueries                int
}

// LastLayerDomainSize returns the line-domain size at which folding halts:
// 2^LogLastLayerDegreeBound.
func (c Config) LastLayerDomainSize() int {
	return 1 << c.LogLastLayerDegreeBound
}

// DegreeBound is a claimed circle polynomial degree bound, expressed as its
// base-2 logarithm, e.g. the lifting log-size minus log_blowup_factor.
type DegreeBound uint32

// NumInnerLayers returns how many line-to-line fold layers a FRI run over a
// circle domain of circleLogSize must perform before reaching the last
// layer: the initial circle-to-line fold drops one level, then every inner
// fold drops one more until the domain matches LastLayerDomainSize.
func (c Config) NumInnerLayers(circleLogSize int) int {
	n := circleLogSize - 1 - int(c.LogLastLayerDegreeBound)
	if n < 0 {
		return 0
	}
	return n
}
