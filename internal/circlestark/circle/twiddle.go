package circle

import "github.com/vybium/circle-stark/internal/circlestark/m31"

// batchInverseThreshold is the size at or above which TwiddleTree construction
// uses the chunked batch inverse instead of inverting each twiddle directly.
const batchInverseThreshold = 1 << 8

// TwiddleTree caches the per-layer twiddle factors (and their inverses) for
// a root coset, so repeated evaluations/interpolations against domains built
// from that coset avoid recomputing coset point arithmetic. YLayer holds the
// circle (y-coordinate) fold factors; XLayers[j] holds the line (x-coordinate)
// fold factors at recursion depth j, where XLayers[0] is rootCoset's own
// x-coordinates and XLayers[j] is rootCoset doubled j times.
type TwiddleTree struct {
	RootCoset Coset

	YLayer     []m31.M31
	XLayers    [][]m31.M31
	YLayerInv  []m31.M31
	XLayersInv [][]m31.M31
}

// NewTwiddleTree builds the twiddle layers for rootCoset (normally a
// CircleDomain's half coset).
func NewTwiddleTree(rootCoset Coset) *TwiddleTree {
	n := rootCoset.LogSize

	yLayer := make([]m31.M31, rootCoset.Size())
	for k := range yLayer {
		yLayer[k] = rootCoset.At(k).Y
	}

	xLayers := make([][]m31.M31, 0, n)
	cur := rootCoset
	for cur.LogSize > 0 {
		layer := make([]m31.M31, cur.Size()/2)
		for k := range layer {
			layer[k] = cur.At(k).X
		}
		xLayers = append(xLayers, layer)
		cur = cur.Double()
	}

	return &TwiddleTree{
		RootCoset:  rootCoset,
		YLayer:     yLayer,
		XLayers:    xLayers,
		YLayerInv:  invertLayer(yLayer),
		XLayersInv: invertLayers(xLayers),
	}
}

func invertLayer(layer []m31.M31) []m31.M31 {
	if len(layer) == 0 {
		return nil
	}
	if len(layer) >= batchInverseThreshold {
		out, err := m31.BatchInverseChunked(layer, batchInverseThreshold)
		if err != nil {
			panic(err)
		}
		return out
	}
	out, err := m31.BatchInverse(layer)
	if err != nil {
		panic(err)
	}
	return out
}

func invertLayers(layers [][]m31.M31) [][]m31.M31 {
	out := make([][]m31.M31, len(layers))
	for i, l := range layers {
		out[i] = invertLayer(l)
	}
	return out
}
