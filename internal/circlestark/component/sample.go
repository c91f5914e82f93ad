package component

import (
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// PointSample is a single opening: a polynomial's claimed value at a
// secure-field circle point.
type PointSample struct {
	Point circle.CirclePoint[m31.QM31]
	Value m31.QM31
}

// SampleEntry is one column's contribution to a ColumnSampleBatch: the
// column's index, its sampled value, and the random-coefficient power
// assigned to it during batching.
type SampleEntry struct {
	ColumnIndex int
	Value       m31.QM31
	RandomCoeff m31.QM31
}

// ColumnSampleBatch groups every sample taken at the same point, across
// every column, so the quotient engine can cancel them with one shared
// complex-conjugate line.
type ColumnSampleBatch struct {
	Point   circle.CirclePoint[m31.QM31]
	Samples []SampleEntry
}

// GroupSamplesByPoint groups parallel (point, column index, value, random
// coefficient) entries into ColumnSampleBatches, preserving the
// first-occurrence order of distinct points. points, columnIndices, values,
// and randomCoeffs must have equal length.
func GroupSamplesByPoint(points []circle.CirclePoint[m31.QM31], columnIndices []int, values, randomCoeffs []m31.QM31) []ColumnSampleBatch {
	batchIndex := make(map[circle.CirclePoint[m31.QM31]]int, len(points))
	var batches []ColumnSampleBatch
	for i, p := range points {
		idx, ok := batchIndex[p]
		if !ok {
			idx = len(batches)
			batchIndex[p] = idx
			batches = append(batches, ColumnSampleBatch{Point: p})
		}
		batches[idx].Samples = append(batches[idx].Samples, SampleEntry{
			ColumnIndex: columnIndices[i],
			Value:       values[i],
			RandomCoeff: randomCoeffs[i],
		})
	}
	return batches
}
