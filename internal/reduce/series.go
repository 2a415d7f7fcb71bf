package reduce

import "math"

// Bucket is one windowed output point: the average of a window and its envelope.
type Bucket struct {
	X   float64
	Avg float64
	Min float64
	Max float64
}

// Series is an ordered sequence of (x, y) points.
type Series struct {
	X []float64
	Y []float64
}

func (s Series) Len() int { return len(s.X) }

// MixedSeries splits a per-record series by data direction. At every ordinal exactly
// one of Reads, Writes and Trims holds a value; the others hold NaN.
type MixedSeries struct {
	X      []float64
	Reads  []float64
	Writes []float64
	Trims  []float64
}

func (m MixedSeries) Len() int { return len(m.X) }

// HasTrims reports whether any trim record was seen.
func (m MixedSeries) HasTrims() bool {
	for _, v := range m.Trims {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// CombinedSeries is the result of merging several series. len(X) == len(Y) and X is
// strictly increasing.
type CombinedSeries struct {
	X []float64
	Y []float64
}

// AverageSeries projects buckets onto their averages.
func AverageSeries(buckets []Bucket) Series {
	s := Series{X: make([]float64, len(buckets)), Y: make([]float64, len(buckets))}
	for i, b := range buckets {
		s.X[i] = b.X
		s.Y[i] = b.Avg
	}
	return s
}
