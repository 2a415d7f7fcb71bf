package reduce

import (
	"fmt"
	"slices"
	"sort"
)

// Combine merges series into one. The x axis is the sorted union of every input's
// x values. Y values are summed by position, not by x: each series is zero-padded
// at the tail to the longest input. The sum is then fitted to the union: padded
// with zeros when the union is longer, truncated when repeated x values made it
// shorter. Inputs that share a time base, such as io_count series, are summed
// correctly; callers mixing time bases should use CombineAligned.
func Combine(series ...Series) (CombinedSeries, error) {
	longest := 0
	for i, s := range series {
		if err := checkShape(s); err != nil {
			return CombinedSeries{}, fmt.Errorf("series %d: %w", i, err)
		}
		longest = max(longest, len(s.Y))
	}

	x := unionX(series)
	y := make([]float64, max(longest, len(x)))
	for _, s := range series {
		for i, v := range s.Y {
			y[i] += v
		}
	}
	return CombinedSeries{X: x, Y: y[:len(x)]}, nil
}

// CombineAligned merges series by summing the y values found at each x.
func CombineAligned(series ...Series) (CombinedSeries, error) {
	for i, s := range series {
		if err := checkShape(s); err != nil {
			return CombinedSeries{}, fmt.Errorf("series %d: %w", i, err)
		}
	}

	x := unionX(series)
	y := make([]float64, len(x))
	for _, s := range series {
		for i, xv := range s.X {
			y[sort.SearchFloat64s(x, xv)] += s.Y[i]
		}
	}
	return CombinedSeries{X: x, Y: y}, nil
}

// CombineWith dispatches to Combine or CombineAligned.
func CombineWith(strategy CombineStrategy, series ...Series) (CombinedSeries, error) {
	switch strategy {
	case CombineStrategyPositional, "":
		return Combine(series...)
	case CombineStrategyAligned:
		return CombineAligned(series...)
	default:
		return CombinedSeries{}, fmt.Errorf("%w: %q", ErrInvalidCombine, strategy)
	}
}

func unionX(series []Series) []float64 {
	total := 0
	for _, s := range series {
		total += len(s.X)
	}
	x := make([]float64, 0, total)
	for _, s := range series {
		x = append(x, s.X...)
	}
	slices.Sort(x)
	return slices.Compact(x)
}

func checkShape(s Series) error {
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("%w: %d x, %d y", ErrSeriesShape, len(s.X), len(s.Y))
	}
	return nil
}
