package reduce

import (
	"math"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

// Point is a single (x, y) sample.
type Point struct {
	X, Y float64
}

// SampleBuilder maps each record to one point: its ordinal and scaled value.
type SampleBuilder struct {
	next uint64
}

func (b *SampleBuilder) Ingest(rec fiolog.Record) Point {
	p := Point{X: float64(b.next), Y: rec.Scaled()}
	b.next++
	return p
}

// MixedPoint is one ordinal of a MixedSeries.
type MixedPoint struct {
	X                 float64
	Read, Write, Trim float64
}

// MixedBuilder splits records by direction; the directions a record does not
// belong to get NaN so plots show a gap.
type MixedBuilder struct {
	next uint64
}

func (b *MixedBuilder) Ingest(rec fiolog.Record) MixedPoint {
	nan := math.NaN()
	p := MixedPoint{X: float64(b.next), Read: nan, Write: nan, Trim: nan}
	switch rec.Direction {
	case fiolog.Read:
		p.Read = rec.Scaled()
	case fiolog.Write:
		p.Write = rec.Scaled()
	case fiolog.Trim:
		p.Trim = rec.Scaled()
	}
	b.next++
	return p
}
