// Package reduce turns streams of fio log records into fixed-size series for plotting.
//
// Every loader makes two passes over a file: one to count lines and size its output
// buffers, one to stream the records through a reducer. Reducers are plain state
// machines with Ingest and Finalize methods and are not safe for concurrent use.
package reduce

import (
	"fmt"
	"strings"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

// Mode selects how a log is reduced.
type Mode string

const (
	ModeElapsed   Mode = "elapsed"
	ModeIOs       Mode = "ios"
	ModeIOCount   Mode = "io_count"
	ModeMixed     Mode = "mixed"
	ModeHistogram Mode = "histogram"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeElapsed, ModeIOs, ModeIOCount, ModeMixed, ModeHistogram}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// CanAggregate reports whether results of this mode can be merged by Combine.
func (m Mode) CanAggregate() bool {
	switch m {
	case ModeElapsed, ModeIOs, ModeIOCount:
		return true
	default:
		return false
	}
}

// CombineStrategy selects how aggregated series are summed.
type CombineStrategy string

const (
	// CombineStrategyPositional sums y values by index after zero-padding.
	CombineStrategyPositional CombineStrategy = "positional"
	// CombineStrategyAligned sums y values that share the same x.
	CombineStrategyAligned CombineStrategy = "aligned"
)

// ProgressFunc is called periodically while a file is streamed.
type ProgressFunc func(done, total int)

// Options carries every knob a reduction reads. Nothing else is consulted.
type Options struct {
	Mode Mode
	// EveryNth is the divisor for periodic flush boundaries.
	EveryNth uint64
	// SameTime only allows a flush when the timestamp changed.
	SameTime bool
	// OutlierCutoff discards records whose scaled value is >= the cutoff.
	OutlierCutoff *float64
	// AggregateFiles merges per-file series with Combine.
	AggregateFiles bool
	Combine        CombineStrategy
	// CountRepetitions switches io_count to counting runs of equal timestamps.
	CountRepetitions bool
	// LoadLimit is the fraction of lines loaded in histogram mode. Values
	// outside (0, 1] load the whole file.
	LoadLimit float64
	Progress  ProgressFunc
}

// DefaultOptions returns options for an elapsed-mode reduction with a flush on every record.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeElapsed,
		EveryNth:  1,
		Combine:   CombineStrategyPositional,
		LoadLimit: 1,
	}
}

func (o Options) Validate() error {
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.EveryNth == 0 {
		return ErrInvalidEveryNth
	}
	switch o.Combine {
	case CombineStrategyPositional, CombineStrategyAligned, "":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCombine, o.Combine)
	}
	if o.AggregateFiles && !o.Mode.CanAggregate() {
		return fmt.Errorf("%w: %s", ErrAggregateUnsupported, o.Mode)
	}
	return nil
}

func (o Options) loadFraction() float64 {
	if o.LoadLimit <= 0 || o.LoadLimit > 1 {
		return 1
	}
	return o.LoadLimit
}

// admits applies the outlier cutoff.
func (o Options) admits(rec fiolog.Record) bool {
	return o.OutlierCutoff == nil || rec.Scaled() < *o.OutlierCutoff
}
