// Package extrema finds axis bounds across fio logs: the largest scaled value and
// the largest number of records in any 1000-unit interval.
package extrema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// Mode selects which extrema a scan computes.
type Mode string

const (
	ModeMax  Mode = "max"
	ModeIOPS Mode = "iops"
	ModeBoth Mode = "both"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeMax, ModeIOPS, ModeBoth:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func (m Mode) wantsMax() bool  { return m == ModeMax || m == ModeBoth }
func (m Mode) wantsIOPS() bool { return m == ModeIOPS || m == ModeBoth }

// Result holds the extrema found by a scan. Fields of statistics the mode did not
// ask for are zero.
type Result struct {
	// MaxValue is the largest value/1000 seen, rounded up.
	MaxValue uint64
	// P99Value is the 99th percentile of value/1000, rounded up. It is an axis top
	// that ignores rare outliers.
	P99Value uint64
	// MaxIOPS is the largest per-interval record count.
	MaxIOPS uint64
	// Files is the number of files scanned.
	Files int
	// Skipped lists files that did not exist.
	Skipped []string
	// SkipErr combines the errors of skipped files.
	SkipErr error
}

// Raw values are recorded with three significant digits up to about 1.1e12,
// which covers nsec latencies beyond 18 minutes.
const (
	histMin    = 1
	histMax    = 1 << 40
	histSigFig = 3
)

// Scanner folds one or more logs into a Result without buffering records.
type Scanner struct {
	logger *zap.Logger
}

func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan streams every file once. Missing files are skipped and reported in the
// Result; any other read failure or malformed line aborts the scan.
func (s *Scanner) Scan(ctx context.Context, mode Mode, paths []string) (Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, ErrNoFiles
	}

	var (
		res      Result
		maxValue float64
		hist     = hdrhistogram.New(histMin, histMax, histSigFig)
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		fileMax, fileIOPS, err := s.scanFile(ctx, path, hist)
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Log file not found, skipping", zap.String("path", path))
			res.Skipped = append(res.Skipped, path)
			res.SkipErr = multierr.Append(res.SkipErr, err)
			continue
		}
		if err != nil {
			return Result{}, err
		}

		res.Files++
		maxValue = math.Max(maxValue, fileMax)
		if fileIOPS > res.MaxIOPS {
			res.MaxIOPS = fileIOPS
		}
		s.logger.Debug("Scanned log file",
			zap.String("path", path),
			zap.Float64("max_value", fileMax),
			zap.Uint64("max_iops", fileIOPS),
		)
	}

	if mode.wantsMax() {
		res.MaxValue = uint64(math.Ceil(maxValue))
		if hist.TotalCount() > 0 {
			res.P99Value = uint64(math.Ceil(float64(hist.ValueAtQuantile(99)) / fiolog.UnitScale))
		}
	}
	if !mode.wantsIOPS() {
		res.MaxIOPS = 0
	}
	return res, nil
}

// scanFile computes both statistics for one file; Scan discards what the mode
// does not need.
func (s *Scanner) scanFile(ctx context.Context, path string, hist *hdrhistogram.Histogram) (float64, uint64, error) {
	f, err := fiolog.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var (
		maxValue float64
		maxCount uint64
	)
	counter := reduce.NewIntervalCounter()
	r := fiolog.NewReader(f, fiolog.MinFields)
	for r.Next() {
		if r.Line()%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		rec := r.Record()
		if v := rec.Scaled(); v > maxValue {
			maxValue = v
		}
		// clampValue keeps every value inside the histogram's trackable range.
		_ = hist.RecordValue(clampValue(rec.Value))
		if c, ok := counter.Ingest(rec); ok && c > maxCount {
			maxCount = c
		}
	}
	if err := r.Err(); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	if c, ok := counter.Finalize(); ok && c > maxCount {
		maxCount = c
	}
	return maxValue, maxCount, nil
}

func clampValue(v uint64) int64 {
	switch {
	case v < histMin:
		return histMin
	case v > histMax:
		return histMax
	default:
		return int64(v)
	}
}
