package reduce

import (
	"context"
	"fmt"
	"math"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

// ctxCheckInterval is how many records are streamed between context checks.
const ctxCheckInterval = 4096

// Result is the reduction of one log file. Only the fields of its Mode are set.
type Result struct {
	Path  string
	Mode  Mode
	Lines int

	Buckets []Bucket    // elapsed
	Series  Series      // ios, io_count
	Mixed   MixedSeries // mixed
	Samples []float64   // histogram
}

// Len returns the number of points the reduction emitted.
func (r Result) Len() int {
	switch r.Mode {
	case ModeElapsed:
		return len(r.Buckets)
	case ModeMixed:
		return r.Mixed.Len()
	case ModeHistogram:
		return len(r.Samples)
	default:
		return r.Series.Len()
	}
}

// Primary returns the series merged when files are aggregated.
func (r Result) Primary() Series {
	if r.Mode == ModeElapsed {
		return AverageSeries(r.Buckets)
	}
	return r.Series
}

// Load counts the lines of path, then reduces it according to opts.Mode.
// An empty file produces an empty Result and no error.
func Load(ctx context.Context, path string, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	n, err := fiolog.CountLines(path)
	if err != nil {
		return Result{}, err
	}

	res := Result{Path: path, Mode: opts.Mode, Lines: n}
	switch opts.Mode {
	case ModeElapsed:
		res.Buckets, err = loadElapsed(ctx, path, n, opts)
	case ModeIOs:
		res.Series, err = loadIOs(ctx, path, n, opts)
	case ModeIOCount:
		if opts.CountRepetitions {
			res.Series, err = loadRepetitions(ctx, path, n, opts)
		} else {
			res.Series, err = loadIOCount(ctx, path, n, opts)
		}
	case ModeMixed:
		res.Mixed, err = loadMixed(ctx, path, n, opts)
	case ModeHistogram:
		res.Samples, err = loadSamples(ctx, path, n, opts)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// LoadElapsed reduces path into windowed buckets.
func LoadElapsed(ctx context.Context, path string, opts Options) ([]Bucket, error) {
	opts.Mode = ModeElapsed
	res, err := Load(ctx, path, opts)
	return res.Buckets, err
}

// LoadIOs returns one point per record of path.
func LoadIOs(ctx context.Context, path string, opts Options) (Series, error) {
	opts.Mode = ModeIOs
	res, err := Load(ctx, path, opts)
	return res.Series, err
}

// LoadIOCount counts records of path per 1000-unit interval.
func LoadIOCount(ctx context.Context, path string, opts Options) (Series, error) {
	opts.Mode = ModeIOCount
	res, err := Load(ctx, path, opts)
	return res.Series, err
}

// LoadMixed splits the records of path by data direction.
func LoadMixed(ctx context.Context, path string, opts Options) (MixedSeries, error) {
	opts.Mode = ModeMixed
	res, err := Load(ctx, path, opts)
	return res.Mixed, err
}

// LoadSamples returns the scaled values of the first opts.LoadLimit fraction of path.
func LoadSamples(ctx context.Context, path string, opts Options) ([]float64, error) {
	opts.Mode = ModeHistogram
	res, err := Load(ctx, path, opts)
	return res.Samples, err
}

func loadElapsed(ctx context.Context, path string, n int, opts Options) ([]Bucket, error) {
	// at most one bucket per record after the first, plus the final flush
	out := make([]Bucket, n)
	k := 0
	agg := NewWindowAggregator(opts.EveryNth, opts.SameTime)
	err := scan(ctx, path, n, fiolog.MinFields, opts, func(rec fiolog.Record) {
		if b, ok := agg.Ingest(rec); ok {
			out[k] = b
			k++
		}
	})
	if err != nil {
		return nil, err
	}
	if b, ok := agg.Finalize(); ok {
		out[k] = b
		k++
	}
	return out[:k], nil
}

func loadIOs(ctx context.Context, path string, n int, opts Options) (Series, error) {
	xs := make([]float64, n)
	ys := make([]float64, n)
	k := 0
	var b SampleBuilder
	err := scan(ctx, path, n, fiolog.MinFields, opts, func(rec fiolog.Record) {
		p := b.Ingest(rec)
		xs[k], ys[k] = p.X, p.Y
		k++
	})
	if err != nil {
		return Series{}, err
	}
	return Series{X: xs[:k], Y: ys[:k]}, nil
}

func loadIOCount(ctx context.Context, path string, n int, opts Options) (Series, error) {
	// the first record may already cross a threshold, so one more slot than lines
	ys := make([]float64, n+1)
	k := 0
	counter := NewIntervalCounter()
	err := scan(ctx, path, n, fiolog.MinFields, opts, func(rec fiolog.Record) {
		if c, ok := counter.Ingest(rec); ok {
			ys[k] = float64(c)
			k++
		}
	})
	if err != nil {
		return Series{}, err
	}
	if c, ok := counter.Finalize(); ok {
		ys[k] = float64(c)
		k++
	}
	return Series{X: ordinals(1, k), Y: ys[:k]}, nil
}

func loadRepetitions(ctx context.Context, path string, n int, opts Options) (Series, error) {
	ys := make([]float64, n)
	k := 0
	counter := NewRepetitionCounter(opts.EveryNth)
	err := scan(ctx, path, n, fiolog.MinFields, opts, func(rec fiolog.Record) {
		if c, ok := counter.Ingest(rec); ok {
			ys[k] = float64(c)
			k++
		}
	})
	if err != nil {
		return Series{}, err
	}
	if c, ok := counter.Finalize(); ok {
		ys[k] = float64(c)
		k++
	}
	return Series{X: ordinals(1, k), Y: ys[:k]}, nil
}

func loadMixed(ctx context.Context, path string, n int, opts Options) (MixedSeries, error) {
	m := MixedSeries{
		X:      make([]float64, n),
		Reads:  make([]float64, n),
		Writes: make([]float64, n),
		Trims:  make([]float64, n),
	}
	k := 0
	var b MixedBuilder
	err := scan(ctx, path, n, fiolog.MinFieldsWithDirection, opts, func(rec fiolog.Record) {
		p := b.Ingest(rec)
		m.X[k], m.Reads[k], m.Writes[k], m.Trims[k] = p.X, p.Read, p.Write, p.Trim
		k++
	})
	if err != nil {
		return MixedSeries{}, err
	}
	return MixedSeries{X: m.X[:k], Reads: m.Reads[:k], Writes: m.Writes[:k], Trims: m.Trims[:k]}, nil
}

func loadSamples(ctx context.Context, path string, n int, opts Options) ([]float64, error) {
	limit := int(float64(n) * opts.loadFraction())
	values := make([]float64, limit)
	k := 0
	err := scan(ctx, path, limit, fiolog.MinFields, opts, func(rec fiolog.Record) {
		values[k] = rec.Scaled()
		k++
	})
	if err != nil {
		return nil, err
	}
	return values[:k], nil
}

// scan streams at most limit records of path through fn, skipping outliers.
func scan(ctx context.Context, path string, limit, minFields int, opts Options, fn func(fiolog.Record)) error {
	if limit <= 0 {
		return nil
	}
	f, err := fiolog.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	step := int(math.Ceil(float64(limit) / 100))
	r := fiolog.NewReader(f, minFields)
	for i := 0; i < limit && r.Next(); i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if opts.Progress != nil && i%step == 0 {
			opts.Progress(i, limit)
		}
		rec := r.Record()
		if !opts.admits(rec) {
			continue
		}
		fn(rec)
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if opts.Progress != nil {
		opts.Progress(limit, limit)
	}
	return nil
}

func ordinals(from, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(from + i)
	}
	return xs
}
