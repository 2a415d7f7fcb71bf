// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/fiolens/internal/config"
	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
	"github.com/sanspareilsmyn/fiolens/internal/logging"
	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// Pipeline reduces a set of log files with a pool of workers, then reports,
// publishes and optionally combines the results.
type Pipeline struct {
	opts     reduce.Options
	workers  int
	reporter *Reporter
	sinks    []Sink
	logger   *zap.Logger
}

// New creates and wires up a new reduction pipeline. Sinks are closed by Close.
func New(cfg *config.Config, logger *zap.Logger, sinks ...Sink) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	opts := cfg.ReduceOptions()
	if err := opts.Validate(); err != nil {
		initLogger.Error("Invalid reduce options", zap.Error(err))
		return nil, err
	}

	p := &Pipeline{
		opts:     opts,
		workers:  cfg.Pipeline.Workers,
		reporter: NewReporter(logger.Named("reporter")),
		sinks:    sinks,
		logger:   logger.Named("pipeline"),
	}
	if p.workers <= 0 {
		p.workers = 1
	}

	initLogger.Debug("Pipeline instance created",
		zap.String("mode", string(opts.Mode)),
		zap.Int("workers", p.workers),
		zap.Int("sinks", len(sinks)),
	)
	return p, nil
}

// Options returns the reduce options the pipeline runs with.
func (p *Pipeline) Options() reduce.Options { return p.opts }

// Run reduces every path. The first failing file cancels the remaining work and
// its error is returned.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Output, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputFiles
	}
	sugar := p.logger.Sugar()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := &Output{
		Results: make([]reduce.Result, len(paths)),
		Reports: make([]FileReport, len(paths)),
	}
	jobs := make(chan int)
	pipelineErr := make(chan error, len(paths))

	workers := min(p.workers, len(paths))
	sugar.Infow("Pipeline Run: Starting workers...", "files", len(paths), "workers", workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go p.runWorker(runCtx, &wg, paths, jobs, out, pipelineErr)
	}

	go func() {
		defer close(jobs)
		for i := range paths {
			select {
			case jobs <- i:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(pipelineErr)
	}()

	var firstErr error
	for err := range pipelineErr {
		if firstErr == nil {
			sugar.Errorw("Pipeline Run: Received error from a worker, cancelling remaining files...", zap.Error(err))
			firstErr = err
			cancel()
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sugar.Info("Pipeline Run: All files reduced.")

	if err := p.publish(ctx, out.Reports); err != nil {
		return nil, err
	}

	if p.opts.AggregateFiles {
		combined, err := p.combine(out.Results)
		if err != nil {
			return nil, err
		}
		out.Combined = &combined
	}
	return out, nil
}

// runWorker reduces files until the jobs channel is closed.
func (p *Pipeline) runWorker(ctx context.Context, wg *sync.WaitGroup, paths []string, jobs <-chan int, out *Output, errCh chan<- error) {
	defer wg.Done()
	for i := range jobs {
		if ctx.Err() != nil {
			continue // drain after cancellation
		}
		res, elapsed, err := p.reduceFile(ctx, paths[i])
		if err != nil {
			p.reporter.Failed(p.opts.Mode, paths[i], elapsed, err)
			errCh <- fmt.Errorf("%w: %w", ErrReduceFailed, err)
			continue
		}
		// each index is written by exactly one worker
		out.Results[i] = res
		out.Reports[i] = p.reporter.Observe(res, elapsed)
	}
}

func (p *Pipeline) reduceFile(ctx context.Context, path string) (reduce.Result, time.Duration, error) {
	opts := p.opts
	opts.Progress = logging.Progress(p.logger, path)

	start := time.Now()
	res, err := reduce.Load(ctx, path, opts)
	elapsed := time.Since(start)
	if err != nil {
		return reduce.Result{}, elapsed, err
	}
	if res.Lines == 0 {
		p.logger.Warn("Skipping plot data for file",
			zap.String("file", FileName(path)),
			zap.Error(fiolog.ErrEmptyFile),
		)
	}
	return res, elapsed, nil
}

// publish hands every report to every sink. All sinks are tried before the
// collected errors are returned.
func (p *Pipeline) publish(ctx context.Context, reports []FileReport) error {
	var errs error
	for _, sink := range p.sinks {
		for _, report := range reports {
			if err := sink.Publish(ctx, report); err != nil {
				p.logger.Error("Publishing report failed", zap.String("file", report.File), zap.Error(err))
				errs = multierr.Append(errs, err)
				if errors.Is(err, context.Canceled) {
					return errs
				}
			}
		}
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, errs)
	}
	return nil
}

func (p *Pipeline) combine(results []reduce.Result) (reduce.CombinedSeries, error) {
	series := make([]reduce.Series, len(results))
	for i, res := range results {
		series[i] = res.Primary()
	}
	combined, err := reduce.CombineWith(p.opts.Combine, series...)
	if err != nil {
		return reduce.CombinedSeries{}, fmt.Errorf("%w: %w", ErrCombineFailed, err)
	}
	p.logger.Info("Files combined",
		zap.Int("files", len(results)),
		zap.Int("points", len(combined.X)),
		zap.String("strategy", string(p.opts.Combine)),
	)
	return combined, nil
}

// Close closes every sink.
func (p *Pipeline) Close() error {
	var errs error
	for _, sink := range p.sinks {
		errs = multierr.Append(errs, sink.Close())
	}
	return errs
}
