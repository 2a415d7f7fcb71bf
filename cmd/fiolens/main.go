package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/fiolens/internal/config"
	"github.com/sanspareilsmyn/fiolens/internal/logging"
	"github.com/sanspareilsmyn/fiolens/internal/pipeline"
	"github.com/sanspareilsmyn/fiolens/internal/render"
)

var (
	configFile       = flag.String("config", "", "Path to the configuration file (optional)")
	mode             = flag.String("m", "elapsed", "Reduction mode: elapsed, ios, io_count, mixed, histogram")
	logType          = flag.String("lt", "bw", "Log type: bw, lat, iops")
	output           = flag.String("o", "output.png", "Output graph file")
	title            = flag.String("title", "Fio Log Experiment", "Graph title")
	everyNth         = flag.Int("every-nth", 1, "Flush a window (elapsed) or count interval (io_count) every n time units")
	sameTime         = flag.Bool("same-time", false, "Only flush elapsed windows when the timestamp changed")
	countRepetitions = flag.Bool("count-repetitions", false, "io_count: count records per boundary timestamp instead of per interval")
	logScaleY        = flag.Bool("ylog", false, "Use a logarithmic y axis")
	aggregate        = flag.Bool("agg", false, "Aggregate all files into one series (elapsed, ios, io_count)")
	combine          = flag.String("combine", "positional", "How aggregated series are summed: positional, aligned")
	graphType        = flag.String("gt", "default", "Graph type: default, bar, line, dots, errorbar")
	outlierCutoff    = flag.Float64("outlier-cutoff", 0, "Discard records whose value/1000 is at least this")
	axisAlign        = flag.Float64("axis-align", 0, "Fixed top of the y axis, e.g. from fiomax")
	bins             = flag.Int("bins", 100, "Histogram bins")
	loadLimit        = flag.Float64("load-limit", 1, "Fraction of lines loaded in histogram mode")
	workers          = flag.Int("workers", 1, "Files reduced concurrently")
	metricsAddr      = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	noPlot           = flag.Bool("no-plot", false, "Reduce and report without drawing graphs")
	verbose          = flag.Bool("v", false, "Debug logging, including load progress")
	logger           *zap.Logger
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE [FILE...]\n", os.Args[0])
		flag.PrintDefaults()
	}

	// Initialize Configuration
	flag.Parse()

	cfg, err := config.LoadUnvalidated(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Initialize Logger
	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Configuration loaded",
		"mode", cfg.Reduce.Mode,
		"files", len(files),
		"every_nth", cfg.Reduce.EveryNth,
		"workers", cfg.Pipeline.Workers,
	)

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			sugar.Fatalw("Input file not accessible", "file", f, "error", err)
		}
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics)
	}

	// Initialize Pipeline
	var sinks []pipeline.Sink
	if cfg.Kafka.Enabled() {
		publisher, err := pipeline.NewKafkaPublisher(cfg.Kafka, logger.Named("publisher"))
		if err != nil {
			sugar.Fatalw("Failed to create result publisher", "error", err)
		}
		sinks = append(sinks, publisher)
	}

	pipe, err := pipeline.New(cfg, logger, sinks...)
	if err != nil {
		sugar.Fatalw("Failed to initialize pipeline", "error", err)
	}
	defer func() {
		if err := pipe.Close(); err != nil {
			sugar.Errorw("Failed to close pipeline sinks", zap.Error(err))
		}
	}()

	// Handle Graceful Shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, cancelling reduction...", "signal", sig.String())
		cancel()
	}()

	// Run Pipeline
	done := logging.Timed(logger, "Input load time", zap.Int("files", len(files)))
	out, runErr := pipe.Run(ctx, files)
	done()

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		sugar.Info("Reduction cancelled.")
		return
	default:
		logger.Log(zapcore.ErrorLevel, "Reduction stopped unexpectedly", zap.Error(runErr))
		_ = logger.Sync()
		os.Exit(1)
	}

	if cfg.Plot.Disabled {
		sugar.Info("Plotting disabled, done.")
		return
	}

	renderer := render.New(render.OptionsFromConfig(cfg), logger.Named("render"))
	written, err := renderer.Render(pipe.Options().Mode, out.Results, out.Combined)
	switch {
	case errors.Is(err, render.ErrNothingToPlot):
		sugar.Warnw("No graph written", zap.Error(err))
	case err != nil:
		logger.Error("Rendering failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	default:
		sugar.Infow("fiolens finished.", "graphs", written)
	}
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			cfg.Reduce.Mode = *mode
		case "lt":
			cfg.Plot.LogType = *logType
		case "o":
			cfg.Plot.Output = *output
		case "title":
			cfg.Plot.Title = *title
		case "every-nth":
			cfg.Reduce.EveryNth = *everyNth
		case "same-time":
			cfg.Reduce.SameTime = *sameTime
		case "count-repetitions":
			cfg.Reduce.CountRepetitions = *countRepetitions
		case "ylog":
			cfg.Plot.LogScaleY = *logScaleY
		case "agg":
			cfg.Reduce.AggregateFiles = *aggregate
		case "combine":
			cfg.Reduce.Combine = *combine
		case "gt":
			cfg.Plot.GraphType = *graphType
		case "outlier-cutoff":
			cfg.Reduce.OutlierCutoff = outlierCutoff
		case "axis-align":
			cfg.Plot.AxisAlign = axisAlign
		case "bins":
			cfg.Plot.Bins = *bins
		case "load-limit":
			cfg.Reduce.LoadLimit = *loadLimit
		case "workers":
			cfg.Pipeline.Workers = *workers
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		case "no-plot":
			cfg.Plot.Disabled = *noPlot
		case "v":
			if *verbose {
				cfg.Log.Level = "debug"
			}
		}
	})
}

func serveMetrics(cfg config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("Serving metrics", zap.String("addr", cfg.Addr), zap.String("path", cfg.Path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server stopped", zap.Error(err))
	}
}
