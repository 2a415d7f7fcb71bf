package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// Prometheus Metrics Definition
var (
	filesReduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiolens_files_reduced_total",
			Help: "Total number of log files reduced, by mode and outcome.",
		},
		[]string{"mode", "status"}, // status: ok, empty, error
	)
	linesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiolens_lines_read_total",
			Help: "Total number of log lines counted in reduced files.",
		},
		[]string{"mode"},
	)
	pointsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiolens_points_emitted_total",
			Help: "Total number of output points produced by reducers.",
		},
		[]string{"mode"},
	)
	reduceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fiolens_reduce_duration_seconds",
			Help:    "Time spent reducing one log file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"mode"},
	)
	fileMean = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fiolens_file_mean_value",
			Help: "Mean of the reduced values of the last run for a file.",
		},
		[]string{"file"},
	)
	fileMax = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fiolens_file_max_value",
			Help: "Maximum of the reduced values of the last run for a file.",
		},
		[]string{"file"},
	)
)

const (
	statusOK    = "ok"
	statusEmpty = "empty"
	statusError = "error"
)

// Reporter turns reduction results into reports, metrics and log lines.
type Reporter struct {
	logger *zap.Logger
}

// NewReporter creates a new Reporter instance.
func NewReporter(logger *zap.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Failed records a file that could not be reduced.
func (r *Reporter) Failed(mode reduce.Mode, path string, elapsed time.Duration, err error) {
	filesReduced.WithLabelValues(string(mode), statusError).Inc()
	reduceDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	r.logger.Error("Reducing file failed",
		zap.String("file", FileName(path)),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)
}

// Observe updates the metrics for a reduced file and builds its report.
func (r *Reporter) Observe(res reduce.Result, elapsed time.Duration) FileReport {
	mode := string(res.Mode)
	report := FileReport{
		File:      FileName(res.Path),
		Path:      res.Path,
		Mode:      res.Mode,
		Lines:     res.Lines,
		Points:    res.Len(),
		Elapsed:   elapsed,
		ReducedAt: time.Now().UTC(),
	}

	status := statusOK
	if res.Lines == 0 {
		status = statusEmpty
	}
	filesReduced.WithLabelValues(mode, status).Inc()
	linesRead.WithLabelValues(mode).Add(float64(res.Lines))
	pointsEmitted.WithLabelValues(mode).Add(float64(report.Points))
	reduceDuration.WithLabelValues(mode).Observe(elapsed.Seconds())

	if summary, err := reduce.Summarize(reportValues(res)); err == nil {
		report.Summary = &summary
		fileMean.WithLabelValues(report.File).Set(summary.Mean)
		fileMax.WithLabelValues(report.File).Set(summary.Max)
	}

	r.logStats(report)
	return report
}

// logStats writes one line per reduced file.
func (r *Reporter) logStats(report FileReport) {
	fields := []interface{}{
		zap.String("file", report.File),
		zap.String("mode", string(report.Mode)),
		zap.Int("lines", report.Lines),
		zap.Int("points", report.Points),
		zap.Duration("elapsed", report.Elapsed),
	}
	if s := report.Summary; s != nil {
		fields = append(fields,
			zap.Float64("mean", s.Mean),
			zap.Float64("stddev", s.StdDev),
			zap.Float64("min", s.Min),
			zap.Float64("max", s.Max),
		)
	}
	r.logger.Sugar().Infow("File reduced", fields...)
}
