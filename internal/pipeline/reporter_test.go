package pipeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

func TestReporterObserve(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewReporter(zap.New(core))

	res := reduce.Result{
		Path:  "/tmp/run/reporter_bw.1.log",
		Mode:  reduce.ModeIOs,
		Lines: 4,
		Series: reduce.Series{
			X: []float64{0, 1, 2, 3},
			Y: []float64{1, 2, 3, 6},
		},
	}

	beforeLines := testutil.ToFloat64(linesRead.WithLabelValues("ios"))
	beforePoints := testutil.ToFloat64(pointsEmitted.WithLabelValues("ios"))

	report := r.Observe(res, 25*time.Millisecond)
	assert.Equal(t, "reporter_bw.1.log", report.File)
	assert.Equal(t, 4, report.Points)
	require.NotNil(t, report.Summary)
	assert.InDelta(t, 3.0, report.Summary.Mean, 1e-9)
	assert.Equal(t, 6.0, report.Summary.Max)

	assert.Equal(t, beforeLines+4, testutil.ToFloat64(linesRead.WithLabelValues("ios")))
	assert.Equal(t, beforePoints+4, testutil.ToFloat64(pointsEmitted.WithLabelValues("ios")))
	assert.Equal(t, 3.0, testutil.ToFloat64(fileMean.WithLabelValues("reporter_bw.1.log")))
	assert.Equal(t, 6.0, testutil.ToFloat64(fileMax.WithLabelValues("reporter_bw.1.log")))

	entries := logs.FilterMessage("File reduced").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ios", entries[0].ContextMap()["mode"])
}

func TestReporterMixedSkipsNaN(t *testing.T) {
	nan := math.NaN()
	res := reduce.Result{
		Path: "mixed.log",
		Mode: reduce.ModeMixed,
		Mixed: reduce.MixedSeries{
			X:      []float64{0, 1, 2},
			Reads:  []float64{4, nan, nan},
			Writes: []float64{nan, 8, nan},
			Trims:  []float64{nan, nan, 6},
		},
		Lines: 3,
	}
	assert.Equal(t, []float64{4, 8, 6}, reportValues(res))

	report := NewReporter(zap.NewNop()).Observe(res, time.Millisecond)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 3, report.Summary.Count)
}

func TestReporterFailed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewReporter(zap.New(core))

	before := testutil.ToFloat64(filesReduced.WithLabelValues("histogram", statusError))
	r.Failed(reduce.ModeHistogram, "/x/broken.log", time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(filesReduced.WithLabelValues("histogram", statusError)))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}
