package pipeline

import (
	"context"
	"math"
	"path/filepath"
	"time"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// FileReport is the per-file outcome handed to sinks. It is JSON encoded when
// published.
type FileReport struct {
	File      string          `json:"file"`
	Path      string          `json:"path"`
	Mode      reduce.Mode     `json:"mode"`
	Lines     int             `json:"lines"`
	Points    int             `json:"points"`
	Summary   *reduce.Summary `json:"summary,omitempty"`
	Elapsed   time.Duration   `json:"elapsed_ns"`
	ReducedAt time.Time       `json:"reduced_at"`
}

// Sink receives a report for every reduced file, in input order.
type Sink interface {
	Publish(ctx context.Context, report FileReport) error
	Close() error
}

// Output is everything a run produced.
type Output struct {
	Results  []reduce.Result // same order as the input paths
	Reports  []FileReport
	Combined *reduce.CombinedSeries // set when files are aggregated
}

// FileName returns the base name of a log path, used for legends and labels.
func FileName(path string) string {
	return filepath.Base(path)
}

// reportValues flattens the y values of a result for summarizing.
func reportValues(res reduce.Result) []float64 {
	switch res.Mode {
	case reduce.ModeHistogram:
		return res.Samples
	case reduce.ModeMixed:
		values := make([]float64, 0, res.Mixed.Len())
		for i := range res.Mixed.X {
			for _, v := range []float64{res.Mixed.Reads[i], res.Mixed.Writes[i], res.Mixed.Trims[i]} {
				if !math.IsNaN(v) {
					values = append(values, v)
				}
			}
		}
		return values
	default:
		return res.Primary().Y
	}
}
