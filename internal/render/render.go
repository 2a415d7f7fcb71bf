// Package render draws reduced fio series as PNG graphs with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sanspareilsmyn/fiolens/internal/config"
	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// GraphType selects how series are drawn.
type GraphType string

const (
	GraphDefault  GraphType = "default"
	GraphBar      GraphType = "bar"
	GraphLine     GraphType = "line"
	GraphDots     GraphType = "dots"
	GraphErrorBar GraphType = "errorbar"
)

// Resolve maps GraphDefault to the mode's default and rejects combinations a mode
// cannot draw. Elapsed buckets carry an envelope, so errorbar is theirs alone.
func Resolve(mode reduce.Mode, gt GraphType) (GraphType, error) {
	switch gt {
	case GraphDefault, GraphBar, GraphLine, GraphDots, GraphErrorBar:
	case "":
		gt = GraphDefault
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGraphType, gt)
	}

	switch mode {
	case reduce.ModeElapsed:
		if gt == GraphBar {
			return "", fmt.Errorf("%w: %s in %s mode", ErrUnsupportedGraph, gt, mode)
		}
		if gt == GraphDefault {
			return GraphErrorBar, nil
		}
	case reduce.ModeHistogram:
		if gt != GraphDefault && gt != GraphBar {
			return "", fmt.Errorf("%w: %s in %s mode", ErrUnsupportedGraph, gt, mode)
		}
		return GraphBar, nil
	default:
		if gt == GraphErrorBar {
			return "", fmt.Errorf("%w: %s in %s mode", ErrUnsupportedGraph, gt, mode)
		}
		if gt == GraphDefault {
			return GraphDots, nil
		}
	}
	return gt, nil
}

// Options controls the look and destination of graphs.
type Options struct {
	Output    string
	Title     string
	LogType   string
	GraphType GraphType
	LogScaleY bool
	AxisAlign *float64 // fixed top of the y axis
	Bins      int
	EveryNth  uint64
	Width     vg.Length
	Height    vg.Length
}

// OptionsFromConfig builds Options from the plot section of the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Output:    cfg.Plot.Output,
		Title:     cfg.Plot.Title,
		LogType:   cfg.Plot.LogType,
		GraphType: GraphType(cfg.Plot.GraphType),
		LogScaleY: cfg.Plot.LogScaleY,
		AxisAlign: cfg.Plot.AxisAlign,
		Bins:      cfg.Plot.Bins,
		EveryNth:  uint64(cfg.Reduce.EveryNth),
	}
}

// Renderer writes graphs for pipeline output.
type Renderer struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Renderer. Zero sizes default to 8x6 inches.
func New(opts Options, logger *zap.Logger) *Renderer {
	if opts.Width == 0 {
		opts.Width = 8 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 6 * vg.Inch
	}
	if opts.Output == "" {
		opts.Output = "output.png"
	}
	if opts.EveryNth == 0 {
		opts.EveryNth = 1
	}
	return &Renderer{opts: opts, logger: logger}
}

// Render draws results and returns the written file names. A non-nil combined
// series replaces the per-file series with one aggregated series.
func (r *Renderer) Render(mode reduce.Mode, results []reduce.Result, combined *reduce.CombinedSeries) ([]string, error) {
	gt, err := Resolve(mode, r.opts.GraphType)
	if err != nil {
		return nil, err
	}

	if combined != nil {
		paths := make([]string, len(results))
		for i, res := range results {
			paths[i] = res.Path
		}
		return r.renderCombined(mode, gt, paths, *combined)
	}

	plottable := make([]reduce.Result, 0, len(results))
	for _, res := range results {
		if res.Len() == 0 {
			r.logger.Warn("Skipping file without data points", zap.String("file", filepath.Base(res.Path)))
			continue
		}
		plottable = append(plottable, res)
	}
	if len(plottable) == 0 {
		return nil, ErrNothingToPlot
	}

	switch mode {
	case reduce.ModeMixed:
		return r.renderMixed(gt, plottable)
	case reduce.ModeHistogram:
		return r.renderHistogram(plottable)
	default:
		return r.renderSeries(mode, gt, plottable)
	}
}

func (r *Renderer) renderSeries(mode reduce.Mode, gt GraphType, results []reduce.Result) ([]string, error) {
	p := r.newPlot(mode)
	drawn := 0
	for i, res := range results {
		name := filepath.Base(res.Path)
		var err error
		if mode == reduce.ModeElapsed {
			err = r.addBuckets(p, i, name, gt, res.Buckets)
		} else {
			err = r.addSeries(p, i, name, gt, res.Series.X, res.Series.Y)
		}
		if errors.Is(err, ErrNothingToPlot) {
			r.logger.Warn("No plottable points left in file", zap.String("file", name))
			continue
		}
		if err != nil {
			return nil, err
		}
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNothingToPlot
	}
	r.alignY(p)
	return r.save(p, r.opts.Output)
}

func (r *Renderer) renderCombined(mode reduce.Mode, gt GraphType, paths []string, c reduce.CombinedSeries) ([]string, error) {
	if len(c.X) == 0 {
		return nil, ErrNothingToPlot
	}
	if gt == GraphErrorBar {
		// the aggregate carries no envelope
		gt = GraphDots
	}
	p := r.newPlot(mode)
	if err := r.addSeries(p, 0, AggregatedLegend(paths), gt, c.X, c.Y); err != nil {
		return nil, err
	}
	r.alignY(p)
	return r.save(p, r.opts.Output)
}

// renderMixed writes one graph per file and direction, named reads-, writes- and
// trims- followed by the output name. With several files the file stem is added.
func (r *Renderer) renderMixed(gt GraphType, results []reduce.Result) ([]string, error) {
	var written []string
	for _, res := range results {
		directions := []struct {
			name   string
			values []float64
		}{
			{"reads", res.Mixed.Reads},
			{"writes", res.Mixed.Writes},
		}
		if res.Mixed.HasTrims() {
			directions = append(directions, struct {
				name   string
				values []float64
			}{"trims", res.Mixed.Trims})
		}

		for _, d := range directions {
			p := r.newPlot(reduce.ModeMixed)
			legend := d.name + "-" + filepath.Base(res.Path)
			err := r.addSeries(p, 0, legend, gt, res.Mixed.X, d.values)
			if errors.Is(err, ErrNothingToPlot) {
				r.logger.Debug("No records in direction", zap.String("graph", legend))
				continue
			}
			if err != nil {
				return nil, err
			}
			p.X.Min = 0
			p.X.Max = float64(res.Mixed.Len())
			r.alignY(p)

			prefix := d.name
			if len(results) > 1 {
				prefix += "-" + stem(res.Path)
			}
			files, err := r.save(p, prefixed(r.opts.Output, prefix))
			if err != nil {
				return nil, err
			}
			written = append(written, files...)
		}
	}
	return written, nil
}

func (r *Renderer) renderHistogram(results []reduce.Result) ([]string, error) {
	p := r.newPlot(reduce.ModeHistogram)
	for i, res := range results {
		if err := r.addHistogram(p, i, filepath.Base(res.Path), res.Samples); err != nil {
			return nil, err
		}
	}
	if !r.opts.LogScaleY {
		p.Y.Min = 0
	}
	return r.save(p, r.opts.Output)
}

func (r *Renderer) newPlot(mode reduce.Mode) *plot.Plot {
	p := plot.New()
	p.Title.Text = r.opts.Title
	p.X.Label.Text = XLabel(mode, r.opts.EveryNth, r.opts.LogType)
	p.Y.Label.Text = modeYLabel(mode, r.opts.LogType)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	if r.opts.LogScaleY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	return p
}

// alignY pins the bottom of a linear axis to zero and applies the fixed top.
func (r *Renderer) alignY(p *plot.Plot) {
	if !r.opts.LogScaleY {
		p.Y.Min = 0
	}
	if r.opts.AxisAlign != nil {
		p.Y.Max = *r.opts.AxisAlign
	}
}

func (r *Renderer) save(p *plot.Plot, output string) ([]string, error) {
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	}
	if filepath.Ext(output) == "" {
		output += ".png"
	}
	if err := p.Save(r.opts.Width, r.opts.Height, output); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSaveFailed, output, err)
	}
	r.logger.Info("Graph saved",
		zap.String("output", output),
		zap.String("title", r.opts.Title),
		zap.String("y_scale", yScaleName(r.opts.LogScaleY)),
	)
	return []string{output}, nil
}

func yScaleName(logScale bool) string {
	if logScale {
		return "log"
	}
	return "linear"
}

// points pairs xs with ys, dropping NaN and, on a log axis, non-positive values.
func points(xs, ys []float64, logScale bool) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		y := ys[i]
		if math.IsNaN(y) || (logScale && y <= 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: y})
	}
	return pts
}
