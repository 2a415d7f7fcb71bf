package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// errorPoints feeds YErrorBars: centers plus distances to the envelope.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// addSeries draws one x/y series as dots, a line or bars.
func (r *Renderer) addSeries(p *plot.Plot, i int, name string, gt GraphType, xs, ys []float64) error {
	pts := points(xs, ys, r.opts.LogScaleY)
	if len(pts) == 0 {
		return ErrNothingToPlot
	}
	c := plotutil.Color(i)

	switch gt {
	case GraphLine:
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for %s: %w", name, err)
		}
		l.Color = c
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(name, l)
	case GraphBar:
		h := bars(pts, c)
		h.LogY = r.opts.LogScaleY
		p.Add(h)
		p.Legend.Add(name, h)
	default:
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter for %s: %w", name, err)
		}
		s.GlyphStyle.Color = c
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(name, s)
	}
	return nil
}

// addBuckets draws elapsed buckets. Only errorbar shows the min/max envelope.
func (r *Renderer) addBuckets(p *plot.Plot, i int, name string, gt GraphType, buckets []reduce.Bucket) error {
	if gt != GraphErrorBar {
		s := reduce.AverageSeries(buckets)
		return r.addSeries(p, i, name, gt, s.X, s.Y)
	}

	ep := errorPoints{
		XYs:     make(plotter.XYs, 0, len(buckets)),
		YErrors: make(plotter.YErrors, 0, len(buckets)),
	}
	for _, b := range buckets {
		if r.opts.LogScaleY && b.Min <= 0 {
			continue
		}
		ep.XYs = append(ep.XYs, plotter.XY{X: b.X, Y: b.Avg})
		ep.YErrors = append(ep.YErrors, struct{ Low, High float64 }{Low: b.Avg - b.Min, High: b.Max - b.Avg})
	}
	if len(ep.XYs) == 0 {
		return ErrNothingToPlot
	}
	c := plotutil.Color(i)

	s, err := plotter.NewScatter(ep.XYs)
	if err != nil {
		return fmt.Errorf("scatter for %s: %w", name, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(2.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	yerrs, err := plotter.NewYErrorBars(ep)
	if err != nil {
		return fmt.Errorf("error bars for %s: %w", name, err)
	}
	yerrs.LineStyle.Color = c
	yerrs.LineStyle.Width = vg.Points(1)

	p.Add(s, yerrs)
	p.Legend.Add(name, s)
	return nil
}

// addHistogram bins raw samples.
func (r *Renderer) addHistogram(p *plot.Plot, i int, name string, samples []float64) error {
	values := make(plotter.Values, 0, len(samples))
	for _, v := range samples {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return ErrNothingToPlot
	}
	h, err := plotter.NewHist(values, r.opts.Bins)
	if err != nil {
		return fmt.Errorf("histogram for %s: %w", name, err)
	}
	h.FillColor = translucent(plotutil.Color(i))
	h.LogY = r.opts.LogScaleY
	p.Add(h)
	p.Legend.Add(name, h)
	return nil
}

// bars turns points into a bar chart positioned on their x values. Bars take
// 80% of the smallest gap between neighbours.
func bars(pts plotter.XYs, c color.Color) *plotter.Histogram {
	gap := math.Inf(1)
	for j := 1; j < len(pts); j++ {
		if d := pts[j].X - pts[j-1].X; d > 0 && d < gap {
			gap = d
		}
	}
	width := 0.8
	if !math.IsInf(gap, 1) {
		width = 0.8 * gap
	}
	bins := make([]plotter.HistogramBin, len(pts))
	for j, pt := range pts {
		bins[j] = plotter.HistogramBin{Min: pt.X - width/2, Max: pt.X + width/2, Weight: pt.Y}
	}
	return &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		FillColor: c,
		LineStyle: plotter.DefaultLineStyle,
	}
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xa0}
}
