package plotting

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
)

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

// renderVector draws d with gonum/plot for the svg, pdf and eps formats. Width and height
// are read as pixels at 100 dpi so vector output keeps the PNG proportions.
func renderVector(d *chartData, format string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = d.title
	p.X.Label.Text = d.xlabel
	p.Y.Label.Text = d.ylabel

	raw, err := plotter.NewLine(toXYs(d.xs, d.ys))
	if err != nil {
		return nil, errdefs.Invalidf("raw line: %v", err)
	}
	raw.LineStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	raw.LineStyle.Width = vg.Points(1.5)
	p.Add(raw)
	if len(d.xs) == 1 {
		dot, err := plotter.NewScatter(toXYs(d.xs, d.ys))
		if err != nil {
			return nil, errdefs.Invalidf("raw point: %v", err)
		}
		dot.GlyphStyle = draw.GlyphStyle{Color: raw.LineStyle.Color, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
		p.Add(dot)
	}
	if d.smoothX != nil {
		smooth, err := plotter.NewLine(toXYs(d.smoothX, d.smoothY))
		if err != nil {
			return nil, errdefs.Invalidf("smoothed line: %v", err)
		}
		smooth.LineStyle.Color = color.Black
		smooth.LineStyle.Width = vg.Points(1.5)
		p.Add(smooth)
	}

	// Limits go in after Add, which widens the axes to the data.
	p.X.Min, p.X.Max = d.xlim.Min, d.xlim.Max
	p.Y.Min, p.Y.Max = d.ylim.Min, d.ylim.Max
	if d.logScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	w := vg.Length(d.width) * vg.Inch / 100
	h := vg.Length(d.height) * vg.Inch / 100
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("%s writer for %q: %w", format, d.title, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", d.title, err)
	}
	return buf.Bytes(), nil
}
