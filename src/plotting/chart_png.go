package plotting

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	rawLineColor    = drawing.Color{R: 214, G: 39, B: 40, A: 255}
	smoothLineColor = drawing.Color{R: 0, G: 0, B: 0, A: 255}
)

func chartTicks(ts []tick) []chart.Tick {
	out := make([]chart.Tick, len(ts))
	for i, t := range ts {
		out[i] = chart.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

func log10All(vs []float64) []float64 {
	if vs == nil {
		return nil
	}
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = math.Log10(v)
	}
	return out
}

// renderPNG draws d with go-chart. The series are mapped to the secondary y axis so the
// labelled axis sits on the left; the primary axis only carries the same range and is hidden.
// go-chart never draws a top or right frame.
func renderPNG(d *chartData) ([]byte, error) {
	ys, smoothY := d.ys, d.smoothY
	yMin, yMax := d.ylim.Min, d.ylim.Max
	var yTicks []chart.Tick
	if d.logScale {
		ys, smoothY = log10All(ys), log10All(smoothY)
		yTicks = chartTicks(logAxisTicks(yMin, yMax))
		yMin, yMax = math.Log10(yMin), math.Log10(yMax)
	} else {
		yTicks = chartTicks(axisTicks(yMin, yMax, 6))
	}
	xTicks := chartTicks(axisTicks(d.xlim.Min, d.xlim.Max, 8))

	raw := chart.ContinuousSeries{
		Name:    "raw",
		YAxis:   chart.YAxisSecondary,
		XValues: d.xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: rawLineColor, StrokeWidth: 1.5},
	}
	if len(d.xs) == 1 {
		raw.Style.DotWidth = 4
		raw.Style.DotColor = rawLineColor
	}
	series := []chart.Series{raw}
	if d.smoothX != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    "smoothed",
			YAxis:   chart.YAxisSecondary,
			XValues: d.smoothX,
			YValues: smoothY,
			Style:   chart.Style{StrokeColor: smoothLineColor, StrokeWidth: 1.5},
		})
	}

	padBottom := 12
	if d.caption != "" {
		padBottom += 18
	}
	ch := chart.Chart{
		Title:      d.title,
		Width:      d.width,
		Height:     d.height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 24, Bottom: padBottom}},
		Canvas:     chart.Style{StrokeColor: drawing.ColorTransparent},
		XAxis: chart.XAxis{
			Name:  d.xlabel,
			Range: &chart.ContinuousRange{Min: d.xlim.Min, Max: d.xlim.Max},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
			Ticks: yTicks,
		},
		YAxisSecondary: chart.YAxis{
			Name:     d.ylabel,
			AxisType: chart.YAxisSecondary,
			Range:    &chart.ContinuousRange{Min: yMin, Max: yMax},
			Ticks:    yTicks,
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", d.title, err)
	}
	if d.caption == "" {
		return buf.Bytes(), nil
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", d.title, err)
	}
	var out bytes.Buffer
	if err := png.Encode(&out, drawCaption(img, d.caption)); err != nil {
		return nil, fmt.Errorf("png encode %q: %w", d.title, err)
	}
	return out.Bytes(), nil
}
