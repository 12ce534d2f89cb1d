package plotting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
)

// chartData is a validated request with every default resolved; backends only draw it.
type chartData struct {
	xs, ys           []float64
	smoothX, smoothY []float64 // nil when the overlay is skipped
	xlim, ylim       Limits
	logScale         bool

	title, xlabel, ylabel string
	caption               string
	width, height         int
}

// SynthesizeX returns 0, step, 2*step, ... with n values.
func SynthesizeX(n int, step float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) * step
	}
	return xs
}

// SmoothingSamples is the number of points the overlay is evaluated at for a series of
// length n: n/10, never fewer than two so the overlay is always a drawable segment.
func SmoothingSamples(n int) int {
	if k := n / 10; k > 2 {
		return k
	}
	return 2
}

func prepare(req PlotRequest) (*chartData, error) {
	if len(req.Y) == 0 {
		return nil, errdefs.Invalidf("y series is empty")
	}
	xs := req.X
	if xs == nil {
		if !isFinite(req.Step) || req.Step <= 0 {
			return nil, errdefs.Invalidf("x omitted and step %v is not positive", req.Step)
		}
		xs = SynthesizeX(len(req.Y), req.Step)
	}
	if len(xs) != len(req.Y) {
		return nil, errdefs.Invalidf("x has %d values but y has %d", len(xs), len(req.Y))
	}
	if i := firstNonFinite(xs); i >= 0 {
		return nil, errdefs.Invalidf("x[%d] is not finite (%v)", i, xs[i])
	}
	if i := firstNonFinite(req.Y); i >= 0 {
		return nil, errdefs.Invalidf("y[%d] is not finite (%v)", i, req.Y[i])
	}
	if req.LogScale {
		for i, v := range req.Y {
			if v <= 0 {
				return nil, errdefs.Invalidf("log scale needs positive values, y[%d] = %v", i, v)
			}
		}
	}

	xlim, err := resolveLimits("x", req.XLims, xs)
	if err != nil {
		return nil, err
	}
	ylim, err := resolveLimits("y", req.YLims, req.Y)
	if err != nil {
		return nil, err
	}
	if req.LogScale && ylim.Min <= 0 {
		return nil, errdefs.Invalidf("log scale needs positive y limits, got [%v, %v]", ylim.Min, ylim.Max)
	}

	d := &chartData{
		xs:       xs,
		ys:       req.Y,
		xlim:     widen(xlim, false),
		ylim:     widen(ylim, req.LogScale),
		logScale: req.LogScale,
		title:    req.Title,
		xlabel:   req.XLabel,
		ylabel:   req.YLabel,
		caption:  req.Caption,
		width:    req.Width,
		height:   req.Height,
	}
	if d.width <= 0 {
		d.width = DefaultWidth
	}
	if d.height <= 0 {
		d.height = DefaultHeight
	}
	if req.Smooth {
		d.smoothX, d.smoothY = smoothOverlay(xs, req.Y)
		if d.smoothX == nil {
			logging.Debugf("%s: smoothing skipped (%d points, x not strictly increasing or too short)", req.OutputPath, len(xs))
		}
	}
	return d, nil
}

func resolveLimits(axis string, lims *Limits, values []float64) (Limits, error) {
	if lims == nil {
		return Limits{Min: floats.Min(values), Max: floats.Max(values)}, nil
	}
	if !isFinite(lims.Min) || !isFinite(lims.Max) {
		return Limits{}, errdefs.Invalidf("%s limits [%v, %v] are not finite", axis, lims.Min, lims.Max)
	}
	if lims.Min > lims.Max {
		return Limits{}, errdefs.Invalidf("%s limits [%v, %v] are reversed", axis, lims.Min, lims.Max)
	}
	return *lims, nil
}

// degenerateSpan is the relative span below which a domain is treated as a single value.
const degenerateSpan = 1e-12

// widen gives a degenerate domain (equal ends, or ends only float noise apart) a non-zero
// span around its value.
func widen(l Limits, logScale bool) Limits {
	if l.Max-l.Min > degenerateSpan*math.Max(math.Abs(l.Min), math.Abs(l.Max)) {
		return l
	}
	if logScale {
		return Limits{Min: l.Min / math.Sqrt(10), Max: l.Max * math.Sqrt(10)}
	}
	pad := math.Abs(l.Min) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return Limits{Min: l.Min - pad, Max: l.Max + pad}
}

// smoothOverlay fits a piecewise-linear interpolant over (xs, ys) sorted by x and samples it
// at SmoothingSamples evenly spaced points over [min(x), max(x)]. It returns nil slices when
// there are fewer than two points or repeated x values.
func smoothOverlay(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	if n < 2 {
		return nil, nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })
	sx := make([]float64, n)
	sy := make([]float64, n)
	for i, j := range order {
		sx[i] = xs[j]
		sy[i] = ys[j]
	}
	for i := 1; i < n; i++ {
		if sx[i] <= sx[i-1] {
			return nil, nil
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(sx, sy); err != nil {
		return nil, nil
	}
	gx := floats.Span(make([]float64, SmoothingSamples(n)), sx[0], sx[n-1])
	gy := make([]float64, len(gx))
	for i, x := range gx {
		gy[i] = pl.Predict(x)
	}
	return gx, gy
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func firstNonFinite(vs []float64) int {
	for i, v := range vs {
		if !isFinite(v) {
			return i
		}
	}
	return -1
}
