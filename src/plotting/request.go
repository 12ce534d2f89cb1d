// Package plotting renders a single two-dimensional line chart (raw series plus an
// optional interpolated overlay) and writes it to an image file.
package plotting

// Default chart size in pixels; 8x3 inches at 100 dpi.
const (
	DefaultWidth  = 800
	DefaultHeight = 300
)

// Limits is an inclusive [Min, Max] axis domain.
type Limits struct {
	Min float64
	Max float64
}

// PlotRequest bundles the data and display options of one chart.
//
// When X is nil it is synthesized as 0, Step, 2*Step, ... with len(Y) values.
// Nil XLims/YLims default to the observed range of the data.
type PlotRequest struct {
	X    []float64
	Y    []float64
	Step float64

	Title      string
	XLabel     string
	YLabel     string
	OutputPath string

	XLims *Limits
	YLims *Limits

	LogScale bool
	Smooth   bool

	Width   int
	Height  int
	Caption string
}

// Option customizes a PlotRequest built by RenderLineChart or NewPlotRequest.
type Option func(*PlotRequest)

// WithXLims fixes the x-axis domain.
func WithXLims(min, max float64) Option {
	return func(r *PlotRequest) { r.XLims = &Limits{Min: min, Max: max} }
}

// WithYLims fixes the y-axis domain.
func WithYLims(min, max float64) Option {
	return func(r *PlotRequest) { r.YLims = &Limits{Min: min, Max: max} }
}

// WithLogScale draws the y axis on a base-10 logarithmic scale.
func WithLogScale() Option {
	return func(r *PlotRequest) { r.LogScale = true }
}

// WithSmoothing toggles the interpolated overlay (on by default).
func WithSmoothing(on bool) Option {
	return func(r *PlotRequest) { r.Smooth = on }
}

// WithSize sets the output size in pixels (PNG) or points (vector formats).
func WithSize(width, height int) Option {
	return func(r *PlotRequest) {
		r.Width = width
		r.Height = height
	}
}

// WithCaption burns a short footnote into the bottom-left corner of PNG output.
func WithCaption(text string) Option {
	return func(r *PlotRequest) { r.Caption = text }
}

// WithStep sets the spacing used when X is synthesized.
func WithStep(step float64) Option {
	return func(r *PlotRequest) { r.Step = step }
}

// NewPlotRequest returns a request for y with smoothing enabled and a unit step.
func NewPlotRequest(y []float64, title, xlabel, ylabel, outputPath string, opts ...Option) PlotRequest {
	req := PlotRequest{
		Y:          y,
		Step:       1,
		Title:      title,
		XLabel:     xlabel,
		YLabel:     ylabel,
		OutputPath: outputPath,
		Smooth:     true,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
