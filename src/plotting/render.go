package plotting

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
)

// Formats lists the supported output extensions (without the dot). png is rendered with
// go-chart, the others with gonum/plot.
var Formats = []string{"png", "svg", "pdf", "eps"}

// FormatOf returns the output format implied by path's extension.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if ext == f {
			return f, nil
		}
	}
	return "", errdefs.Invalidf("unsupported output extension %q in %s (want one of %s)", ext, path, strings.Join(Formats, ", "))
}

// RenderLineChart draws y against x and writes the chart to outputPath. Smoothing is on
// unless WithSmoothing(false) is given; limits default to the observed data range.
func RenderLineChart(x, y []float64, title, xlabel, ylabel, outputPath string, opts ...Option) error {
	// Synthesizing x is a PlotRequest feature; here a nil x is a caller error.
	if x == nil {
		return errdefs.Invalidf("x series is nil")
	}
	req := NewPlotRequest(y, title, xlabel, ylabel, outputPath, opts...)
	req.X = x
	return Render(req)
}

// Render validates req, draws it and replaces req.OutputPath with the result.
// Errors match ErrInvalidInput for unusable requests and ErrIO for write failures.
func Render(req PlotRequest) error {
	defer logging.TimeTrack(time.Now(), "render "+req.OutputPath)
	if req.OutputPath == "" {
		return errdefs.Invalidf("output path is empty")
	}
	format, err := FormatOf(req.OutputPath)
	if err != nil {
		return err
	}
	d, err := prepare(req)
	if err != nil {
		return err
	}
	var data []byte
	if format == "png" {
		data, err = renderPNG(d)
	} else {
		data, err = renderVector(d, format)
	}
	if err != nil {
		return err
	}
	if err := writeFileAtomic(req.OutputPath, data); err != nil {
		return err
	}
	logging.Debugf("wrote %s (%d bytes, %d points)", req.OutputPath, len(data), len(d.xs))
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into place, so a
// failed write never leaves a truncated chart behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errdefs.IOError("create "+path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errdefs.IOError("write "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return errdefs.IOError("close "+path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errdefs.IOError("chmod "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errdefs.IOError("rename "+path, err)
	}
	tmpName = ""
	return nil
}
