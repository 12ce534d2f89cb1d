package plotting

import "github.com/idsgame-lab/ExperimentReports/src/errdefs"

// Error kinds returned by Render; the same values as in errdefs, so errors.Is works with either.
var (
	ErrInvalidInput = errdefs.ErrInvalidInput
	ErrIO           = errdefs.ErrIO
)
