package transform

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is the category of errors caused by a call that breaks an input contract,
	// such as correspondence sets of different lengths or too few points.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNumeric is the category of errors caused by a degenerate numeric configuration, such as
	// a point set whose points all coincide or a point at infinity.
	ErrNumeric = errors.New("degenerate numeric configuration")
	// ErrEstimationFailed is returned when robust estimation finds no model with any support. The
	// call was valid but the data was unusable.
	ErrEstimationFailed = errors.New("failed to estimate fundamental matrix")
)

func newInputError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func newNumericError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNumeric, format, args...)
}

// checkDims returns an input error if m is not rows x cols.
func checkDims(name string, m interface{ Dims() (int, int) }, rows, cols int) error {
	if m == nil {
		return newInputError("%s is nil", name)
	}
	r, c := m.Dims()
	if r != rows || c != cols {
		return newInputError("%s must be %dx%d, got %dx%d", name, rows, cols, r, c)
	}
	return nil
}
