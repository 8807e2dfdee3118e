package statclust

import (
	"errors"
	"fmt"

	"github.com/hupe1980/statclust/internal/kmeans"
	"github.com/hupe1980/statclust/internal/normalize"
	"github.com/hupe1980/statclust/record"
)

var (
	// ErrInvalidInput is returned for empty record batches, metric arity
	// mismatches and non-finite metric values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration is returned for a k outside [1, records], a
	// non-positive iteration budget or unusable initial rows.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDegenerateFeature is returned when a metric column is constant and
	// the zero-variance policy is ZeroVarianceFail.
	ErrDegenerateFeature = errors.New("degenerate feature")
)

// ArityMismatchError indicates a record whose metric arity differs from the
// first record of the batch. It matches ErrInvalidInput.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ArityMismatchError struct {
	Index    int
	Expected int
	Actual   int
	cause    error
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("arity mismatch at record %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *ArityMismatchError) Unwrap() error { return e.cause }

func (e *ArityMismatchError) Is(target error) bool { return target == ErrInvalidInput }

// DegenerateFeatureError identifies a zero-variance metric column.
// It matches ErrDegenerateFeature.
type DegenerateFeatureError struct {
	Column int
	Value  float64
	cause  error
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("degenerate feature: column %d is constant (%g)", e.Column, e.Value)
}

func (e *DegenerateFeatureError) Unwrap() error { return e.cause }

func (e *DegenerateFeatureError) Is(target error) bool { return target == ErrDegenerateFeature }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ae *record.ArityError
	if errors.As(err, &ae) {
		return &ArityMismatchError{Index: ae.Index, Expected: ae.Expected, Actual: ae.Actual, cause: err}
	}
	var de *normalize.DegenerateFeatureError
	if errors.As(err, &de) {
		return &DegenerateFeatureError{Column: de.Column, Value: de.Value, cause: err}
	}

	if errors.Is(err, normalize.ErrInvalidInput) || errors.Is(err, kmeans.ErrInvalidInput) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, kmeans.ErrInvalidConfiguration) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return err
}
