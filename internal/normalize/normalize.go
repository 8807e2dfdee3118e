package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/statclust/record"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInvalidInput is returned for empty batches, arity mismatches and
	// non-finite metric values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateFeature is returned when a column has zero variance and the
	// policy is ZeroVarianceFail.
	ErrDegenerateFeature = errors.New("degenerate feature")
)

// DefaultEpsilon is the divisor substituted for zero-variance columns under
// ZeroVarianceEpsilon when no explicit epsilon is configured.
const DefaultEpsilon = 1e-9

// relTolerance bounds the standard deviation, relative to the largest
// absolute value of the column, below which a column counts as constant.
const relTolerance = 1e-12

// ZeroVariancePolicy selects how a constant column is handled.
type ZeroVariancePolicy int

const (
	// ZeroVarianceFail rejects the batch with ErrDegenerateFeature.
	ZeroVarianceFail ZeroVariancePolicy = iota
	// ZeroVarianceEpsilon divides the centered column by Options.Epsilon.
	ZeroVarianceEpsilon
)

func (p ZeroVariancePolicy) String() string {
	switch p {
	case ZeroVarianceFail:
		return "fail"
	case ZeroVarianceEpsilon:
		return "epsilon"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseZeroVariancePolicy parses "fail" or "epsilon".
func ParseZeroVariancePolicy(s string) (ZeroVariancePolicy, error) {
	switch s {
	case "", "fail":
		return ZeroVarianceFail, nil
	case "epsilon":
		return ZeroVarianceEpsilon, nil
	default:
		return 0, fmt.Errorf("unknown zero variance policy %q", s)
	}
}

// Options configures standardization.
type Options struct {
	Policy ZeroVariancePolicy
	// Epsilon is used by ZeroVarianceEpsilon. If <= 0, DefaultEpsilon is used.
	Epsilon float64
}

// DegenerateFeatureError identifies the first constant column.
type DegenerateFeatureError struct {
	Column int
	Value  float64
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("column %d has zero variance (constant %g)", e.Column, e.Value)
}

func (e *DegenerateFeatureError) Unwrap() error { return ErrDegenerateFeature }

// Scaler holds the fitted per-column parameters.
// Scale is the divisor actually applied, which differs from the population
// standard deviation only for epsilon-scaled columns.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// Dim returns the number of columns the scaler was fitted on.
func (s *Scaler) Dim() int { return len(s.Mean) }

// Fit computes column means and population standard deviations of x.
func Fit(x mat.Matrix, opts Options) (*Scaler, error) {
	n, m := x.Dims()
	if n == 0 || m == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	}
	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	s := &Scaler{
		Mean:  make([]float64, m),
		Scale: make([]float64, m),
	}
	col := make([]float64, n)
	for j := 0; j < m; j++ {
		mat.Col(col, j, x)
		for i, v := range col {
			if !isFinite(v) {
				return nil, fmt.Errorf("%w: non-finite value at row %d column %d", ErrInvalidInput, i, j)
			}
		}

		mean, std := stat.PopMeanStdDev(col, nil)
		if !isFinite(mean) || !isFinite(std) {
			return nil, fmt.Errorf("%w: column %d overflows (mean %g, std %g)", ErrInvalidInput, j, mean, std)
		}
		s.Mean[j] = mean
		if std <= relTolerance*math.Max(math.Abs(floats.Min(col)), math.Abs(floats.Max(col))) {
			if opts.Policy != ZeroVarianceEpsilon {
				return nil, &DegenerateFeatureError{Column: j, Value: col[0]}
			}
			std = eps
		}
		s.Scale[j] = std
	}
	return s, nil
}

// Transform standardizes x in place.
func (s *Scaler) Transform(x *mat.Dense) {
	n, m := x.Dims()
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for j := 0; j < m; j++ {
			row[j] = (row[j] - s.Mean[j]) / s.Scale[j]
		}
	}
}

// TransformVec returns a standardized copy of v.
// Non-finite inputs, or values whose standardized form overflows, are
// rejected with ErrInvalidInput.
func (s *Scaler) TransformVec(v []float64) ([]float64, error) {
	if len(v) != len(s.Mean) {
		return nil, fmt.Errorf("%w: vector has %d values, scaler has %d", ErrInvalidInput, len(v), len(s.Mean))
	}
	out := make([]float64, len(v))
	for j := range v {
		if !isFinite(v[j]) {
			return nil, fmt.Errorf("%w: non-finite value at column %d", ErrInvalidInput, j)
		}
		out[j] = (v[j] - s.Mean[j]) / s.Scale[j]
		if !isFinite(out[j]) {
			return nil, fmt.Errorf("%w: column %d overflows when standardized", ErrInvalidInput, j)
		}
	}
	return out, nil
}

// Inverse maps standardized rows back to raw metric units.
func (s *Scaler) Inverse(x mat.Matrix) *mat.Dense {
	n, m := x.Dims()
	out := mat.DenseCopyOf(x)
	for i := 0; i < n; i++ {
		row := out.RawRowView(i)
		for j := 0; j < m; j++ {
			row[j] = row[j]*s.Scale[j] + s.Mean[j]
		}
	}
	return out
}

// Matrix copies the metric tuples of records into a dense (n, m) matrix,
// preserving record order.
func Matrix(records []record.Record) (*mat.Dense, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidInput)
	}
	m, err := record.Arity(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	data := make([]float64, 0, len(records)*m)
	for _, r := range records {
		data = r.AppendMetrics(data)
	}
	return mat.NewDense(len(records), m, data), nil
}

// Standardize builds the standardized feature matrix for records and the
// identifier list aligned with its rows.
func Standardize(records []record.Record, opts Options) (*mat.Dense, []string, *Scaler, error) {
	x, err := Matrix(records)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := Fit(x, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	s.Transform(x)
	for i, v := range x.RawMatrix().Data {
		if !isFinite(v) {
			_, m := x.Dims()
			return nil, nil, nil, fmt.Errorf("%w: row %d column %d overflows when standardized", ErrInvalidInput, i/m, i%m)
		}
	}
	return x, record.IDs(records), s, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
