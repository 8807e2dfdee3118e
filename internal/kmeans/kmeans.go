package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/statclust/distance"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidInput is returned when the data matrix has no rows.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration is returned for a bad k, iteration budget or
	// initializer result.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Initializer picks the k input rows used as initial centroids.
// Implementations must return k distinct indices in [0, n).
type Initializer func(n, k int) ([]int, error)

// RandomInit selects k distinct rows uniformly at random without replacement.
func RandomInit(rng *rand.Rand) Initializer {
	return func(n, k int) ([]int, error) {
		return rng.Perm(n)[:k], nil
	}
}

// FixedInit uses the given rows as initial centroids, in order.
func FixedInit(rows ...int) Initializer {
	return func(_, k int) ([]int, error) {
		if len(rows) != k {
			return nil, fmt.Errorf("%w: %d initial rows for k=%d", ErrInvalidConfiguration, len(rows), k)
		}
		out := make([]int, k)
		copy(out, rows)
		return out, nil
	}
}

// Config controls a training run.
type Config struct {
	// K is the number of clusters, 1 <= K <= rows.
	K int
	// MaxIter bounds the number of assignment/update iterations.
	MaxIter int
	// Init picks the initial centroids. If nil, RandomInit with a
	// runtime-seeded source is used.
	Init Initializer
	// Workers is the number of goroutines used by the assignment step.
	// Values <= 1 run it on the calling goroutine.
	Workers int
}

// Model is the result of a training run.
type Model struct {
	// Centroids has shape (K, dim).
	Centroids *mat.Dense
	// Labels holds the nearest centroid of every row under the returned
	// centroids.
	Labels []int
	// Sizes counts the rows per cluster. Empty clusters have size 0.
	Sizes []int
	// Iterations is the number of assignment/update iterations performed,
	// at most Config.MaxIter. The assignment pass made after the budget runs
	// out is not counted.
	Iterations int
	// Converged reports whether an assignment pass left every label
	// unchanged. After an exhausted budget it reflects the extra pass.
	Converged bool
}

// Train clusters the rows of data into cfg.K clusters using Lloyd's algorithm.
//
// Labels returned are always consistent with the returned centroids: when the
// iteration budget runs out right after an update, one more assignment pass
// is made against the final centroids.
func Train(ctx context.Context, data *mat.Dense, cfg Config) (*Model, error) {
	if data == nil || data.IsEmpty() {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	n, dim := data.Dims()
	k := cfg.K
	if k <= 0 || k > n {
		return nil, fmt.Errorf("%w: k=%d must be in [1, %d]", ErrInvalidConfiguration, k, n)
	}
	if cfg.MaxIter <= 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidConfiguration, cfg.MaxIter)
	}

	init := cfg.Init
	if init == nil {
		init = RandomInit(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	}
	rows, err := init(n, k)
	if err != nil {
		return nil, err
	}
	if err := validateRows(rows, n, k); err != nil {
		return nil, err
	}

	centroids := mat.NewDense(k, dim, nil)
	for j, r := range rows {
		centroids.SetRow(j, data.RawRowView(r))
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	model := &Model{Centroids: centroids, Labels: labels}
	u := newUpdater(k, dim)

	for iter := 0; iter < cfg.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed, err := assign(ctx, data, centroids, labels, cfg.Workers)
		if err != nil {
			return nil, err
		}
		model.Iterations++

		if !changed {
			model.Converged = true
			break
		}

		u.update(data, labels, centroids)
	}

	if !model.Converged {
		changed, err := assign(ctx, data, centroids, labels, cfg.Workers)
		if err != nil {
			return nil, err
		}
		model.Converged = !changed
	}

	model.Sizes = make([]int, k)
	for _, l := range labels {
		model.Sizes[l]++
	}
	return model, nil
}

func validateRows(rows []int, n, k int) error {
	if len(rows) != k {
		return fmt.Errorf("%w: initializer returned %d rows for k=%d", ErrInvalidConfiguration, len(rows), k)
	}
	seen := make(map[int]struct{}, k)
	for _, r := range rows {
		if r < 0 || r >= n {
			return fmt.Errorf("%w: initial row %d out of range [0, %d)", ErrInvalidConfiguration, r, n)
		}
		if _, dup := seen[r]; dup {
			return fmt.Errorf("%w: initial row %d selected twice", ErrInvalidConfiguration, r)
		}
		seen[r] = struct{}{}
	}
	return nil
}

// Assign sets labels[i] to the nearest centroid of row i and reports whether
// any label changed. Ties go to the lowest centroid index.
// labels must have one entry per row of data.
func Assign(data, centroids *mat.Dense, labels []int) bool {
	return assignRange(data, centroids, labels, 0, len(labels))
}

// Predict returns the nearest centroid of vec.
func Predict(vec []float64, centroids *mat.Dense) int {
	j, _ := distance.Nearest(vec, centroids)
	return j
}

func assignRange(data, centroids *mat.Dense, labels []int, lo, hi int) bool {
	changed := false
	for i := lo; i < hi; i++ {
		best, _ := distance.Nearest(data.RawRowView(i), centroids)
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// assign runs the assignment step, splitting rows into contiguous chunks when
// workers > 1. It returns only after every chunk is done.
func assign(ctx context.Context, data, centroids *mat.Dense, labels []int, workers int) (bool, error) {
	n := len(labels)
	if workers <= 1 || n < 2*workers {
		return assignRange(data, centroids, labels, 0, n), nil
	}

	chunk := (n + workers - 1) / workers
	changed := make([]bool, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed[w] = assignRange(data, centroids, labels, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	for _, c := range changed {
		if c {
			return true, nil
		}
	}
	return false, nil
}

// updater holds the scratch buffers of the update step across iterations.
type updater struct {
	sums   *mat.Dense
	counts []int
}

func newUpdater(k, dim int) *updater {
	return &updater{
		sums:   mat.NewDense(k, dim, nil),
		counts: make([]int, k),
	}
}

// update moves every non-empty centroid to the mean of its rows.
// Centroids of empty clusters are left where they are.
func (u *updater) update(data *mat.Dense, labels []int, centroids *mat.Dense) {
	u.sums.Zero()
	clear(u.counts)

	for i, l := range labels {
		floats.Add(u.sums.RawRowView(l), data.RawRowView(i))
		u.counts[l]++
	}

	for j, c := range u.counts {
		if c == 0 {
			continue
		}
		row := centroids.RawRowView(j)
		copy(row, u.sums.RawRowView(j))
		floats.Scale(1/float64(c), row)
	}
}
