package statclust

import (
	"math/rand/v2"

	"github.com/hupe1980/statclust/internal/normalize"
)

// ZeroVariancePolicy selects how a constant metric column is standardized.
type ZeroVariancePolicy = normalize.ZeroVariancePolicy

const (
	// ZeroVarianceFail rejects the batch with ErrDegenerateFeature (default).
	ZeroVarianceFail = normalize.ZeroVarianceFail
	// ZeroVarianceEpsilon divides a constant column by the configured epsilon,
	// which maps it to zeros.
	ZeroVarianceEpsilon = normalize.ZeroVarianceEpsilon
)

// ParseZeroVariancePolicy parses "fail" or "epsilon".
func ParseZeroVariancePolicy(s string) (ZeroVariancePolicy, error) {
	return normalize.ParseZeroVariancePolicy(s)
}

const (
	// DefaultMaxIter is the iteration budget used when none is configured.
	DefaultMaxIter = 300
	// DefaultEpsilon is the zero-variance divisor used by ZeroVarianceEpsilon.
	DefaultEpsilon = normalize.DefaultEpsilon
)

type options struct {
	maxIter          int
	rng              *rand.Rand
	initialRows      []int
	workers          int
	parallelism      int
	zeroVariance     ZeroVariancePolicy
	epsilon          float64
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures Cluster and Sweep.
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{
		maxIter:          DefaultMaxIter,
		workers:          1,
		zeroVariance:     ZeroVarianceFail,
		epsilon:          DefaultEpsilon,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxIter sets the maximum number of assignment/update iterations.
// Non-positive values are rejected by Cluster with ErrInvalidConfiguration.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithSeed seeds the random source used to pick initial centroids.
// Two runs with the same seed, records and k produce identical results.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRand sets the random source used to pick initial centroids.
// The source is not safe for concurrent use; Sweep draws per-run seeds from
// it before starting any run.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithInitialRows uses the given record positions as initial centroids
// instead of a random choice. The number of rows must equal k.
func WithInitialRows(rows ...int) Option {
	return func(o *options) {
		o.initialRows = rows
	}
}

// WithWorkers sets the number of goroutines used by the assignment step.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParallelism bounds how many runs Sweep executes at once.
// If n <= 0, GOMAXPROCS is used.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithZeroVariancePolicy selects how constant metric columns are handled.
func WithZeroVariancePolicy(p ZeroVariancePolicy) Option {
	return func(o *options) {
		o.zeroVariance = p
	}
}

// WithEpsilon sets the divisor used for constant columns under
// ZeroVarianceEpsilon.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopMetricsCollector{}
		}
		o.metricsCollector = c
	}
}
