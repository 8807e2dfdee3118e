package statclust

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/statclust/internal/kmeans"
	"github.com/hupe1980/statclust/internal/normalize"
	"github.com/hupe1980/statclust/record"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Scaler holds the per-column standardization parameters of a run.
type Scaler struct {
	Mean  []float64 `json:"mean" msgpack:"mean"`
	Scale []float64 `json:"scale" msgpack:"scale"`
}

// Result is the output of a clustering run.
//
// IDs, Labels and the rows of the standardized feature matrix share the input
// record order.
type Result struct {
	K          int         `json:"k" msgpack:"k"`
	IDs        []string    `json:"ids" msgpack:"ids"`
	Labels     []int       `json:"labels" msgpack:"labels"`
	Centroids  [][]float64 `json:"centroids" msgpack:"centroids"` // standardized units
	Sizes      []int       `json:"sizes" msgpack:"sizes"`
	Iterations int         `json:"iterations" msgpack:"iterations"`
	Converged  bool        `json:"converged" msgpack:"converged"`
	Scaler     Scaler      `json:"scaler" msgpack:"scaler"`
}

// Assignment pairs a record identifier with its cluster.
type Assignment struct {
	ID      string `json:"id" yaml:"id"`
	Cluster int    `json:"cluster" yaml:"cluster"`
}

// Cluster standardizes records and partitions them into k clusters.
//
// The result is either complete and index-aligned or nil with an error
// matching ErrInvalidInput, ErrInvalidConfiguration or ErrDegenerateFeature.
func Cluster(ctx context.Context, records []record.Record, k int, opts ...Option) (*Result, error) {
	o := applyOptions(opts)

	x, ids, scaler, err := o.standardize(ctx, records)
	if err != nil {
		return nil, err
	}
	return o.cluster(ctx, x, ids, scaler, k)
}

// Sweep clusters the same records once per entry of ks, running up to
// WithParallelism runs concurrently. Each run works on its own copy of the
// standardized matrix. Results are returned in ks order.
func Sweep(ctx context.Context, records []record.Record, ks []int, opts ...Option) ([]*Result, error) {
	o := applyOptions(opts)
	start := time.Now()

	results, err := o.sweep(ctx, records, ks)
	o.metricsCollector.RecordSweep(len(ks), time.Since(start), err)
	o.logger.LogSweep(ctx, len(ks), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (o options) sweep(ctx context.Context, records []record.Record, ks []int) ([]*Result, error) {
	if len(ks) == 0 {
		return nil, fmt.Errorf("%w: no cluster counts", ErrInvalidConfiguration)
	}

	x, ids, scaler, err := o.standardize(ctx, records)
	if err != nil {
		return nil, err
	}

	// Per-run seeds are drawn up front so a seeded sweep is reproducible
	// regardless of scheduling.
	seeds := make([]uint64, len(ks))
	for i := range seeds {
		if o.rng != nil {
			seeds[i] = o.rng.Uint64()
		} else {
			seeds[i] = rand.Uint64()
		}
	}

	limit := o.parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(ks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, k := range ks {
		g.Go(func() error {
			ro := o
			ro.rng = rand.New(rand.NewPCG(seeds[i], uint64(k)))
			res, err := ro.cluster(gctx, mat.DenseCopyOf(x), slices.Clone(ids), scaler, k)
			if err != nil {
				return fmt.Errorf("k=%d: %w", k, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o options) standardize(ctx context.Context, records []record.Record) (*mat.Dense, []string, *normalize.Scaler, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	start := time.Now()
	x, ids, scaler, err := normalize.Standardize(records, normalize.Options{
		Policy:  o.zeroVariance,
		Epsilon: o.epsilon,
	})
	err = translateError(err)
	o.metricsCollector.RecordNormalize(len(records), time.Since(start), err)

	dim := 0
	if x != nil {
		_, dim = x.Dims()
	}
	o.logger.LogNormalize(ctx, len(records), dim, err)
	if err != nil {
		return nil, nil, nil, err
	}
	return x, ids, scaler, nil
}

func (o options) cluster(ctx context.Context, x *mat.Dense, ids []string, scaler *normalize.Scaler, k int) (*Result, error) {
	cfg := kmeans.Config{
		K:       k,
		MaxIter: o.maxIter,
		Workers: o.workers,
	}
	switch {
	case o.initialRows != nil:
		cfg.Init = kmeans.FixedInit(o.initialRows...)
	case o.rng != nil:
		cfg.Init = kmeans.RandomInit(o.rng)
	}

	start := time.Now()
	model, err := kmeans.Train(ctx, x, cfg)
	err = translateError(err)
	if err != nil {
		o.metricsCollector.RecordCluster(k, 0, false, time.Since(start), err)
		o.logger.LogCluster(ctx, k, 0, false, err)
		return nil, err
	}
	o.metricsCollector.RecordCluster(k, model.Iterations, model.Converged, time.Since(start), nil)
	o.logger.LogCluster(ctx, k, model.Iterations, model.Converged, nil)

	return &Result{
		K:          k,
		IDs:        ids,
		Labels:     model.Labels,
		Centroids:  denseRows(model.Centroids),
		Sizes:      model.Sizes,
		Iterations: model.Iterations,
		Converged:  model.Converged,
		Scaler: Scaler{
			Mean:  slices.Clone(scaler.Mean),
			Scale: slices.Clone(scaler.Scale),
		},
	}, nil
}

// Dim returns the number of metric columns.
func (r *Result) Dim() int { return len(r.Scaler.Mean) }

// Assignments returns the (id, cluster) pairs in record order.
func (r *Result) Assignments() []Assignment {
	out := make([]Assignment, len(r.IDs))
	for i, id := range r.IDs {
		out[i] = Assignment{ID: id, Cluster: r.Labels[i]}
	}
	return out
}

// Members returns the record positions labeled j.
func (r *Result) Members(j int) *roaring.Bitmap {
	bm := roaring.New()
	for i, l := range r.Labels {
		if l == j {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// MemberIDs returns the identifiers of the records labeled j, in record order.
func (r *Result) MemberIDs(j int) []string {
	members := r.Members(j)
	ids := make([]string, 0, members.GetCardinality())
	it := members.Iterator()
	for it.HasNext() {
		ids = append(ids, r.IDs[it.Next()])
	}
	return ids
}

// RawCentroids returns the centroids in the original metric units.
func (r *Result) RawCentroids() [][]float64 {
	return denseRows(r.scaler().Inverse(r.centroids()))
}

// Predict standardizes metrics with the fitted scaler and returns the
// nearest centroid.
func (r *Result) Predict(metrics []float64) (int, error) {
	if len(r.Centroids) == 0 {
		return -1, fmt.Errorf("%w: result has no centroids", ErrInvalidInput)
	}
	v, err := r.scaler().TransformVec(metrics)
	if err != nil {
		return -1, translateError(err)
	}
	j := kmeans.Predict(v, r.centroids())
	if j < 0 {
		return -1, fmt.Errorf("%w: no centroid within finite distance", ErrInvalidInput)
	}
	return j, nil
}

// Validate checks the alignment invariants of a result, typically one
// decoded from a snapshot.
func (r *Result) Validate() error {
	if r.K <= 0 || len(r.Centroids) != r.K || len(r.Sizes) != r.K {
		return fmt.Errorf("%w: result has k=%d with %d centroids and %d sizes", ErrInvalidInput, r.K, len(r.Centroids), len(r.Sizes))
	}
	if len(r.IDs) != len(r.Labels) {
		return fmt.Errorf("%w: %d ids for %d labels", ErrInvalidInput, len(r.IDs), len(r.Labels))
	}
	dim := r.Dim()
	if dim == 0 || len(r.Scaler.Scale) != dim {
		return fmt.Errorf("%w: scaler dimension mismatch", ErrInvalidInput)
	}
	for j, c := range r.Centroids {
		if len(c) != dim {
			return fmt.Errorf("%w: centroid %d has %d values, expected %d", ErrInvalidInput, j, len(c), dim)
		}
	}
	for i, l := range r.Labels {
		if l < 0 || l >= r.K {
			return fmt.Errorf("%w: label %d of record %d out of range", ErrInvalidInput, l, i)
		}
	}
	return nil
}

func (r *Result) scaler() *normalize.Scaler {
	return &normalize.Scaler{Mean: r.Scaler.Mean, Scale: r.Scaler.Scale}
}

func (r *Result) centroids() *mat.Dense {
	dim := r.Dim()
	data := make([]float64, 0, len(r.Centroids)*dim)
	for _, c := range r.Centroids {
		data = append(data, c...)
	}
	return mat.NewDense(len(r.Centroids), dim, data)
}

func denseRows(m *mat.Dense) [][]float64 {
	n, _ := m.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = slices.Clone(m.RawRowView(i))
	}
	return rows
}
