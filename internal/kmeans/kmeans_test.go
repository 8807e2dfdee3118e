package kmeans

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// blobs returns perCenter points around each center with uniform jitter.
func blobs(rng *rand.Rand, centers [][]float64, perCenter int, spread float64) *mat.Dense {
	dim := len(centers[0])
	data := make([]float64, 0, len(centers)*perCenter*dim)
	for _, c := range centers {
		for p := 0; p < perCenter; p++ {
			for _, v := range c {
				data = append(data, v+(rng.Float64()*2-1)*spread)
			}
		}
	}
	return mat.NewDense(len(centers)*perCenter, dim, data)
}

func TestTrain_TwoClusters(t *testing.T) {
	ctx := context.Background()
	data := mat.NewDense(4, 1, []float64{0.0, 0.1, 0.9, 1.0})

	model, err := Train(ctx, data, Config{K: 2, MaxIter: 10, Init: FixedInit(0, 3)})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 1, 1}, model.Labels)
	assert.InDelta(t, 0.05, model.Centroids.At(0, 0), 1e-12)
	assert.InDelta(t, 0.95, model.Centroids.At(1, 0), 1e-12)
	assert.Equal(t, []int{2, 2}, model.Sizes)
	assert.True(t, model.Converged)
	assert.Equal(t, 2, model.Iterations)
}

func TestTrain_ExhaustedBudget(t *testing.T) {
	ctx := context.Background()
	data := mat.NewDense(4, 1, []float64{0.0, 0.1, 0.9, 1.0})

	model, err := Train(ctx, data, Config{K: 2, MaxIter: 1, Init: FixedInit(0, 1)})
	require.NoError(t, err)

	// The pass after the budget moves row 1 back to cluster 0 but is not
	// counted as an iteration.
	assert.Equal(t, 1, model.Iterations)
	assert.False(t, model.Converged)
	assert.Equal(t, []int{0, 0, 1, 1}, model.Labels)
	assert.InDelta(t, 0.0, model.Centroids.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0/3.0, model.Centroids.At(1, 0), 1e-12)
}

func TestTrain_SeparatedBlobs(t *testing.T) {
	ctx := context.Background()
	rng := seeded(7)
	data := blobs(rng, [][]float64{{0, 0}, {10, 10}}, 20, 0.5)

	model, err := Train(ctx, data, Config{K: 2, MaxIter: 100, Init: FixedInit(3, 25)})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.Equal(t, 0, model.Labels[i])
		assert.Equal(t, 1, model.Labels[20+i])
	}
	assert.Equal(t, []int{20, 20}, model.Sizes)
	assert.True(t, model.Converged)

	p1 := Predict([]float64{0.5, 0.5}, model.Centroids)
	p2 := Predict([]float64{10.5, 10.5}, model.Centroids)
	assert.Equal(t, model.Labels[0], p1)
	assert.Equal(t, model.Labels[20], p2)
}

func TestTrain_SingleCluster(t *testing.T) {
	ctx := context.Background()
	data := blobs(seeded(3), [][]float64{{1, -2, 3}}, 15, 2)

	model, err := Train(ctx, data, Config{K: 1, MaxIter: 10, Init: RandomInit(seeded(11))})
	require.NoError(t, err)

	for _, l := range model.Labels {
		assert.Equal(t, 0, l)
	}
	n, dim := data.Dims()
	col := make([]float64, n)
	for j := 0; j < dim; j++ {
		mat.Col(col, j, data)
		assert.InDelta(t, stat.Mean(col, nil), model.Centroids.At(0, j), 1e-9)
	}
	assert.Equal(t, []int{n}, model.Sizes)
}

func TestTrain_AlignmentAndRange(t *testing.T) {
	ctx := context.Background()
	data := blobs(seeded(5), [][]float64{{0, 0, 0}, {4, 4, 4}, {-4, 4, 0}}, 10, 1.5)
	n, dim := data.Dims()

	for _, k := range []int{1, 2, 3, 5, n} {
		model, err := Train(ctx, data, Config{K: k, MaxIter: 25, Init: RandomInit(seeded(uint64(k)))})
		require.NoError(t, err)

		assert.Len(t, model.Labels, n)
		r, c := model.Centroids.Dims()
		assert.Equal(t, k, r)
		assert.Equal(t, dim, c)
		for _, l := range model.Labels {
			assert.GreaterOrEqual(t, l, 0)
			assert.Less(t, l, k)
		}
	}
}

func TestTrain_LabelsConsistentWithCentroids(t *testing.T) {
	ctx := context.Background()
	data := blobs(seeded(21), [][]float64{{0, 0}, {3, 0}, {0, 3}, {3, 3}}, 25, 1.4)

	// A budget of one iteration ends on an update step, which exercises the
	// final assignment pass.
	for _, maxIter := range []int{1, 2, 3, 50} {
		model, err := Train(ctx, data, Config{K: 4, MaxIter: maxIter, Init: RandomInit(seeded(9))})
		require.NoError(t, err)

		relabeled := make([]int, len(model.Labels))
		copy(relabeled, model.Labels)
		changed := Assign(data, model.Centroids, relabeled)

		assert.False(t, changed, "maxIter=%d", maxIter)
		assert.Equal(t, model.Labels, relabeled, "maxIter=%d", maxIter)
		assert.LessOrEqual(t, model.Iterations, maxIter)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	ctx := context.Background()
	data := blobs(seeded(1), [][]float64{{0, 0}, {5, 5}, {0, 5}}, 30, 2)

	run := func() *Model {
		model, err := Train(ctx, data, Config{K: 3, MaxIter: 100, Init: RandomInit(seeded(42))})
		require.NoError(t, err)
		return model
	}

	a, b := run(), run()
	assert.Equal(t, a.Labels, b.Labels)
	assert.True(t, mat.Equal(a.Centroids, b.Centroids))
	assert.Equal(t, a.Iterations, b.Iterations)
}

func TestTrain_ParallelMatchesSerial(t *testing.T) {
	ctx := context.Background()
	data := blobs(seeded(13), [][]float64{{0, 0}, {6, 0}, {0, 6}}, 40, 2.5)

	serial, err := Train(ctx, data, Config{K: 3, MaxIter: 100, Init: RandomInit(seeded(8))})
	require.NoError(t, err)

	parallel, err := Train(ctx, data, Config{K: 3, MaxIter: 100, Init: RandomInit(seeded(8)), Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, serial.Labels, parallel.Labels)
	assert.True(t, mat.Equal(serial.Centroids, parallel.Centroids))
}

func TestTrain_EmptyClusterKeepsCentroid(t *testing.T) {
	ctx := context.Background()
	// Rows 0 and 1 are identical, so every tie goes to centroid 0 and
	// centroid 1 never receives a row.
	data := mat.NewDense(4, 1, []float64{7, 7, 7, 3})

	model, err := Train(ctx, data, Config{K: 3, MaxIter: 10, Init: FixedInit(0, 1, 3)})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 2}, model.Labels)
	assert.Equal(t, []int{3, 0, 1}, model.Sizes)

	c1 := model.Centroids.At(1, 0)
	assert.False(t, math.IsNaN(c1))
	assert.Equal(t, 7.0, c1)
	assert.Equal(t, 7.0, model.Centroids.At(0, 0))
	assert.Equal(t, 3.0, model.Centroids.At(2, 0))
}

func TestRandomInit(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		rows, err := RandomInit(seeded(seed))(20, 5)
		require.NoError(t, err)
		require.NoError(t, validateRows(rows, 20, 5))

		again, err := RandomInit(seeded(seed))(20, 5)
		require.NoError(t, err)
		assert.Equal(t, rows, again)
	}

	rows, err := RandomInit(seeded(1))(4, 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, rows)
}

func TestTrain_Errors(t *testing.T) {
	ctx := context.Background()
	data := mat.NewDense(3, 1, []float64{1, 2, 3})

	tests := []struct {
		name string
		data *mat.Dense
		cfg  Config
		want error
	}{
		{"NilData", nil, Config{K: 1, MaxIter: 1}, ErrInvalidInput},
		{"EmptyData", &mat.Dense{}, Config{K: 1, MaxIter: 1}, ErrInvalidInput},
		{"ZeroK", data, Config{K: 0, MaxIter: 1}, ErrInvalidConfiguration},
		{"NegativeK", data, Config{K: -2, MaxIter: 1}, ErrInvalidConfiguration},
		{"KGreaterThanRows", data, Config{K: 4, MaxIter: 1}, ErrInvalidConfiguration},
		{"ZeroMaxIter", data, Config{K: 2, MaxIter: 0}, ErrInvalidConfiguration},
		{"FixedInitWrongCount", data, Config{K: 2, MaxIter: 1, Init: FixedInit(0)}, ErrInvalidConfiguration},
		{"FixedInitDuplicate", data, Config{K: 2, MaxIter: 1, Init: FixedInit(1, 1)}, ErrInvalidConfiguration},
		{"FixedInitOutOfRange", data, Config{K: 2, MaxIter: 1, Init: FixedInit(0, 3)}, ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := Train(ctx, tt.data, tt.cfg)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, model)
		})
	}
}

func TestTrain_DefaultInitializer(t *testing.T) {
	data := blobs(seeded(6), [][]float64{{0}, {10}}, 5, 0.1)
	model, err := Train(context.Background(), data, Config{K: 2, MaxIter: 10})
	require.NoError(t, err)
	assert.NotEqual(t, model.Labels[0], model.Labels[5])
}

func TestTrain_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	data := blobs(seeded(1), [][]float64{{0, 0}, {1, 1}}, 500, 1)

	_, err := Train(ctx, data, Config{K: 10, MaxIter: 1000, Init: RandomInit(seeded(1))})
	assert.ErrorIs(t, err, context.Canceled)
}
