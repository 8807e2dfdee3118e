package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/statclust/record"
)

func TestUniformRecords(t *testing.T) {
	rng := NewRNG(4711)

	recs := rng.UniformRecords(8, 3)

	require.Len(t, recs, 8)
	assert.Equal(t, "r0", recs[0].ID())
	m, err := record.Arity(recs)
	require.NoError(t, err)
	assert.Equal(t, 3, m)
	for _, r := range recs {
		for _, v := range r.Metrics() {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestBlobs(t *testing.T) {
	rng := NewRNG(1)

	recs := rng.Blobs([][]float64{{0, 0}, {100, 100}}, 10, 0.1)

	require.Len(t, recs, 20)
	assert.Equal(t, "c0-0", recs[0].ID())
	assert.Equal(t, "c1-9", recs[19].ID())
	for _, r := range recs[:10] {
		assert.InDelta(t, 0, r.Metric(0), 1)
	}
	for _, r := range recs[10:] {
		assert.InDelta(t, 100, r.Metric(1), 1)
	}
}

func TestRNG_ResetReproduces(t *testing.T) {
	rng := NewRNG(99)
	a := rng.UniformRecords(4, 2)
	rng.Reset()
	b := rng.UniformRecords(4, 2)
	assert.Equal(t, a, b)
	assert.Equal(t, uint64(99), rng.Seed())
}

func TestPlayers(t *testing.T) {
	recs := Players()
	m, err := record.Arity(recs)
	require.NoError(t, err)
	assert.Equal(t, record.PlayerArity, m)
	assert.Len(t, recs, 9)
}
