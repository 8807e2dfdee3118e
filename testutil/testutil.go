package testutil

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/hupe1980/statclust/record"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Rand returns an independent *rand.Rand seeded from this RNG, suitable for
// passing to code that takes a random source.
func (r *RNG) Rand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewPCG(r.rand.Uint64(), r.rand.Uint64()))
}

// UniformRecords returns num records with dim metrics uniform in [0, 1).
// IDs are "r0", "r1", ...
func (r *RNG) UniformRecords(num, dim int) []record.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := make([]record.Record, num)
	metrics := make([]float64, dim)
	for i := range recs {
		for j := range metrics {
			metrics[j] = r.rand.Float64()
		}
		recs[i] = record.New(fmt.Sprintf("r%d", i), metrics...)
	}
	return recs
}

// Blobs returns perCenter records around each center, each metric jittered
// by a normal deviate scaled by spread. Records are grouped by center in
// order; IDs are "c<center>-<i>".
func (r *RNG) Blobs(centers [][]float64, perCenter int, spread float64) []record.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := make([]record.Record, 0, len(centers)*perCenter)
	for c, center := range centers {
		metrics := make([]float64, len(center))
		for i := 0; i < perCenter; i++ {
			for j, v := range center {
				metrics[j] = v + r.rand.NormFloat64()*spread
			}
			recs = append(recs, record.New(fmt.Sprintf("c%d-%d", c, i), metrics...))
		}
	}
	return recs
}

// Players returns a fixed, hand-made batch of player records with three
// clearly separated styles: carriers, creators and holders.
func Players() []record.Record {
	return []record.Record{
		record.NewPlayer("Carrier A", 3.1, 6.2, 28.0),
		record.NewPlayer("Carrier B", 2.9, 5.8, 26.5),
		record.NewPlayer("Carrier C", 3.4, 6.6, 29.1),
		record.NewPlayer("Creator A", 1.2, 2.1, 41.0),
		record.NewPlayer("Creator B", 1.0, 2.4, 43.2),
		record.NewPlayer("Creator C", 1.4, 1.9, 39.8),
		record.NewPlayer("Holder A", 0.2, 0.9, 8.1),
		record.NewPlayer("Holder B", 0.3, 1.1, 9.4),
		record.NewPlayer("Holder C", 0.1, 0.7, 7.2),
	}
}
