// Package testutil provides testing utilities for statclust.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Records
//
//	rng := testutil.NewRNG(seed)
//	recs := rng.Blobs([][]float64{{0, 0, 0}, {5, 5, 5}}, 50, 0.5)
//	recs = rng.UniformRecords(100, 3)
package testutil
