// Package statclust groups entities described by a few numeric metrics into
// clusters of similar entities.
//
// The pipeline has two stages: records are standardized column by column to
// zero mean and unit population variance, then partitioned with k-means
// (Lloyd's algorithm) seeded from k distinct input rows.
//
// # Quick Start
//
//	records := []record.Record{
//	    record.NewPlayer("Saka", 2.1, 4.5, 30.2),
//	    record.NewPlayer("Rice", 0.6, 2.9, 18.4),
//	    // ...
//	}
//
//	res, err := statclust.Cluster(ctx, records, 5,
//	    statclust.WithSeed(42),
//	    statclust.WithMaxIter(100),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, a := range res.Assignments() {
//	    fmt.Printf("%s -> Cluster %d\n", a.ID, a.Cluster)
//	}
//
// # Guarantees
//
//   - IDs, Labels and feature rows stay in input order.
//   - Every label is the nearest centroid of the returned centroids; ties go
//     to the lowest centroid index.
//   - A cluster that receives no rows keeps its previous centroid.
//   - Runs are reproducible with WithSeed or WithRand.
//
// # Errors
//
// Failures match ErrInvalidInput, ErrInvalidConfiguration or
// ErrDegenerateFeature via errors.Is. Constant metric columns fail by default;
// WithZeroVariancePolicy(ZeroVarianceEpsilon) maps them to zeros instead.
//
// Loading records (package source), persisting results (package snapshot)
// and storage backends (package blobstore) live outside the core.
package statclust
