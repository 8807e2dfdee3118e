// Package kmeans implements Lloyd's k-means clustering over standardized
// feature matrices.
//
// Initial centroids are k distinct input rows drawn from an injected random
// source, so runs are reproducible when the source is seeded. The assignment
// step can be spread across workers; the update step always runs after all
// labels are fixed.
package kmeans
