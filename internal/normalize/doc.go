// Package normalize converts record batches into standardized feature matrices.
//
// Each column is shifted to zero mean and scaled to unit population variance
// (z-score). Zero-variance columns are never divided silently: the
// ZeroVariancePolicy decides whether they fail or are scaled by an epsilon.
package normalize
