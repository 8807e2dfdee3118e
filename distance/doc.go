// Package distance provides the distance kernels used by the clustering engine.
//
// # Supported Distances
//
//   - SquaredL2: squared Euclidean distance (the K-means objective)
//   - L2: Euclidean distance
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	j, d := distance.Nearest(row, centroids)
package distance
