package statclust

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordNormalize is called after each standardization pass.
	// rows is the number of records, err is nil if successful.
	RecordNormalize(rows int, duration time.Duration, err error)

	// RecordCluster is called after each k-means run.
	RecordCluster(k, iterations int, converged bool, duration time.Duration, err error)

	// RecordSweep is called after each sweep with the number of runs attempted.
	RecordSweep(runs int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordNormalize(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordCluster(int, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordSweep(int, time.Duration, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	NormalizeCount    atomic.Int64
	NormalizeErrors   atomic.Int64
	NormalizeRows     atomic.Int64
	ClusterCount      atomic.Int64
	ClusterErrors     atomic.Int64
	ClusterConverged  atomic.Int64
	ClusterIterations atomic.Int64
	ClusterTotalNanos atomic.Int64
	SweepCount        atomic.Int64
	SweepErrors       atomic.Int64
	SweepRuns         atomic.Int64
}

// RecordNormalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNormalize(rows int, duration time.Duration, err error) {
	b.NormalizeCount.Add(1)
	if err != nil {
		b.NormalizeErrors.Add(1)
		return
	}
	b.NormalizeRows.Add(int64(rows))
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(k, iterations int, converged bool, duration time.Duration, err error) {
	b.ClusterCount.Add(1)
	b.ClusterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClusterErrors.Add(1)
		return
	}
	b.ClusterIterations.Add(int64(iterations))
	if converged {
		b.ClusterConverged.Add(1)
	}
}

// RecordSweep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSweep(runs int, duration time.Duration, err error) {
	b.SweepCount.Add(1)
	b.SweepRuns.Add(int64(runs))
	if err != nil {
		b.SweepErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		NormalizeCount:    b.NormalizeCount.Load(),
		NormalizeErrors:   b.NormalizeErrors.Load(),
		NormalizeRows:     b.NormalizeRows.Load(),
		ClusterCount:      b.ClusterCount.Load(),
		ClusterErrors:     b.ClusterErrors.Load(),
		ClusterConverged:  b.ClusterConverged.Load(),
		ClusterIterations: b.ClusterIterations.Load(),
		ClusterAvgNanos:   b.getAvgClusterNanos(),
		SweepCount:        b.SweepCount.Load(),
		SweepErrors:       b.SweepErrors.Load(),
		SweepRuns:         b.SweepRuns.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgClusterNanos() int64 {
	count := b.ClusterCount.Load()
	if count == 0 {
		return 0
	}
	return b.ClusterTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	NormalizeCount    int64
	NormalizeErrors   int64
	NormalizeRows     int64
	ClusterCount      int64
	ClusterErrors     int64
	ClusterConverged  int64
	ClusterIterations int64
	ClusterAvgNanos   int64
	SweepCount        int64
	SweepErrors       int64
	SweepRuns         int64
}
