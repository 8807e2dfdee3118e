// Package record defines the immutable input value of the clustering pipeline.
//
// A Record carries one entity's identifier and its fixed-arity metric tuple.
// Records are produced by acquisition collaborators (see package source) and
// consumed exactly once by the normalizer.
package record

import (
	"errors"
	"fmt"
	"slices"
)

// PlayerArity is the number of per-90 metrics tracked for a player.
const PlayerArity = 3

// PlayerMetrics names the player metric columns in tuple order.
var PlayerMetrics = []string{"dribbles", "prog_carries", "final_third"}

// ErrArity is returned when a batch mixes metric arities or has none.
var ErrArity = errors.New("metric arity mismatch")

// Record is one entity: an identifier plus its ordered metric values.
// The zero value is an empty record with arity 0.
type Record struct {
	id      string
	metrics []float64
}

// New constructs a Record. The metrics slice is copied.
func New(id string, metrics ...float64) Record {
	return Record{id: id, metrics: slices.Clone(metrics)}
}

// NewPlayer constructs a Record from the three player metrics.
func NewPlayer(name string, dribbles, progCarries, finalThird float64) Record {
	return New(name, dribbles, progCarries, finalThird)
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Arity returns the number of metric values.
func (r Record) Arity() int { return len(r.metrics) }

// Metric returns the j-th metric value.
func (r Record) Metric(j int) float64 { return r.metrics[j] }

// Metrics returns a copy of the metric tuple.
func (r Record) Metrics() []float64 { return slices.Clone(r.metrics) }

// AppendMetrics appends the metric tuple to dst and returns the result.
func (r Record) AppendMetrics(dst []float64) []float64 {
	return append(dst, r.metrics...)
}

func (r Record) String() string {
	return fmt.Sprintf("%s%v", r.id, r.metrics)
}

// ArityError reports the first record whose arity differs from the batch.
type ArityError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("record %d: metric arity %d, expected %d", e.Index, e.Actual, e.Expected)
}

func (e *ArityError) Unwrap() error { return ErrArity }

// Arity returns the shared arity of a batch.
// It fails if records disagree or if the arity is zero.
// An empty batch has arity 0 and no error.
func Arity(records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	m := records[0].Arity()
	if m == 0 {
		return 0, &ArityError{Index: 0, Expected: 1, Actual: 0}
	}
	for i, r := range records[1:] {
		if r.Arity() != m {
			return 0, &ArityError{Index: i + 1, Expected: m, Actual: r.Arity()}
		}
	}
	return m, nil
}

// IDs returns the identifiers of records in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.id
	}
	return ids
}
