package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/statclust/record"
)

// ErrNoRecords is returned when a loader produced an empty batch.
var ErrNoRecords = errors.New("source: no records")

// Loader produces a batch of records.
type Loader interface {
	Load(ctx context.Context) ([]record.Record, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]record.Record, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]record.Record, error) {
	return f(ctx)
}

type fallback struct {
	primary   Loader
	secondary Loader
	logger    *slog.Logger
}

// Fallback returns a Loader that tries primary first and, if it fails or
// returns no records, logs the failure and loads from secondary instead.
// A nil logger uses slog.Default.
func Fallback(primary, secondary Loader, logger *slog.Logger) Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallback) Load(ctx context.Context) ([]record.Record, error) {
	records, err := f.primary.Load(ctx)
	if err == nil && len(records) == 0 {
		err = ErrNoRecords
	}
	if err == nil {
		return records, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	f.logger.ErrorContext(ctx, "primary source failed, using fallback", "error", err)

	records, ferr := f.secondary.Load(ctx)
	if ferr != nil {
		return nil, fmt.Errorf("fallback source: %w (primary: %w)", ferr, err)
	}
	return records, nil
}
