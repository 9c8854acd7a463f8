package report

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/eloom/holybean-server/internal/domain/order"
)

// ErrEndOfSource is returned by Source.Next after the final order has been
// yielded.
var ErrEndOfSource = errors.New("end of order source")

// SourceError wraps a failure while opening or reading the upstream order
// store. It is distinct from range-validation errors so callers can map it
// to a retryable server-side response.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("order source unavailable: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Source is a finite, lazily-produced, non-restartable sequence of orders.
// Next returns ErrEndOfSource once exhausted. Close releases underlying
// resources and is safe to call after Next has returned an error.
type Source interface {
	Next(ctx context.Context) (order.Order, error)
	Close()
}

// OrderStore opens an order stream covering at least the requested range.
// The stream may be a superset of the range and is not assumed to be
// filtered by credit status; the aggregator applies both predicates itself.
type OrderStore interface {
	ScanRange(ctx context.Context, rng DateRange) (Source, error)
}

// Builder assembles sales reports from an order store.
type Builder struct {
	store OrderStore
}

// NewBuilder creates a Builder backed by the given store.
func NewBuilder(store OrderStore) *Builder {
	return &Builder{store: store}
}

// Build validates the requested range, then consumes the store's order
// stream exactly once and returns the aggregated report.
//
// Validation errors (ErrMissingRange, ErrBadFormat, ErrInvalidRange) are
// returned before the stream is touched. Any failure opening or reading the
// stream aborts the aggregation and returns a *SourceError with no partial
// result, except caller cancellation, which surfaces as the context error.
func (b *Builder) Build(ctx context.Context, start, end string) (Report, error) {
	rng, err := NewDateRange(start, end)
	if err != nil {
		return Report{}, err
	}

	src, err := b.store.ScanRange(ctx, rng)
	if err != nil {
		return Report{}, &SourceError{Err: err}
	}
	defer src.Close()

	agg := NewAggregator(rng)
	for {
		o, err := src.Next(ctx)
		if errors.Is(err, ErrEndOfSource) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Report{}, ctxErr
			}
			return Report{}, &SourceError{Err: err}
		}
		agg.Add(o)
	}

	return agg.Result(), nil
}
