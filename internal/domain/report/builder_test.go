package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eloom/holybean-server/internal/domain/order"
)

// --- Fakes ---

// sliceSource yields a fixed set of orders, optionally failing partway
// through, and records how it was consumed.
type sliceSource struct {
	orders   []order.Order
	failAt   int // fail before yielding this index when >= 0
	failWith error
	pos      int
	closed   bool
}

func (s *sliceSource) Next(ctx context.Context) (order.Order, error) {
	if err := ctx.Err(); err != nil {
		return order.Order{}, err
	}
	if s.failWith != nil && s.pos == s.failAt {
		return order.Order{}, s.failWith
	}
	if s.pos >= len(s.orders) {
		return order.Order{}, ErrEndOfSource
	}
	o := s.orders[s.pos]
	s.pos++
	return o, nil
}

func (s *sliceSource) Close() { s.closed = true }

type fakeStore struct {
	orders  []order.Order
	openErr error
	failAt  int
	readErr error

	lastSource *sliceSource
	scans      int
}

func (f *fakeStore) ScanRange(_ context.Context, _ DateRange) (Source, error) {
	f.scans++
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.lastSource = &sliceSource{orders: f.orders, failAt: f.failAt, failWith: f.readErr}
	return f.lastSource, nil
}

// --- Tests ---

func TestBuild_ValidationBeforeStream(t *testing.T) {
	store := &fakeStore{}
	b := NewBuilder(store)

	_, err := b.Build(context.Background(), "", "2024-01-01")
	assert.ErrorIs(t, err, ErrMissingRange)

	_, err = b.Build(context.Background(), "01-01-2024", "2024-01-01")
	assert.ErrorIs(t, err, ErrBadFormat)

	_, err = b.Build(context.Background(), "2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	assert.Zero(t, store.scans, "validation errors must be detected before the stream is opened")
}

func TestBuild_CreditScenario(t *testing.T) {
	store := &fakeStore{orders: []order.Order{
		settledOrder("2024-01-01", 1,
			[]order.LineItem{line("Latte", 2, "8000")},
			[]order.Payment{pay("card", "8000")},
		),
		{
			OrderDate:    "2024-01-01",
			OrderNum:     2,
			CreditStatus: order.CreditPending,
			Items:        []order.LineItem{line("Latte", 5, "20000")},
			Payments:     []order.Payment{pay("credit", "20000")},
		},
	}}
	b := NewBuilder(store)

	r, err := b.Build(context.Background(), "2024-01-01", "2024-01-01")
	require.NoError(t, err)

	require.Len(t, r.MenuSales, 1)
	assert.Equal(t, 2, r.MenuSales[0].QuantitySold)
	assert.True(t, decimal.RequireFromString("8000").Equal(r.MenuSales[0].TotalSales))
	require.Len(t, r.PaymentSales, 2)
	assert.True(t, decimal.RequireFromString("8000").Equal(r.PaymentSales["card"].Decimal))
	assert.True(t, decimal.RequireFromString("8000").Equal(r.PaymentSales[TotalKey].Decimal))
}

func TestBuild_EmptyRange(t *testing.T) {
	b := NewBuilder(&fakeStore{})

	r, err := b.Build(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Empty(t, r.MenuSales)
	require.Len(t, r.PaymentSales, 1)
	assert.True(t, r.PaymentSales[TotalKey].IsZero())
}

func TestBuild_OpenFailureWrapsSourceError(t *testing.T) {
	b := NewBuilder(&fakeStore{openErr: errors.New("connection refused")})

	_, err := b.Build(context.Background(), "2024-01-01", "2024-01-31")

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Contains(t, srcErr.Error(), "connection refused")
}

func TestBuild_MidStreamFailureNoPartialResult(t *testing.T) {
	store := &fakeStore{
		orders: []order.Order{
			settledOrder("2024-01-02", 1, []order.LineItem{line("Latte", 1, "4000")}, nil),
			settledOrder("2024-01-03", 1, []order.LineItem{line("Latte", 1, "4000")}, nil),
		},
		failAt:  1,
		readErr: errors.New("page fetch failed"),
	}
	b := NewBuilder(store)

	r, err := b.Build(context.Background(), "2024-01-01", "2024-01-31")

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Empty(t, r.MenuSales, "no partial aggregates on stream failure")
	assert.True(t, store.lastSource.closed, "source must be closed on failure")
}

func TestBuild_Cancellation(t *testing.T) {
	store := &fakeStore{orders: []order.Order{
		settledOrder("2024-01-02", 1, []order.LineItem{line("Latte", 1, "4000")}, nil),
	}}
	b := NewBuilder(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx, "2024-01-01", "2024-01-31")
	assert.ErrorIs(t, err, context.Canceled)

	var srcErr *SourceError
	assert.False(t, errors.As(err, &srcErr), "cancellation is not a source failure")
}

func TestBuild_ConsumesStreamExactlyOnce(t *testing.T) {
	store := &fakeStore{orders: []order.Order{
		settledOrder("2024-01-02", 1, []order.LineItem{line("Latte", 2, "8000")}, nil),
		settledOrder("2024-01-03", 1, []order.LineItem{line("Scone", 1, "3500")}, nil),
	}}
	b := NewBuilder(store)

	_, err := b.Build(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Equal(t, 1, store.scans)
	assert.Equal(t, len(store.orders), store.lastSource.pos)
	assert.True(t, store.lastSource.closed)
}

func TestBuild_Idempotent(t *testing.T) {
	store := &fakeStore{orders: []order.Order{
		settledOrder("2024-01-02", 1,
			[]order.LineItem{line("Latte", 2, "8000"), line("Americano", 2, "6000")},
			[]order.Payment{pay("card", "7000"), pay("cash", "7000")},
		),
		settledOrder("2024-01-03", 1,
			[]order.LineItem{line("Scone", 1, "3500.50")},
			[]order.Payment{pay("card", "3500.50")},
		),
	}}
	b := NewBuilder(store)

	first, err := b.Build(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	second, err := b.Build(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}
