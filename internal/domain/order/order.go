package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Credit status values. Orders placed on a tab carry CreditPending until the
// customer settles; only settled orders count as realized sales.
const (
	CreditSettled = 0
	CreditPending = 1
)

// ErrNotFound is returned when no order exists for the given date and number.
var ErrNotFound = errors.New("order not found")

// Order represents a completed point-of-sale order. Orders are keyed by the
// calendar date they were placed on (YYYY-MM-DD) plus a per-day sequence
// number, matching the ticket numbers printed for customers.
type Order struct {
	OrderDate    string          `json:"orderDate"`
	OrderNum     int             `json:"orderNum"`
	CustomerName string          `json:"customerName,omitempty"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CreditStatus int             `json:"creditStatus"`
	Items        []LineItem      `json:"orderItems"`
	Payments     []Payment       `json:"paymentMethods"`
}

// LineItem represents a single menu item position in an order.
type LineItem struct {
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Payment represents one payment entry of an order. A single order may be
// split across several methods (e.g. part card, part cash).
type Payment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByDate(ctx context.Context, date string) ([]Order, error)
	Get(ctx context.Context, date string, num int) (*Order, error)
	// Delete removes the order and returns it, so callers can echo what was
	// removed back to the client.
	Delete(ctx context.Context, date string, num int) (*Order, error)
	// MaxOrderNum returns the highest order number used on the given date,
	// or 0 when no orders exist for it.
	MaxOrderNum(ctx context.Context, date string) (int, error)
	ListPendingCredits(ctx context.Context) ([]Order, error)
	// SettleCredit flips a pending-credit order to settled.
	// Returns ErrNotFound when no pending order matches.
	SettleCredit(ctx context.Context, date string, num int) error
}
