package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems       = errors.New("order items required")
	ErrAlreadySettled   = errors.New("order is not a pending credit")
	ErrInvalidOrderDate = errors.New("order date must be in YYYY-MM-DD format")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ItemName string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %q", e.ItemName)
}

// PlaceOrderRequest holds the input for placing an order. OrderNum may be
// zero, in which case the next per-day number is allocated automatically.
type PlaceOrderRequest struct {
	OrderNum     int
	CustomerName string
	CreditStatus int
	Items        []LineItem
	Payments     []Payment
}

// Service encapsulates order lifecycle business logic. Dates are stamped in
// the shop's reporting timezone so orders placed shortly after midnight UTC
// land on the correct local business day.
type Service struct {
	orders Repository
	loc    *time.Location
	now    func() time.Time
}

// NewService creates an order Service using the given repository and
// reporting timezone.
func NewService(orders Repository, loc *time.Location) *Service {
	return &Service{
		orders: orders,
		loc:    loc,
		now:    time.Now,
	}
}

// today returns the current business date in the reporting timezone.
func (s *Service) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// PlaceOrder validates the request, stamps today's date, allocates an order
// number when the client did not reserve one, computes the total from line
// item subtotals, and persists the order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemName: item.ItemName}
		}
	}

	date := s.today()

	num := req.OrderNum
	if num <= 0 {
		next, err := s.NextOrderNum(ctx)
		if err != nil {
			return nil, err
		}
		num = next
	}

	total := decimalSum(req.Items)

	o := &Order{
		OrderDate:    date,
		OrderNum:     num,
		CustomerName: req.CustomerName,
		TotalAmount:  total,
		CreditStatus: req.CreditStatus,
		Items:        req.Items,
		Payments:     req.Payments,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// NextOrderNum returns the ticket number the next order placed today will
// receive: one past the highest number already used, starting at 1.
func (s *Service) NextOrderNum(ctx context.Context) (int, error) {
	maxNum, err := s.orders.MaxOrderNum(ctx, s.today())
	if err != nil {
		return 0, errors.Wrap(err, "max order num")
	}
	return maxNum + 1, nil
}

// OrdersForDate lists every order placed on the given date.
func (s *Service) OrdersForDate(ctx context.Context, date string) ([]Order, error) {
	if !validDate(date) {
		return nil, ErrInvalidOrderDate
	}
	orders, err := s.orders.GetByDate(ctx, date)
	if err != nil {
		return nil, errors.Wrap(err, "orders by date")
	}
	return orders, nil
}

// GetOrder fetches a single order by date and number.
func (s *Service) GetOrder(ctx context.Context, date string, num int) (*Order, error) {
	if !validDate(date) {
		return nil, ErrInvalidOrderDate
	}
	return s.orders.Get(ctx, date, num)
}

// DeleteOrder removes an order and returns the removed record.
func (s *Service) DeleteOrder(ctx context.Context, date string, num int) (*Order, error) {
	if !validDate(date) {
		return nil, ErrInvalidOrderDate
	}
	return s.orders.Delete(ctx, date, num)
}

// PendingCredits lists every unsettled tab order across all dates.
func (s *Service) PendingCredits(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.ListPendingCredits(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list pending credits")
	}
	return orders, nil
}

// SettleCredit marks a pending tab order as paid. Settling an order that is
// already settled returns ErrAlreadySettled; a missing order returns
// ErrNotFound.
func (s *Service) SettleCredit(ctx context.Context, date string, num int) error {
	if !validDate(date) {
		return ErrInvalidOrderDate
	}

	o, err := s.orders.Get(ctx, date, num)
	if err != nil {
		return err
	}
	if o.CreditStatus != CreditPending {
		return ErrAlreadySettled
	}

	if err := s.orders.SettleCredit(ctx, date, num); err != nil {
		return errors.Wrap(err, "settle credit")
	}
	return nil
}

// decimalSum adds up line item subtotals.
func decimalSum(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// validDate reports whether date is a real calendar date in YYYY-MM-DD form.
func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
