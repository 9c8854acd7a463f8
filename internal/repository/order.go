package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eloom/holybean-server/internal/domain/order"
	"github.com/eloom/holybean-server/internal/domain/report"
)

const (
	orderColumns = `order_date, order_num, customer_name, total_amount, credit_status, items, payments`

	createOrderSQL = `INSERT INTO orders (order_date, order_num, customer_name, total_amount, credit_status, items, payments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	importOrderSQL = `INSERT INTO orders (order_date, order_num, customer_name, total_amount, credit_status, items, payments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_date, order_num) DO NOTHING`

	getOrdersByDateSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE order_date = $1 ORDER BY order_num`

	getOrderSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE order_date = $1 AND order_num = $2`

	deleteOrderSQL = `DELETE FROM orders WHERE order_date = $1 AND order_num = $2
		RETURNING ` + orderColumns

	maxOrderNumSQL = `SELECT COALESCE(MAX(order_num), 0) FROM orders WHERE order_date = $1`

	pendingCreditsSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE credit_status <> 0 ORDER BY order_date, order_num`

	settleCreditSQL = `UPDATE orders SET credit_status = 0
		WHERE order_date = $1 AND order_num = $2 AND credit_status <> 0`

	scanRangeSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE order_date BETWEEN $1 AND $2 ORDER BY order_date, order_num`
)

// Compile-time checks: the repository serves both the order domain and the
// report engine's stream contract.
var (
	_ order.Repository  = (*OrderRepository)(nil)
	_ report.OrderStore = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items and payment entries live in JSONB columns, matching the document
// shape the POS client sends.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}
	paymentsJSON, err := json.Marshal(o.Payments)
	if err != nil {
		return errors.Wrap(err, "marshal payments")
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.OrderDate, o.OrderNum, o.CustomerName, o.TotalAmount, o.CreditStatus,
		itemsJSON, paymentsJSON,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %s/%d", o.OrderDate, o.OrderNum)
	}

	return nil
}

// Import inserts an order from a history export, skipping keys that already
// exist. It reports whether a row was written.
func (r *OrderRepository) Import(ctx context.Context, o *order.Order) (bool, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return false, errors.Wrap(err, "marshal order items")
	}
	paymentsJSON, err := json.Marshal(o.Payments)
	if err != nil {
		return false, errors.Wrap(err, "marshal payments")
	}

	tag, err := r.pool.Exec(ctx, importOrderSQL,
		o.OrderDate, o.OrderNum, o.CustomerName, o.TotalAmount, o.CreditStatus,
		itemsJSON, paymentsJSON,
	)
	if err != nil {
		return false, errors.Wrapf(err, "import order %s/%d", o.OrderDate, o.OrderNum)
	}

	return tag.RowsAffected() > 0, nil
}

// GetByDate returns all orders placed on the given date, in ticket order.
func (r *OrderRepository) GetByDate(ctx context.Context, date string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrdersByDateSQL, date)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders for %s", date)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Get returns a single order by date and ticket number.
func (r *OrderRepository) Get(ctx context.Context, date string, num int) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, date, num)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s/%d", date, num)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s/%d", date, num)
	}
	return &o, nil
}

// Delete removes the order and returns the removed record.
func (r *OrderRepository) Delete(ctx context.Context, date string, num int) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, deleteOrderSQL, date, num)
	if err != nil {
		return nil, errors.Wrapf(err, "delete order %s/%d", date, num)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "delete order %s/%d", date, num)
	}
	return &o, nil
}

// MaxOrderNum returns the highest ticket number used on the date, 0 when
// the day has no orders yet.
func (r *OrderRepository) MaxOrderNum(ctx context.Context, date string) (int, error) {
	var maxNum int
	if err := r.pool.QueryRow(ctx, maxOrderNumSQL, date).Scan(&maxNum); err != nil {
		return 0, errors.Wrapf(err, "max order num for %s", date)
	}
	return maxNum, nil
}

// ListPendingCredits returns every unsettled tab order.
func (r *OrderRepository) ListPendingCredits(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, pendingCreditsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list pending credits")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// SettleCredit marks a pending order as settled. Returns order.ErrNotFound
// when no pending order matches the key.
func (r *OrderRepository) SettleCredit(ctx context.Context, date string, num int) error {
	tag, err := r.pool.Exec(ctx, settleCreditSQL, date, num)
	if err != nil {
		return errors.Wrapf(err, "settle credit %s/%d", date, num)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ScanRange opens a row-streaming report.Source over all orders whose date
// lies in the inclusive range. Rows stream straight off the connection; the
// report engine pulls one order at a time and applies its own credit filter.
func (r *OrderRepository) ScanRange(ctx context.Context, rng report.DateRange) (report.Source, error) {
	rows, err := r.pool.Query(ctx, scanRangeSQL, rng.Start, rng.End)
	if err != nil {
		return nil, errors.Wrapf(err, "scan orders %s..%s", rng.Start, rng.End)
	}
	return &orderRows{rows: rows}, nil
}

// orderRows adapts pgx.Rows to report.Source.
type orderRows struct {
	rows pgx.Rows
}

func (s *orderRows) Next(_ context.Context) (order.Order, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return order.Order{}, err
		}
		return order.Order{}, report.ErrEndOfSource
	}
	return scanOrder(s.rows)
}

func (s *orderRows) Close() {
	s.rows.Close()
}

// scanOrder maps one row onto the domain order, decoding the JSONB
// item/payment documents.
func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		itemsJSON    []byte
		paymentsJSON []byte
	)
	err := row.Scan(
		&o.OrderDate, &o.OrderNum, &o.CustomerName, &o.TotalAmount, &o.CreditStatus,
		&itemsJSON, &paymentsJSON,
	)
	if err != nil {
		return order.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, errors.Wrap(err, "decode order items")
	}
	if err := json.Unmarshal(paymentsJSON, &o.Payments); err != nil {
		return order.Order{}, errors.Wrap(err, "decode payments")
	}

	return o, nil
}
