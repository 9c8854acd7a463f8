package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/eloom/holybean-server/internal/domain/order"
)

// Eligible reports whether an order counts toward a report over the given
// range: only settled orders (credit status 0) whose date lies inside the
// inclusive range are included. Any other credit status value, including
// malformed ones, is silently excluded.
func Eligible(o order.Order, r DateRange) bool {
	return o.CreditStatus == order.CreditSettled && r.Contains(o.OrderDate)
}

// Aggregator folds orders into menu and payment sales totals. It owns no
// shared state: create one per report, feed it every order once, then call
// Result. Ineligible orders are filtered inside Add, so callers can feed the
// raw store stream directly.
type Aggregator struct {
	rng DateRange

	// menuIdx maps item name to its position in menu, which records
	// first-seen order for stable tie-breaking at emission.
	menuIdx  map[string]int
	menu     []MenuSale
	payments map[string]decimal.Decimal
	grand    decimal.Decimal
}

// NewAggregator creates an empty Aggregator for the given validated range.
func NewAggregator(rng DateRange) *Aggregator {
	return &Aggregator{
		rng:      rng,
		menuIdx:  make(map[string]int),
		payments: make(map[string]decimal.Decimal),
		grand:    decimal.Zero,
	}
}

// Add folds one order into the running totals. Orders failing the
// eligibility predicate are ignored; malformed fields inside an eligible
// order degrade to defaults ("Unknown" keys, zero amounts) rather than
// aborting the pass.
func (a *Aggregator) Add(o order.Order) {
	if !Eligible(o, a.rng) {
		return
	}

	for _, item := range o.Items {
		name := item.ItemName
		if name == "" {
			name = UnknownKey
		}

		idx, ok := a.menuIdx[name]
		if !ok {
			idx = len(a.menu)
			a.menuIdx[name] = idx
			a.menu = append(a.menu, MenuSale{ItemName: name, TotalSales: decimal.Zero})
		}
		a.menu[idx].QuantitySold += item.Quantity
		a.menu[idx].TotalSales = a.menu[idx].TotalSales.Add(item.Subtotal)
	}

	for _, p := range o.Payments {
		method := p.Method
		if method == "" {
			method = UnknownKey
		}

		a.payments[method] = a.payments[method].Add(p.Amount)
		a.grand = a.grand.Add(p.Amount)
	}
}

// Result emits the report. Menu sales are ordered by descending quantity
// sold; the stable sort keeps first-seen order for ties. Payment sales gain
// the grand-total entry, taken from the running sum rather than recomputed.
// The receiver stays usable afterwards, but one aggregator per report is
// the intended lifecycle.
func (a *Aggregator) Result() Report {
	menu := make(MenuSales, len(a.menu))
	copy(menu, a.menu)
	sort.SliceStable(menu, func(i, j int) bool {
		return menu[i].QuantitySold > menu[j].QuantitySold
	})

	payments := make(PaymentSales, len(a.payments)+1)
	for method, total := range a.payments {
		payments[method] = Money{total}
	}
	payments[TotalKey] = Money{a.grand}

	return Report{
		MenuSales:    menu,
		PaymentSales: payments,
	}
}
