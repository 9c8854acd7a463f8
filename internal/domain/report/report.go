// Package report computes date-ranged sales reports over stored orders.
//
// A report is a single forward fold over a lazily-pulled stream of orders:
// per-menu-item quantity and revenue totals, plus per-payment-method revenue
// totals with a grand total. Pending-credit orders and orders outside the
// requested range never contribute. All money accumulation uses decimal
// arithmetic; float normalization happens only at the JSON boundary.
package report

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// TotalKey is the distinguished payment-sales entry holding the grand total
// across all payment methods. The Korean label matches what the POS client
// displays.
const TotalKey = "총합"

// UnknownKey is the fallback grouping key for records missing an item name
// or payment method.
const UnknownKey = "Unknown"

// Money is a decimal amount that marshals as a bare JSON number: whole
// values without a decimal point ("8000"), fractional values with one
// ("10000.5"). decimal.String already trims trailing zeros, which is
// exactly the normalization the POS client expects.
type Money struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// MenuSale accumulates sales of a single menu item.
type MenuSale struct {
	ItemName     string
	QuantitySold int
	TotalSales   decimal.Decimal
}

// MenuSales is the per-item breakdown of a report, ordered by descending
// quantity sold (ties keep first-seen order). It marshals as a JSON object
// whose keys appear in that order, preserving the original map-shaped
// response while staying deterministic.
type MenuSales []MenuSale

// MarshalJSON implements json.Marshaler. Encoding goes through jx so key
// order survives; encoding/json would re-sort a map.
func (m MenuSales) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	e.ObjStart()
	for _, s := range m {
		e.FieldStart(s.ItemName)
		e.ObjStart()
		e.FieldStart("quantitySold")
		e.Int(s.QuantitySold)
		e.FieldStart("totalSales")
		e.Raw([]byte(s.TotalSales.String()))
		e.ObjEnd()
	}
	e.ObjEnd()
	return e.Bytes(), nil
}

// PaymentSales maps payment method to accumulated revenue. A complete report
// always carries the TotalKey entry, equal to the sum of all other entries.
type PaymentSales map[string]Money

// Report is the result of a single aggregation pass.
type Report struct {
	MenuSales    MenuSales    `json:"menuSales"`
	PaymentSales PaymentSales `json:"paymentSales"`
}
