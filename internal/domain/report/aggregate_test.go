package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eloom/holybean-server/internal/domain/order"
)

// --- Helpers ---

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	r, err := NewDateRange(start, end)
	require.NoError(t, err)
	return r
}

func settledOrder(date string, num int, items []order.LineItem, payments []order.Payment) order.Order {
	return order.Order{
		OrderDate:    date,
		OrderNum:     num,
		CreditStatus: order.CreditSettled,
		Items:        items,
		Payments:     payments,
	}
}

func line(name string, qty int, subtotal string) order.LineItem {
	return order.LineItem{
		ItemName: name,
		Quantity: qty,
		Subtotal: decimal.RequireFromString(subtotal),
	}
}

func pay(method, amount string) order.Payment {
	return order.Payment{
		Method: method,
		Amount: decimal.RequireFromString(amount),
	}
}

// --- Tests ---

func TestAggregator_CreditOrderExcluded(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-01")
	agg := NewAggregator(rng)

	agg.Add(settledOrder("2024-01-01", 1,
		[]order.LineItem{line("Latte", 2, "8000")},
		[]order.Payment{pay("card", "8000")},
	))
	agg.Add(order.Order{
		OrderDate:    "2024-01-01",
		OrderNum:     2,
		CreditStatus: order.CreditPending,
		Items:        []order.LineItem{line("Latte", 5, "20000")},
	})

	r := agg.Result()

	require.Len(t, r.MenuSales, 1)
	assert.Equal(t, "Latte", r.MenuSales[0].ItemName)
	assert.Equal(t, 2, r.MenuSales[0].QuantitySold)
	assert.True(t, decimal.RequireFromString("8000").Equal(r.MenuSales[0].TotalSales))

	assert.True(t, decimal.RequireFromString("8000").Equal(r.PaymentSales["card"].Decimal))
	assert.True(t, decimal.RequireFromString("8000").Equal(r.PaymentSales[TotalKey].Decimal))
}

func TestAggregator_UnknownCreditStatusExcluded(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-01")
	agg := NewAggregator(rng)

	// Malformed status values are silently dropped, same as pending credits.
	o := settledOrder("2024-01-01", 1,
		[]order.LineItem{line("Latte", 1, "4000")},
		[]order.Payment{pay("cash", "4000")},
	)
	o.CreditStatus = 7
	agg.Add(o)

	r := agg.Result()
	assert.Empty(t, r.MenuSales)
	assert.True(t, r.PaymentSales[TotalKey].IsZero())
}

func TestAggregator_RangeBoundariesInclusive(t *testing.T) {
	rng := mustRange(t, "2024-01-10", "2024-01-20")
	agg := NewAggregator(rng)

	for _, date := range []string{"2024-01-09", "2024-01-10", "2024-01-15", "2024-01-20", "2024-01-21"} {
		agg.Add(settledOrder(date, 1,
			[]order.LineItem{line("Americano", 1, "3000")},
			[]order.Payment{pay("cash", "3000")},
		))
	}

	r := agg.Result()
	require.Len(t, r.MenuSales, 1)
	assert.Equal(t, 3, r.MenuSales[0].QuantitySold, "boundary dates included, outside dates excluded")
	assert.True(t, decimal.RequireFromString("9000").Equal(r.PaymentSales[TotalKey].Decimal))
}

func TestAggregator_GrandTotalEqualsPerMethodSum(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	agg := NewAggregator(rng)

	agg.Add(settledOrder("2024-01-02", 1, nil, []order.Payment{pay("card", "7000"), pay("cash", "2000")}))
	agg.Add(settledOrder("2024-01-03", 1, nil, []order.Payment{pay("card", "1500")}))
	agg.Add(settledOrder("2024-01-04", 1, nil, []order.Payment{pay("coupon", "500.25")}))

	r := agg.Result()

	sum := decimal.Zero
	for method, total := range r.PaymentSales {
		if method == TotalKey {
			continue
		}
		sum = sum.Add(total.Decimal)
	}
	assert.True(t, sum.Equal(r.PaymentSales[TotalKey].Decimal),
		"총합 must equal the sum of per-method totals: %s vs %s", sum, r.PaymentSales[TotalKey])
}

func TestAggregator_SubtotalConservation(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	agg := NewAggregator(rng)

	orders := []order.Order{
		settledOrder("2024-01-02", 1, []order.LineItem{line("Latte", 2, "8000"), line("Scone", 1, "3500")}, nil),
		settledOrder("2024-01-03", 1, []order.LineItem{line("Latte", 1, "4000")}, nil),
		settledOrder("2024-01-03", 2, []order.LineItem{line("Ade", 3, "13500")}, nil),
	}

	want := decimal.Zero
	for _, o := range orders {
		agg.Add(o)
		for _, item := range o.Items {
			want = want.Add(item.Subtotal)
		}
	}

	got := decimal.Zero
	for _, s := range agg.Result().MenuSales {
		got = got.Add(s.TotalSales)
	}
	assert.True(t, want.Equal(got), "menu sales revenue must conserve line subtotals")
}

func TestAggregator_MenuOrderedByQuantityDesc(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	agg := NewAggregator(rng)

	agg.Add(settledOrder("2024-01-02", 1, []order.LineItem{
		line("Scone", 1, "3500"),
		line("Latte", 4, "16000"),
		line("Americano", 2, "6000"),
	}, nil))

	r := agg.Result()
	require.Len(t, r.MenuSales, 3)
	for i := 1; i < len(r.MenuSales); i++ {
		assert.GreaterOrEqual(t, r.MenuSales[i-1].QuantitySold, r.MenuSales[i].QuantitySold)
	}
	assert.Equal(t, "Latte", r.MenuSales[0].ItemName)
}

func TestAggregator_TiesKeepFirstSeenOrder(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	agg := NewAggregator(rng)

	agg.Add(settledOrder("2024-01-02", 1, []order.LineItem{
		line("Einspanner", 2, "11000"),
		line("Americano", 2, "6000"),
		line("Latte", 2, "8000"),
	}, nil))

	r := agg.Result()
	require.Len(t, r.MenuSales, 3)
	assert.Equal(t, "Einspanner", r.MenuSales[0].ItemName)
	assert.Equal(t, "Americano", r.MenuSales[1].ItemName)
	assert.Equal(t, "Latte", r.MenuSales[2].ItemName)
}

func TestAggregator_MissingFieldsDegradeToDefaults(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	agg := NewAggregator(rng)

	agg.Add(settledOrder("2024-01-02", 1,
		[]order.LineItem{{Quantity: 1, Subtotal: decimal.NewFromInt(1000)}},
		[]order.Payment{{Amount: decimal.NewFromInt(1000)}},
	))

	r := agg.Result()
	require.Len(t, r.MenuSales, 1)
	assert.Equal(t, UnknownKey, r.MenuSales[0].ItemName)
	assert.True(t, decimal.NewFromInt(1000).Equal(r.PaymentSales[UnknownKey].Decimal))
}

func TestAggregator_EmptyResult(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	r := NewAggregator(rng).Result()

	assert.Empty(t, r.MenuSales)
	require.Len(t, r.PaymentSales, 1)
	assert.True(t, r.PaymentSales[TotalKey].IsZero())
}

func TestAggregator_FractionalAmountsPreserved(t *testing.T) {
	rng := mustRange(t, "2024-01-01", "2024-01-31")
	agg := NewAggregator(rng)

	agg.Add(settledOrder("2024-01-02", 1, nil, []order.Payment{pay("card", "7000")}))
	agg.Add(settledOrder("2024-01-02", 2, nil, []order.Payment{pay("card", "3000.50")}))

	r := agg.Result()
	assert.Equal(t, "10000.5", r.PaymentSales["card"].String())

	body, err := json.Marshal(r.PaymentSales)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"card":10000.5`)
	assert.NotContains(t, string(body), `"card":10000,`)
}

func TestMoney_MarshalWholeWithoutDecimalPoint(t *testing.T) {
	body, err := json.Marshal(Money{decimal.RequireFromString("8000.00")})
	require.NoError(t, err)
	assert.Equal(t, "8000", string(body))
}

func TestMenuSales_MarshalPreservesOrder(t *testing.T) {
	m := MenuSales{
		{ItemName: "Latte", QuantitySold: 4, TotalSales: decimal.RequireFromString("16000")},
		{ItemName: "Americano", QuantitySold: 2, TotalSales: decimal.RequireFromString("6000.50")},
	}

	body, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"Latte":{"quantitySold":4,"totalSales":16000},"Americano":{"quantitySold":2,"totalSales":6000.5}}`,
		string(body),
	)
	// Key order is part of the contract, not just JSON equivalence.
	assert.Less(t, strings.Index(string(body), "Latte"), strings.Index(string(body), "Americano"))
}

func TestMenuSales_MarshalEmptyObject(t *testing.T) {
	body, err := json.Marshal(MenuSales{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))

	body, err = json.Marshal(MenuSales(nil))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}
