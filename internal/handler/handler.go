// Package handler exposes the POS API over plain net/http. Each handler is a
// thin adapter: decode the request, call the domain, map the result or error
// onto the wire.
package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/eloom/holybean-server/internal/domain/menu"
	"github.com/eloom/holybean-server/internal/domain/order"
	"github.com/eloom/holybean-server/internal/domain/report"
)

// Handler holds the domain dependencies behind the POS API routes.
type Handler struct {
	orders  *order.Service
	menus   menu.Repository
	reports *report.Builder

	tracer        trace.Tracer
	reportsBuilt  metric.Int64Counter
	ordersCreated metric.Int64Counter
}

// New constructs a Handler. Telemetry instruments may come from a no-op
// provider in tests.
func New(
	orders *order.Service,
	menus menu.Repository,
	reports *report.Builder,
	tracerProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
) (*Handler, error) {
	meter := meterProvider.Meter("holybean.api")

	reportsBuilt, err := meter.Int64Counter("holybean.reports.built",
		metric.WithDescription("Sales reports successfully built"),
	)
	if err != nil {
		return nil, err
	}
	ordersCreated, err := meter.Int64Counter("holybean.orders.created",
		metric.WithDescription("Orders accepted and persisted"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		orders:        orders,
		menus:         menus,
		reports:       reports,
		tracer:        tracerProvider.Tracer("holybean.api"),
		reportsBuilt:  reportsBuilt,
		ordersCreated: ordersCreated,
	}, nil
}

// Register mounts all API routes on the mux. Path parameters use the
// net/http 1.22 pattern syntax.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/report", h.GetReport)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/next-number", h.NextOrderNum)
	mux.HandleFunc("GET /api/orders/{date}", h.OrdersForDate)
	mux.HandleFunc("GET /api/orders/{date}/{num}", h.GetOrder)
	mux.HandleFunc("DELETE /api/orders/{date}/{num}", h.DeleteOrder)

	mux.HandleFunc("GET /api/credits", h.PendingCredits)
	mux.HandleFunc("POST /api/credits/{date}/{num}/settle", h.SettleCredit)

	mux.HandleFunc("GET /api/menu", h.LatestMenu)
	mux.HandleFunc("PUT /api/menu", h.SaveMenu)
}
