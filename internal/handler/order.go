package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/eloom/holybean-server/internal/domain/order"
)

// placeOrderRequest is the wire shape the POS client sends. The client uses
// its own legacy field names (type/name/count/total/price); ingest renames
// them onto the stored document shape.
type placeOrderRequest struct {
	OrderNum     int                `json:"orderNum"`
	CustomerName string             `json:"customerName"`
	CreditStatus int                `json:"creditStatus"`
	OrderItems   []orderItemRequest `json:"orderItems"`
	Payments     []paymentRequest   `json:"paymentMethods"`
}

type orderItemRequest struct {
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	Price decimal.Decimal `json:"price"`
}

type paymentRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// orderSummary is the list-view projection of an order.
type orderSummary struct {
	OrderDate    string          `json:"orderDate"`
	OrderNum     int             `json:"orderNum"`
	CustomerName string          `json:"customerName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CreditStatus int             `json:"creditStatus"`
}

func summarize(orders []order.Order) []orderSummary {
	out := make([]orderSummary, len(orders))
	for i, o := range orders {
		out[i] = orderSummary{
			OrderDate:    o.OrderDate,
			OrderNum:     o.OrderNum,
			CustomerName: o.CustomerName,
			TotalAmount:  o.TotalAmount,
			CreditStatus: o.CreditStatus,
		}
	}
	return out
}

// PlaceOrder accepts a new order from the POS client.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.LineItem, len(req.OrderItems))
	for i, it := range req.OrderItems {
		items[i] = order.LineItem{
			ItemName:  it.Name,
			Quantity:  it.Count,
			Subtotal:  it.Total,
			UnitPrice: it.Price,
		}
	}
	payments := make([]order.Payment, len(req.Payments))
	for i, p := range req.Payments {
		payments[i] = order.Payment{
			Method: p.Type,
			Amount: p.Amount,
		}
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		OrderNum:     req.OrderNum,
		CustomerName: req.CustomerName,
		CreditStatus: req.CreditStatus,
		Items:        items,
		Payments:     payments,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	h.ordersCreated.Add(r.Context(), 1)
	respondJSON(w, http.StatusCreated, o)
}

// NextOrderNum returns the ticket number the next order placed today will
// receive.
func (h *Handler) NextOrderNum(w http.ResponseWriter, r *http.Request) {
	next, err := h.orders.NextOrderNum(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"nextOrderNum": next})
}

// OrdersForDate lists all orders placed on the path date.
func (h *Handler) OrdersForDate(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.OrdersForDate(r.Context(), r.PathValue("date"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(orders))
}

// GetOrder returns the full order document for {date}/{num}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	date, num, err := pathOrderKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.GetOrder(r.Context(), date, num)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// DeleteOrder removes an order and echoes the removed document.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	date, num, err := pathOrderKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.orders.DeleteOrder(r.Context(), date, num)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "order deleted",
		"deletedItem": deleted,
	})
}

// PendingCredits lists unsettled tab orders across all dates.
func (h *Handler) PendingCredits(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.PendingCredits(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(orders))
}

// SettleCredit marks a pending tab order as paid.
func (h *Handler) SettleCredit(w http.ResponseWriter, r *http.Request) {
	date, num, err := pathOrderKey(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orders.SettleCredit(r.Context(), date, num); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "credit settled"})
}
