package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/eloom/holybean-server/internal/domain/menu"
	"github.com/eloom/holybean-server/internal/domain/order"
	"github.com/eloom/holybean-server/internal/domain/report"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Status is already written; an encode failure here means the client is
	// gone, so best effort only.
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Code: status, Message: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a bare 500 so internals never leak.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, menu.ErrNoBoard):
		respondError(w, http.StatusNotFound, "no menu board saved")
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidOrderDate):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrAlreadySettled):
		respondError(w, http.StatusConflict, err.Error())
	default:
		var iqErr *order.InvalidQuantityError
		if errors.As(err, &iqErr) {
			respondError(w, http.StatusUnprocessableEntity, iqErr.Error())
			return
		}

		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondReportError maps report-engine errors: the three validation errors
// are client faults, a source failure is a retryable server fault.
func respondReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, report.ErrMissingRange),
		errors.Is(err, report.ErrBadFormat),
		errors.Is(err, report.ErrInvalidRange):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		var srcErr *report.SourceError
		if errors.As(err, &srcErr) {
			zctx.From(r.Context()).Error("order source unavailable", zap.Error(err))
			respondError(w, http.StatusServiceUnavailable, "order store unavailable, retry later")
			return
		}
		respondDomainError(w, r, err)
	}
}

// pathOrderKey extracts the {date}/{num} pair shared by several routes.
func pathOrderKey(r *http.Request) (date string, num int, err error) {
	date = r.PathValue("date")
	num, err = strconv.Atoi(r.PathValue("num"))
	if err != nil {
		return "", 0, errors.New("order number must be an integer")
	}
	return date, num, nil
}
