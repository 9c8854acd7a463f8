package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GetReport builds the sales report for the inclusive [start, end] range
// given as query parameters.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	ctx, span := h.tracer.Start(r.Context(), "BuildReport",
		trace.WithAttributes(
			attribute.String("report.start", start),
			attribute.String("report.end", end),
		),
	)
	defer span.End()

	rep, err := h.reports.Build(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		respondReportError(w, r, err)
		return
	}

	h.reportsBuilt.Add(ctx, 1)
	respondJSON(w, http.StatusOK, rep)
}
