package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/site-payroll-api/internal/dto"
	"github.com/site-payroll-api/internal/service"
)

type AdjustmentHandler struct {
	responder
	adjService service.AdjustmentService
}

func NewAdjustmentHandler(adjService service.AdjustmentService, logger *slog.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{
		responder:  newResponder(logger),
		adjService: adjService,
	}
}

// Create сохраняет корректировку и пересчитывает открытый расчёт сотрудника
func (h *AdjustmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdjustmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	adj, err := h.adjService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toAdjustmentResponse(adj))
}

func (h *AdjustmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.adjService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdjustmentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := dto.ListAdjustmentsQuery{
		EmployeeID: r.URL.Query().Get("employee_id"),
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}
	if err := h.validator.Struct(&query); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	adjustments, err := h.adjService.List(r.Context(), &query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]dto.AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		resp[i] = toAdjustmentResponse(&adjustments[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}
