package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/dto"
	"github.com/site-payroll-api/internal/service"
)

type PayrollHandler struct {
	responder
	payrollService service.PayrollService
}

func NewPayrollHandler(payrollService service.PayrollService, logger *slog.Logger) *PayrollHandler {
	return &PayrollHandler{
		responder:      newResponder(logger),
		payrollService: payrollService,
	}
}

// Generate формирует расчёты за период. Если часть сотрудников обработать
// не удалось, возвращается 207 со списком созданных и ошибок.
func (h *PayrollHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GeneratePayrollRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.payrollService.Generate(r.Context(), &req)
	failed := generationFailures(err)
	if err != nil && len(failed) == 0 {
		h.handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if len(failed) > 0 {
		h.logger.Warn("payroll generation partially failed", slog.Int("failed", len(failed)), slog.Any("error", err))
		status = http.StatusMultiStatus
	}

	h.respondJSON(w, status, dto.GeneratePayrollResponse{
		Created: toPayrollResponses(created),
		Failed:  failed,
	})
}

func (h *PayrollHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.payrollService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toPayrollResponse(p))
}

func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	query := dto.ListPayrollsQuery{
		EmployeeID:  r.URL.Query().Get("employee_id"),
		PeriodStart: r.URL.Query().Get("period_start"),
		OpenOnly:    r.URL.Query().Get("open") == "true",
	}
	if err := h.validator.Struct(&query); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	payrolls, err := h.payrollService.List(r.Context(), &query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toPayrollResponses(payrolls))
}

func (h *PayrollHandler) Close(w http.ResponseWriter, r *http.Request) {
	p, err := h.payrollService.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toPayrollResponse(p))
}

// generationFailures раскладывает объединённую ошибку генерации по сотрудникам
func generationFailures(err error) []dto.GenerationFailure {
	if err == nil {
		return nil
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	var failed []dto.GenerationFailure
	for _, e := range errs {
		var pe *domain.PayrollError
		if errors.As(e, &pe) && pe.EmployeeID != "" {
			failed = append(failed, dto.GenerationFailure{EmployeeID: pe.EmployeeID, Error: pe.Err.Error()})
		}
	}
	return failed
}
