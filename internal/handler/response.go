package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/site-payroll-api/internal/calendar"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/dto"
)

// responder - общие методы ответа для всех хендлеров
type responder struct {
	validator *validator.Validate
	logger    *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{
		validator: validator.New(),
		logger:    logger,
	}
}

// decodeAndValidate разбирает тело запроса и проверяет теги validate
func (h *responder) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return false
	}

	return true
}

func (h *responder) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidValue):
		h.respondError(w, http.StatusBadRequest, "invalid value", err.Error())
	case errors.Is(err, domain.ErrInvalidDate):
		h.respondError(w, http.StatusBadRequest, "invalid date, expected yyyy-mm-dd", err.Error())
	case errors.Is(err, domain.ErrInvalidPeriod):
		h.respondError(w, http.StatusBadRequest, "invalid period", err.Error())
	case errors.Is(err, domain.ErrEmployeeNotFound):
		h.respondError(w, http.StatusNotFound, "employee not found", err.Error())
	case errors.Is(err, domain.ErrAdjustmentNotFound):
		h.respondError(w, http.StatusNotFound, "adjustment not found", err.Error())
	case errors.Is(err, domain.ErrPayrollNotFound):
		h.respondError(w, http.StatusNotFound, "payroll not found", err.Error())
	case errors.Is(err, domain.ErrDuplicatePeriod):
		h.respondError(w, http.StatusConflict, "employee already has an open payroll", err.Error())
	case errors.Is(err, domain.ErrPayrollClosed):
		h.respondError(w, http.StatusConflict, "payroll is already closed", err.Error())
	case errors.Is(err, domain.ErrIntegrityViolation):
		h.logger.Error("payroll integrity violation", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *responder) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}

func toEmployeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:         emp.ID,
		Name:       emp.Name,
		Surname:    emp.Surname,
		RoleID:     emp.RoleID,
		WorkSiteID: emp.WorkSiteID,
		DailyValue: emp.DailyValue.StringFixed(2),
		CreatedAt:  emp.CreatedAt,
	}
}

func toAdjustmentResponse(adj *domain.DayAdjustment) dto.AdjustmentResponse {
	return dto.AdjustmentResponse{
		ID:         adj.ID,
		EmployeeID: adj.EmployeeID,
		Date:       calendar.FormatDate(adj.Date),
		Value:      adj.Value.StringFixed(1),
		Notes:      adj.Notes,
		CreatedAt:  adj.CreatedAt,
	}
}

func toPayrollResponse(p *domain.MonthlyPayroll) dto.PayrollResponse {
	return dto.PayrollResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		PeriodStart:     calendar.FormatDate(p.PeriodStart),
		PeriodEnd:       calendar.FormatDate(p.PeriodEnd),
		BaseWorkdays:    p.BaseWorkdays.String(),
		FinalWorkedDays: p.FinalWorkedDays.String(),
		TotalPayment:    p.TotalPayment.StringFixed(2),
		ClosedAt:        p.ClosedAt,
		CreatedAt:       p.CreatedAt,
	}
}

func toPayrollResponses(payrolls []domain.MonthlyPayroll) []dto.PayrollResponse {
	resp := make([]dto.PayrollResponse, len(payrolls))
	for i := range payrolls {
		resp[i] = toPayrollResponse(&payrolls[i])
	}
	return resp
}
