package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEmployeeRequest - запрос на создание сотрудника
type CreateEmployeeRequest struct {
	Name       string           `json:"name" validate:"required,min=1,max=100"`
	Surname    string           `json:"surname" validate:"required,min=1,max=100"`
	RoleID     string           `json:"role_id" validate:"required,max=36"`
	WorkSiteID *string          `json:"work_site_id" validate:"omitempty,min=1,max=36"`
	DailyValue *decimal.Decimal `json:"daily_value" validate:"required"`
}

// CreateAdjustmentRequest - запрос на создание корректировки дней
type CreateAdjustmentRequest struct {
	EmployeeID string          `json:"employee_id" validate:"required,max=36"`
	Date       string          `json:"date" validate:"required"`
	Value      decimal.Decimal `json:"value"`
	Notes      *string         `json:"notes" validate:"omitempty,max=500"`
}

// ListAdjustmentsQuery - фильтр списка корректировок
type ListAdjustmentsQuery struct {
	EmployeeID string `validate:"required_with=From To"`
	From       string `validate:"required_with=To,omitempty,datetime=2006-01-02"`
	To         string `validate:"required_with=From,omitempty,datetime=2006-01-02"`
}

// GeneratePayrollRequest - запрос на формирование расчётов за период.
// Без period_end конец периода вычисляется как period_start + 1 месяц - 1 день.
type GeneratePayrollRequest struct {
	PeriodStart string  `json:"period_start" validate:"required"`
	PeriodEnd   *string `json:"period_end"`
}

// ListPayrollsQuery - фильтр списка расчётов
type ListPayrollsQuery struct {
	EmployeeID  string
	PeriodStart string `validate:"omitempty,datetime=2006-01-02"`
	OpenOnly    bool
}

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	RoleID     string    `json:"role_id"`
	WorkSiteID *string   `json:"work_site_id"`
	DailyValue string    `json:"daily_value"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdjustmentResponse - ответ с данными корректировки
type AdjustmentResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	Value      string    `json:"value"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PayrollResponse - ответ с данными расчёта
type PayrollResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	PeriodStart     string     `json:"period_start"`
	PeriodEnd       string     `json:"period_end"`
	BaseWorkdays    string     `json:"base_workdays"`
	FinalWorkedDays string     `json:"final_worked_days"`
	TotalPayment    string     `json:"total_payment"`
	ClosedAt        *time.Time `json:"closed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// GeneratePayrollResponse - результат генерации: созданные расчёты и
// сотрудники, по которым расчёт создать не удалось
type GeneratePayrollResponse struct {
	Created []PayrollResponse   `json:"created"`
	Failed  []GenerationFailure `json:"failed,omitempty"`
}

// GenerationFailure - ошибка генерации по одному сотруднику
type GenerationFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
