package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee представляет сотрудника стройплощадки
type Employee struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string          `json:"name" gorm:"type:varchar(100);not null"`
	Surname    string          `json:"surname" gorm:"type:varchar(100);not null"`
	RoleID     string          `json:"role_id" gorm:"type:varchar(36);not null"`
	WorkSiteID *string         `json:"work_site_id" gorm:"type:varchar(36)"`
	DailyValue decimal.Decimal `json:"daily_value" gorm:"type:numeric(12,2);not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// DayAdjustment - корректировка отработанных дней (±0.5 или ±1.0) на дату.
// Не изменяется после создания: исправление ошибки - удаление и новая запись.
type DayAdjustment struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EmployeeID string          `json:"employee_id" gorm:"type:varchar(36);not null;index:idx_day_adjustments_employee_date,priority:1"`
	Date       time.Time       `json:"date" gorm:"type:date;not null;index:idx_day_adjustments_employee_date,priority:2"`
	Value      decimal.Decimal `json:"value" gorm:"type:numeric(3,1);not null"`
	Notes      *string         `json:"notes"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (DayAdjustment) TableName() string {
	return "day_adjustments"
}

// MonthlyPayroll - расчёт сотрудника за период [PeriodStart, PeriodEnd].
// ClosedAt == nil означает открытый расчёт, который пересчитывается
// при изменении корректировок.
type MonthlyPayroll struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EmployeeID      string          `json:"employee_id" gorm:"type:varchar(36);not null"`
	PeriodStart     time.Time       `json:"period_start" gorm:"type:date;not null"`
	PeriodEnd       time.Time       `json:"period_end" gorm:"type:date;not null"`
	BaseWorkdays    decimal.Decimal `json:"base_workdays" gorm:"type:numeric(6,1);not null"`
	FinalWorkedDays decimal.Decimal `json:"final_worked_days" gorm:"type:numeric(6,1);not null"`
	TotalPayment    decimal.Decimal `json:"total_payment" gorm:"type:numeric(14,2);not null"`
	ClosedAt        *time.Time      `json:"closed_at"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (MonthlyPayroll) TableName() string {
	return "monthly_payrolls"
}

// IsOpen сообщает, может ли расчёт ещё пересчитываться
func (p *MonthlyPayroll) IsOpen() bool {
	return p.ClosedAt == nil
}
