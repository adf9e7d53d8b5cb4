package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Определение бизнес-ошибок
var (
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrNotFound           = errors.New("not found")
	ErrDuplicatePeriod    = errors.New("open payroll already exists for employee")
	ErrIntegrityViolation = errors.New("more than one open payroll for employee")
	ErrPayrollClosed      = errors.New("payroll is already closed")

	ErrEmployeeNotFound   = fmt.Errorf("employee %w", ErrNotFound)
	ErrAdjustmentNotFound = fmt.Errorf("adjustment %w", ErrNotFound)
	ErrPayrollNotFound    = fmt.Errorf("payroll %w", ErrNotFound)
)

// PayrollError добавляет к ошибке контекст операции: сотрудника, дату, запись
type PayrollError struct {
	Op           string
	EmployeeID   string
	AdjustmentID string
	RecordID     string
	Date         string
	Err          error
}

func (e *PayrollError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	var fields []string
	if e.EmployeeID != "" {
		fields = append(fields, "employee="+e.EmployeeID)
	}
	if e.AdjustmentID != "" {
		fields = append(fields, "adjustment="+e.AdjustmentID)
	}
	if e.RecordID != "" {
		fields = append(fields, "payroll="+e.RecordID)
	}
	if e.Date != "" {
		fields = append(fields, "date="+e.Date)
	}
	if len(fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(fields, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *PayrollError) Unwrap() error {
	return e.Err
}
