package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/site-payroll-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayrollFilter - условия выборки расчётов; пустые поля не фильтруют
type PayrollFilter struct {
	EmployeeID  string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	OpenOnly    bool
}

// PayrollRepository определяет интерфейс для работы с расчётами за период
type PayrollRepository interface {
	Create(ctx context.Context, p *domain.MonthlyPayroll) error
	GetByID(ctx context.Context, id string) (*domain.MonthlyPayroll, error)
	List(ctx context.Context, filter PayrollFilter) ([]domain.MonthlyPayroll, error)
	FindOpenForEmployeeAndPeriod(ctx context.Context, employeeID string, start, end time.Time) (*domain.MonthlyPayroll, error)
	FindOpenForEmployee(ctx context.Context, employeeID string) (*domain.MonthlyPayroll, error)
	UpdateFinalWorkedDays(ctx context.Context, id string, finalWorkedDays, totalPayment decimal.Decimal) error
	Close(ctx context.Context, id string, at time.Time) error
}

type payrollRepository struct {
	db *gorm.DB
}

// NewPayrollRepository создаёт новый экземпляр репозитория
func NewPayrollRepository(db *gorm.DB) PayrollRepository {
	return &payrollRepository{db: db}
}

// Create сохраняет новый открытый расчёт. Второй открытый расчёт
// сотрудника отклоняется уникальным индексом.
func (r *payrollRepository) Create(ctx context.Context, p *domain.MonthlyPayroll) error {
	if p.ID == "" {
		p.ID = newID()
	}
	p.ClosedAt = nil

	err := conn(ctx, r.db).Create(p).Error
	if isDuplicateKey(err) {
		return domain.ErrDuplicatePeriod
	}
	return err
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (*domain.MonthlyPayroll, error) {
	var p domain.MonthlyPayroll
	err := conn(ctx, r.db).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayrollNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *payrollRepository) List(ctx context.Context, filter PayrollFilter) ([]domain.MonthlyPayroll, error) {
	query := conn(ctx, r.db).Model(&domain.MonthlyPayroll{})

	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.PeriodStart != nil {
		query = query.Where("period_start = ?", *filter.PeriodStart)
	}
	if filter.PeriodEnd != nil {
		query = query.Where("period_end = ?", *filter.PeriodEnd)
	}
	if filter.OpenOnly {
		query = query.Where("closed_at IS NULL")
	}

	var payrolls []domain.MonthlyPayroll
	err := query.Order("period_start DESC, employee_id ASC").Find(&payrolls).Error
	return payrolls, err
}

// FindOpenForEmployeeAndPeriod возвращает nil, nil, если открытого расчёта
// за этот период нет
func (r *payrollRepository) FindOpenForEmployeeAndPeriod(ctx context.Context, employeeID string, start, end time.Time) (*domain.MonthlyPayroll, error) {
	var payrolls []domain.MonthlyPayroll
	err := conn(ctx, r.db).
		Where("employee_id = ? AND period_start = ? AND period_end = ? AND closed_at IS NULL", employeeID, start, end).
		Limit(1).
		Find(&payrolls).Error
	if err != nil || len(payrolls) == 0 {
		return nil, err
	}
	return &payrolls[0], nil
}

// FindOpenForEmployee возвращает единственный открытый расчёт сотрудника
// и блокирует строку до конца транзакции. nil, nil - открытого расчёта нет.
func (r *payrollRepository) FindOpenForEmployee(ctx context.Context, employeeID string) (*domain.MonthlyPayroll, error) {
	var payrolls []domain.MonthlyPayroll
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND closed_at IS NULL", employeeID).
		Limit(2).
		Find(&payrolls).Error
	if err != nil {
		return nil, err
	}

	switch len(payrolls) {
	case 0:
		return nil, nil
	case 1:
		return &payrolls[0], nil
	default:
		return nil, domain.ErrIntegrityViolation
	}
}

// UpdateFinalWorkedDays меняет только итоговые дни и сумму открытого расчёта
func (r *payrollRepository) UpdateFinalWorkedDays(ctx context.Context, id string, finalWorkedDays, totalPayment decimal.Decimal) error {
	result := conn(ctx, r.db).
		Model(&domain.MonthlyPayroll{}).
		Where("id = ? AND closed_at IS NULL", id).
		Updates(map[string]any{
			"final_worked_days": finalWorkedDays,
			"total_payment":     totalPayment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrClosed(ctx, id)
	}
	return nil
}

// Close проставляет closed_at; закрытый расчёт повторно не закрывается
func (r *payrollRepository) Close(ctx context.Context, id string, at time.Time) error {
	result := conn(ctx, r.db).
		Model(&domain.MonthlyPayroll{}).
		Where("id = ? AND closed_at IS NULL", id).
		Update("closed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrClosed(ctx, id)
	}
	return nil
}

// isDuplicateKey опирается на TranslateError: оба драйвера переводят
// нарушение уникального индекса в gorm.ErrDuplicatedKey
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *payrollRepository) missingOrClosed(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrPayrollClosed
}
