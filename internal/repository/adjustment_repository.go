package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/site-payroll-api/internal/domain"
	"gorm.io/gorm"
)

// AdjustmentRepository определяет интерфейс для работы с корректировками дней
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *domain.DayAdjustment) error
	GetByID(ctx context.Context, id string) (*domain.DayAdjustment, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.DayAdjustment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.DayAdjustment, error)
	ListByEmployeeAndDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]domain.DayAdjustment, error)
}

type adjustmentRepository struct {
	db *gorm.DB
}

// NewAdjustmentRepository создаёт новый экземпляр репозитория
func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, adj *domain.DayAdjustment) error {
	if adj.ID == "" {
		adj.ID = newID()
	}
	return conn(ctx, r.db).Create(adj).Error
}

func (r *adjustmentRepository) GetByID(ctx context.Context, id string) (*domain.DayAdjustment, error) {
	var adj domain.DayAdjustment
	err := conn(ctx, r.db).Where("id = ?", id).First(&adj).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAdjustmentNotFound
		}
		return nil, err
	}
	return &adj, nil
}

// Delete удаляет корректировку безвозвратно
func (r *adjustmentRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.DayAdjustment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAdjustmentNotFound
	}
	return nil
}

func (r *adjustmentRepository) ListAll(ctx context.Context) ([]domain.DayAdjustment, error) {
	var adjustments []domain.DayAdjustment
	err := conn(ctx, r.db).
		Order("date DESC, created_at DESC").
		Find(&adjustments).Error
	return adjustments, err
}

func (r *adjustmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.DayAdjustment, error) {
	var adjustments []domain.DayAdjustment
	err := conn(ctx, r.db).
		Where("employee_id = ?", employeeID).
		Order("date DESC, created_at DESC").
		Find(&adjustments).Error
	return adjustments, err
}

// ListByEmployeeAndDateRange возвращает корректировки с датой в [start, end]
func (r *adjustmentRepository) ListByEmployeeAndDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]domain.DayAdjustment, error) {
	var adjustments []domain.DayAdjustment
	err := conn(ctx, r.db).
		Where("employee_id = ? AND date >= ? AND date <= ?", employeeID, start, end).
		Order("date ASC, created_at ASC").
		Find(&adjustments).Error
	return adjustments, err
}

func newID() string {
	return uuid.NewString()
}
