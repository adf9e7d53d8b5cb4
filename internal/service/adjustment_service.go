package service

import (
	"context"
	"errors"
	"strings"

	"github.com/site-payroll-api/internal/calendar"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/dto"
	"github.com/site-payroll-api/internal/repository"
)

// AdjustmentService определяет интерфейс бизнес-логики для корректировок дней
type AdjustmentService interface {
	Create(ctx context.Context, req *dto.CreateAdjustmentRequest) (*domain.DayAdjustment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query *dto.ListAdjustmentsQuery) ([]domain.DayAdjustment, error)
}

// AdjustmentListener получает события изменения корректировок
type AdjustmentListener interface {
	OnAdjustmentCreated(ctx context.Context, adj *domain.DayAdjustment) error
	OnAdjustmentDeleted(ctx context.Context, adj *domain.DayAdjustment) error
}

type adjustmentService struct {
	tx       repository.Transactor
	adjRepo  repository.AdjustmentRepository
	empRepo  repository.EmployeeRepository
	listener AdjustmentListener
}

// NewAdjustmentService создаёт новый экземпляр сервиса. listener
// пересчитывает расчёты в той же транзакции, что и запись корректировки.
func NewAdjustmentService(
	tx repository.Transactor,
	adjRepo repository.AdjustmentRepository,
	empRepo repository.EmployeeRepository,
	listener AdjustmentListener,
) AdjustmentService {
	return &adjustmentService{
		tx:       tx,
		adjRepo:  adjRepo,
		empRepo:  empRepo,
		listener: listener,
	}
}

func (s *adjustmentService) Create(ctx context.Context, req *dto.CreateAdjustmentRequest) (*domain.DayAdjustment, error) {
	// Проверки до любой записи в БД
	if err := domain.ValidateAdjustmentValue(req.Value); err != nil {
		return nil, &domain.PayrollError{Op: "create adjustment", EmployeeID: req.EmployeeID, Date: req.Date, Err: err}
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, &domain.PayrollError{Op: "create adjustment", EmployeeID: req.EmployeeID, Date: req.Date, Err: domain.ErrInvalidDate}
	}

	adj := &domain.DayAdjustment{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Value:      req.Value,
		Notes:      trimNotes(req.Notes),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.empRepo.GetByID(ctx, adj.EmployeeID); err != nil {
			return err
		}
		if err := s.adjRepo.Create(ctx, adj); err != nil {
			return err
		}
		return s.listener.OnAdjustmentCreated(ctx, adj)
	})
	if err != nil {
		return nil, wrapAdjustmentError("create adjustment", adj, err)
	}

	return adj, nil
}

// Delete удаляет корректировку и откатывает её влияние на открытый расчёт
func (s *adjustmentService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Читаем до удаления: сотрудник и дата нужны для пересчёта
		adj, err := s.adjRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.adjRepo.Delete(ctx, id); err != nil {
			return err
		}
		return s.listener.OnAdjustmentDeleted(ctx, adj)
	})
	if err != nil {
		return wrapAdjustmentError("delete adjustment", &domain.DayAdjustment{ID: id}, err)
	}
	return nil
}

func (s *adjustmentService) List(ctx context.Context, query *dto.ListAdjustmentsQuery) ([]domain.DayAdjustment, error) {
	switch {
	case query.EmployeeID != "" && query.From != "":
		from, err := calendar.ParseDate(query.From)
		if err != nil {
			return nil, &domain.PayrollError{Op: "list adjustments", EmployeeID: query.EmployeeID, Date: query.From, Err: domain.ErrInvalidDate}
		}
		to, err := calendar.ParseDate(query.To)
		if err != nil {
			return nil, &domain.PayrollError{Op: "list adjustments", EmployeeID: query.EmployeeID, Date: query.To, Err: domain.ErrInvalidDate}
		}
		return s.adjRepo.ListByEmployeeAndDateRange(ctx, query.EmployeeID, from, to)
	case query.EmployeeID != "":
		return s.adjRepo.ListByEmployee(ctx, query.EmployeeID)
	default:
		return s.adjRepo.ListAll(ctx)
	}
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// wrapAdjustmentError не оборачивает повторно ошибки, уже несущие контекст
func wrapAdjustmentError(op string, adj *domain.DayAdjustment, err error) error {
	var pe *domain.PayrollError
	if errors.As(err, &pe) {
		return err
	}
	pe = &domain.PayrollError{Op: op, EmployeeID: adj.EmployeeID, AdjustmentID: adj.ID, Err: err}
	if !adj.Date.IsZero() {
		pe.Date = calendar.FormatDate(adj.Date)
	}
	return pe
}
