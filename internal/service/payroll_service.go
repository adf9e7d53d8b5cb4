package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/site-payroll-api/internal/calendar"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/dto"
	"github.com/site-payroll-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// PayrollService определяет интерфейс расчёта зарплаты за период
type PayrollService interface {
	Generate(ctx context.Context, req *dto.GeneratePayrollRequest) ([]domain.MonthlyPayroll, error)
	GenerateForPeriod(ctx context.Context, start, end time.Time) ([]domain.MonthlyPayroll, error)
	GenerateCurrentPeriod(ctx context.Context) ([]domain.MonthlyPayroll, error)
	OnAdjustmentCreated(ctx context.Context, adj *domain.DayAdjustment) error
	OnAdjustmentDeleted(ctx context.Context, adj *domain.DayAdjustment) error
	Close(ctx context.Context, id string) (*domain.MonthlyPayroll, error)
	CloseOpenForPeriod(ctx context.Context, start, end time.Time) ([]domain.MonthlyPayroll, error)
	GetByID(ctx context.Context, id string) (*domain.MonthlyPayroll, error)
	List(ctx context.Context, query *dto.ListPayrollsQuery) ([]domain.MonthlyPayroll, error)
}

// PayrollOption настраивает сервис расчёта
type PayrollOption func(*payrollService)

// WithWorkers ограничивает число сотрудников, обрабатываемых параллельно
func WithWorkers(n int) PayrollOption {
	return func(s *payrollService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) PayrollOption {
	return func(s *payrollService) {
		s.now = now
	}
}

type payrollService struct {
	tx          repository.Transactor
	payrollRepo repository.PayrollRepository
	adjRepo     repository.AdjustmentRepository
	empRepo     repository.EmployeeRepository
	logger      *slog.Logger
	workers     int
	now         func() time.Time
}

// NewPayrollService создаёт новый экземпляр сервиса
func NewPayrollService(
	tx repository.Transactor,
	payrollRepo repository.PayrollRepository,
	adjRepo repository.AdjustmentRepository,
	empRepo repository.EmployeeRepository,
	logger *slog.Logger,
	opts ...PayrollOption,
) PayrollService {
	s := &payrollService{
		tx:          tx,
		payrollRepo: payrollRepo,
		adjRepo:     adjRepo,
		empRepo:     empRepo,
		logger:      logger,
		workers:     4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *payrollService) Generate(ctx context.Context, req *dto.GeneratePayrollRequest) ([]domain.MonthlyPayroll, error) {
	start, err := calendar.ParseDate(req.PeriodStart)
	if err != nil {
		return nil, &domain.PayrollError{Op: "generate payroll", Date: req.PeriodStart, Err: domain.ErrInvalidDate}
	}

	end := calendar.PeriodEnd(start)
	if req.PeriodEnd == nil && !calendar.IsValidPeriod(start, end) {
		return nil, &domain.PayrollError{Op: "generate payroll", Date: req.PeriodStart, Err: domain.ErrInvalidPeriod}
	}
	if req.PeriodEnd != nil {
		end, err = calendar.ParseDate(*req.PeriodEnd)
		if err != nil {
			return nil, &domain.PayrollError{Op: "generate payroll", Date: *req.PeriodEnd, Err: domain.ErrInvalidDate}
		}
	}

	return s.GenerateForPeriod(ctx, start, end)
}

func (s *payrollService) GenerateCurrentPeriod(ctx context.Context) ([]domain.MonthlyPayroll, error) {
	today := s.now()
	return s.GenerateForPeriod(ctx, calendar.CurrentPeriodStart(today), calendar.CurrentPeriodEnd(today))
}

// GenerateForPeriod создаёт открытый расчёт за [start, end] каждому сотруднику,
// у которого его ещё нет. Каждый сотрудник обрабатывается в своей транзакции:
// ошибка по одному не откатывает уже созданные расчёты других. Возвращаются
// только новые записи и объединённые ошибки по сотрудникам.
func (s *payrollService) GenerateForPeriod(ctx context.Context, start, end time.Time) ([]domain.MonthlyPayroll, error) {
	start, end = calendar.Date(start), calendar.Date(end)
	if start.After(end) {
		return nil, &domain.PayrollError{
			Op:   "generate payroll",
			Date: calendar.FormatDate(start) + ".." + calendar.FormatDate(end),
			Err:  domain.ErrInvalidPeriod,
		}
	}

	employees, err := s.empRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	base := decimal.NewFromInt(int64(calendar.CountBusinessDays(start, end)))
	results := make([]*domain.MonthlyPayroll, len(employees))
	errs := make([]error, len(employees))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range employees {
		g.Go(func() error {
			results[i], errs[i] = s.generateForEmployee(ctx, &employees[i], start, end, base)
			return nil
		})
	}
	_ = g.Wait()

	created := make([]domain.MonthlyPayroll, 0, len(employees))
	for _, p := range results {
		if p != nil {
			created = append(created, *p)
		}
	}

	genErr := errors.Join(errs...)
	s.logger.Info("payroll generated",
		slog.String("period_start", calendar.FormatDate(start)),
		slog.String("period_end", calendar.FormatDate(end)),
		slog.String("base_workdays", base.String()),
		slog.Int("employees", len(employees)),
		slog.Int("created", len(created)),
		slog.Bool("partial", genErr != nil),
	)

	return created, genErr
}

// generateForEmployee возвращает nil, nil, если открытый расчёт за период уже есть
func (s *payrollService) generateForEmployee(ctx context.Context, emp *domain.Employee, start, end time.Time, base decimal.Decimal) (*domain.MonthlyPayroll, error) {
	var created *domain.MonthlyPayroll

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.payrollRepo.FindOpenForEmployeeAndPeriod(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		adjustments, err := s.adjRepo.ListByEmployeeAndDateRange(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}

		adjustmentTotal := decimal.Zero
		for _, adj := range adjustments {
			adjustmentTotal = adjustmentTotal.Add(adj.Value)
		}
		finalWorkedDays := base.Add(adjustmentTotal)

		p := &domain.MonthlyPayroll{
			EmployeeID:      emp.ID,
			PeriodStart:     start,
			PeriodEnd:       end,
			BaseWorkdays:    base,
			FinalWorkedDays: finalWorkedDays,
			TotalPayment:    domain.TotalPayment(finalWorkedDays, emp.DailyValue),
		}
		if err := s.payrollRepo.Create(ctx, p); err != nil {
			return err
		}

		created = p
		return nil
	})

	if errors.Is(err, domain.ErrDuplicatePeriod) {
		// Параллельная генерация могла успеть создать этот же период
		existing, findErr := s.payrollRepo.FindOpenForEmployeeAndPeriod(ctx, emp.ID, start, end)
		if findErr == nil && existing != nil {
			return nil, nil
		}
	}
	if err != nil {
		return nil, &domain.PayrollError{
			Op:         "generate payroll",
			EmployeeID: emp.ID,
			Date:       calendar.FormatDate(start),
			Err:        err,
		}
	}

	return created, nil
}

// OnAdjustmentCreated добавляет значение корректировки к открытому расчёту,
// если её дата попадает в его период
func (s *payrollService) OnAdjustmentCreated(ctx context.Context, adj *domain.DayAdjustment) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.recompute(ctx, "apply adjustment", adj, adj.Value)
	})
}

// OnAdjustmentDeleted вычитает значение удалённой корректировки. adj должен
// быть прочитан до удаления.
func (s *payrollService) OnAdjustmentDeleted(ctx context.Context, adj *domain.DayAdjustment) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.recompute(ctx, "revert adjustment", adj, adj.Value.Neg())
	})
}

// recompute должен вызываться внутри транзакции: строка расчёта
// блокируется на время чтения, пересчёта и записи
func (s *payrollService) recompute(ctx context.Context, op string, adj *domain.DayAdjustment, delta decimal.Decimal) error {
	wrap := func(recordID string, err error) error {
		return &domain.PayrollError{
			Op:           op,
			EmployeeID:   adj.EmployeeID,
			AdjustmentID: adj.ID,
			RecordID:     recordID,
			Date:         calendar.FormatDate(adj.Date),
			Err:          err,
		}
	}

	record, err := s.payrollRepo.FindOpenForEmployee(ctx, adj.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrityViolation) {
			s.logger.Error("payroll integrity violation", slog.String("employee_id", adj.EmployeeID))
		}
		return wrap("", err)
	}

	// Нет открытого расчёта или дата вне его периода: расчёты не меняются
	if record == nil || !calendar.Contains(record.PeriodStart, record.PeriodEnd, adj.Date) {
		return nil
	}

	emp, err := s.empRepo.GetByID(ctx, adj.EmployeeID)
	if err != nil {
		return wrap(record.ID, err)
	}

	finalWorkedDays := record.FinalWorkedDays.Add(delta)
	totalPayment := domain.TotalPayment(finalWorkedDays, emp.DailyValue)

	if err := s.payrollRepo.UpdateFinalWorkedDays(ctx, record.ID, finalWorkedDays, totalPayment); err != nil {
		return wrap(record.ID, err)
	}

	s.logger.Debug("payroll recomputed",
		slog.String("payroll_id", record.ID),
		slog.String("employee_id", adj.EmployeeID),
		slog.String("delta", delta.String()),
		slog.String("final_worked_days", finalWorkedDays.String()),
		slog.String("total_payment", totalPayment.StringFixed(2)),
	)
	return nil
}

// Close закрывает расчёт; после этого корректировки его не меняют
func (s *payrollService) Close(ctx context.Context, id string) (*domain.MonthlyPayroll, error) {
	var closed *domain.MonthlyPayroll

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.payrollRepo.Close(ctx, id, s.now()); err != nil {
			return err
		}
		p, err := s.payrollRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		closed = p
		return nil
	})
	if err != nil {
		return nil, &domain.PayrollError{Op: "close payroll", RecordID: id, Err: err}
	}

	return closed, nil
}

// CloseOpenForPeriod закрывает все открытые расчёты за период одной транзакцией
func (s *payrollService) CloseOpenForPeriod(ctx context.Context, start, end time.Time) ([]domain.MonthlyPayroll, error) {
	start, end = calendar.Date(start), calendar.Date(end)
	var closed []domain.MonthlyPayroll

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := s.payrollRepo.List(ctx, repository.PayrollFilter{
			PeriodStart: &start,
			PeriodEnd:   &end,
			OpenOnly:    true,
		})
		if err != nil {
			return err
		}

		at := s.now()
		for _, p := range open {
			if err := s.payrollRepo.Close(ctx, p.ID, at); err != nil {
				return &domain.PayrollError{Op: "close payroll", EmployeeID: p.EmployeeID, RecordID: p.ID, Err: err}
			}
			p.ClosedAt = &at
			closed = append(closed, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payroll period closed",
		slog.String("period_start", calendar.FormatDate(start)),
		slog.String("period_end", calendar.FormatDate(end)),
		slog.Int("closed", len(closed)),
	)
	return closed, nil
}

func (s *payrollService) GetByID(ctx context.Context, id string) (*domain.MonthlyPayroll, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PayrollError{Op: "get payroll", RecordID: id, Err: err}
	}
	return p, nil
}

func (s *payrollService) List(ctx context.Context, query *dto.ListPayrollsQuery) ([]domain.MonthlyPayroll, error) {
	filter := repository.PayrollFilter{
		EmployeeID: query.EmployeeID,
		OpenOnly:   query.OpenOnly,
	}

	if query.PeriodStart != "" {
		start, err := calendar.ParseDate(query.PeriodStart)
		if err != nil {
			return nil, &domain.PayrollError{Op: "list payrolls", Date: query.PeriodStart, Err: domain.ErrInvalidDate}
		}
		filter.PeriodStart = &start
	}

	return s.payrollRepo.List(ctx, filter)
}
