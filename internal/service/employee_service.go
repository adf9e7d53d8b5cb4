package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/dto"
	"github.com/site-payroll-api/internal/repository"
)

// EmployeeService определяет интерфейс бизнес-логики для сотрудников
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error)
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
}

type employeeService struct {
	empRepo repository.EmployeeRepository
}

// NewEmployeeService создаёт новый экземпляр сервиса
func NewEmployeeService(empRepo repository.EmployeeRepository) EmployeeService {
	return &employeeService{
		empRepo: empRepo,
	}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error) {
	if req.DailyValue == nil {
		return nil, &domain.PayrollError{Op: "create employee", Err: fmt.Errorf("%w: daily value is required", domain.ErrInvalidValue)}
	}
	if err := domain.ValidateDailyValue(*req.DailyValue); err != nil {
		return nil, &domain.PayrollError{Op: "create employee", Err: err}
	}

	emp := &domain.Employee{
		Name:       strings.TrimSpace(req.Name),
		Surname:    strings.TrimSpace(req.Surname),
		RoleID:     strings.TrimSpace(req.RoleID),
		WorkSiteID: req.WorkSiteID,
		DailyValue: *req.DailyValue,
	}

	if err := s.empRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

func (s *employeeService) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	emp, err := s.empRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PayrollError{Op: "get employee", EmployeeID: id, Err: err}
	}
	return emp, nil
}

func (s *employeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.empRepo.List(ctx)
}
