package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/site-payroll-api/internal/database/databasetest"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repos struct {
	db          *gorm.DB
	tx          repository.Transactor
	employees   repository.EmployeeRepository
	adjustments repository.AdjustmentRepository
	payrolls    repository.PayrollRepository
}

func setupRepos(t *testing.T) *repos {
	db := databasetest.New(t)
	return &repos{
		db:          db,
		tx:          repository.NewTransactor(db),
		employees:   repository.NewEmployeeRepository(db),
		adjustments: repository.NewAdjustmentRepository(db),
		payrolls:    repository.NewPayrollRepository(db),
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (r *repos) mustEmployee(t *testing.T, surname string) *domain.Employee {
	t.Helper()
	emp := &domain.Employee{
		Name:       "Juan",
		Surname:    surname,
		RoleID:     "mason",
		DailyValue: dec("150.00"),
	}
	require.NoError(t, r.employees.Create(context.Background(), emp))
	return emp
}

func (r *repos) mustPayroll(t *testing.T, employeeID, start, end string) *domain.MonthlyPayroll {
	t.Helper()
	p := &domain.MonthlyPayroll{
		EmployeeID:      employeeID,
		PeriodStart:     date(t, start),
		PeriodEnd:       date(t, end),
		BaseWorkdays:    dec("22"),
		FinalWorkedDays: dec("22"),
		TotalPayment:    dec("3300.00"),
	}
	require.NoError(t, r.payrolls.Create(context.Background(), p))
	return p
}

func TestEmployeeRepository(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	site := "site-1"
	assigned := &domain.Employee{Name: "Ana", Surname: "Bravo", RoleID: "carpenter", WorkSiteID: &site, DailyValue: dec("180.50")}
	require.NoError(t, r.employees.Create(ctx, assigned))
	unassigned := r.mustEmployee(t, "Alvarez")

	got, err := r.employees.GetByID(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bravo", got.Surname)
	require.NotNil(t, got.WorkSiteID)
	assert.Equal(t, site, *got.WorkSiteID)
	assert.True(t, got.DailyValue.Equal(dec("180.50")), "daily value %s", got.DailyValue)

	all, err := r.employees.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, unassigned.ID, all[0].ID)
	assert.Nil(t, all[0].WorkSiteID)

	_, err = r.employees.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustmentRepository_RangeIsInclusive(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	emp := r.mustEmployee(t, "Lopez")
	other := r.mustEmployee(t, "Perez")

	for _, a := range []struct {
		emp, date, value string
	}{
		{emp.ID, "2024-10-05", "1"},
		{emp.ID, "2024-10-06", "0.5"},
		{emp.ID, "2024-10-19", "-1"},
		{emp.ID, "2024-11-05", "1"},
		{emp.ID, "2024-11-06", "-0.5"},
		{other.ID, "2024-10-10", "1"},
	} {
		require.NoError(t, r.adjustments.Create(ctx, &domain.DayAdjustment{
			EmployeeID: a.emp,
			Date:       date(t, a.date),
			Value:      dec(a.value),
		}))
	}

	inRange, err := r.adjustments.ListByEmployeeAndDateRange(ctx, emp.ID, date(t, "2024-10-06"), date(t, "2024-11-05"))
	require.NoError(t, err)
	require.Len(t, inRange, 3)
	assert.Equal(t, "2024-10-06", inRange[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-11-05", inRange[2].Date.Format("2006-01-02"))

	sum := decimal.Zero
	for _, a := range inRange {
		sum = sum.Add(a.Value)
	}
	assert.True(t, sum.Equal(dec("0.5")), "sum %s", sum)

	byEmployee, err := r.adjustments.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, byEmployee, 5)
	assert.Equal(t, "2024-11-06", byEmployee[0].Date.Format("2006-01-02"))

	all, err := r.adjustments.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestAdjustmentRepository_Delete(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	emp := r.mustEmployee(t, "Lopez")

	notes := "rain"
	adj := &domain.DayAdjustment{EmployeeID: emp.ID, Date: date(t, "2024-10-12"), Value: dec("-0.5"), Notes: &notes}
	require.NoError(t, r.adjustments.Create(ctx, adj))
	require.NotEmpty(t, adj.ID)

	got, err := r.adjustments.GetByID(ctx, adj.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "rain", *got.Notes)
	assert.True(t, got.Value.Equal(dec("-0.5")))

	require.NoError(t, r.adjustments.Delete(ctx, adj.ID))

	_, err = r.adjustments.GetByID(ctx, adj.ID)
	assert.ErrorIs(t, err, domain.ErrAdjustmentNotFound)
	assert.ErrorIs(t, r.adjustments.Delete(ctx, adj.ID), domain.ErrAdjustmentNotFound)
}

func TestPayrollRepository_OneOpenPerEmployee(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	emp := r.mustEmployee(t, "Lopez")

	first := r.mustPayroll(t, emp.ID, "2024-10-06", "2024-11-05")

	second := &domain.MonthlyPayroll{
		EmployeeID:      emp.ID,
		PeriodStart:     date(t, "2024-10-06"),
		PeriodEnd:       date(t, "2024-11-05"),
		BaseWorkdays:    dec("22"),
		FinalWorkedDays: dec("22"),
		TotalPayment:    dec("3300"),
	}
	assert.ErrorIs(t, r.payrolls.Create(ctx, second), domain.ErrDuplicatePeriod)

	require.NoError(t, r.payrolls.Close(ctx, first.ID, time.Now()))

	// после закрытия можно открыть следующий период
	next := r.mustPayroll(t, emp.ID, "2024-11-06", "2024-12-05")

	open, err := r.payrolls.FindOpenForEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, next.ID, open.ID)

	all, err := r.payrolls.List(ctx, repository.PayrollFilter{EmployeeID: emp.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	openOnly, err := r.payrolls.List(ctx, repository.PayrollFilter{OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, openOnly, 1)
	assert.Equal(t, next.ID, openOnly[0].ID)
}

func TestPayrollRepository_FindOpenForEmployeeAndPeriod(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	emp := r.mustEmployee(t, "Lopez")

	p := r.mustPayroll(t, emp.ID, "2024-10-06", "2024-11-05")

	found, err := r.payrolls.FindOpenForEmployeeAndPeriod(ctx, emp.ID, date(t, "2024-10-06"), date(t, "2024-11-05"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)
	assert.True(t, found.IsOpen())

	missing, err := r.payrolls.FindOpenForEmployeeAndPeriod(ctx, emp.ID, date(t, "2024-11-06"), date(t, "2024-12-05"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	none, err := r.payrolls.FindOpenForEmployee(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPayrollRepository_UpdateAndClose(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	emp := r.mustEmployee(t, "Lopez")
	p := r.mustPayroll(t, emp.ID, "2024-10-06", "2024-11-05")

	require.NoError(t, r.payrolls.UpdateFinalWorkedDays(ctx, p.ID, dec("22.5"), dec("3375.00")))

	got, err := r.payrolls.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.FinalWorkedDays.Equal(dec("22.5")), "final %s", got.FinalWorkedDays)
	assert.True(t, got.TotalPayment.Equal(dec("3375")), "total %s", got.TotalPayment)
	assert.True(t, got.BaseWorkdays.Equal(dec("22")), "base %s", got.BaseWorkdays)

	closedAt := time.Date(2024, 11, 5, 18, 0, 0, 0, time.UTC)
	require.NoError(t, r.payrolls.Close(ctx, p.ID, closedAt))

	got, err = r.payrolls.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.Equal(closedAt))
	assert.False(t, got.IsOpen())

	assert.ErrorIs(t, r.payrolls.Close(ctx, p.ID, time.Now()), domain.ErrPayrollClosed)
	assert.ErrorIs(t, r.payrolls.UpdateFinalWorkedDays(ctx, p.ID, dec("30"), dec("4500")), domain.ErrPayrollClosed)
	assert.ErrorIs(t, r.payrolls.Close(ctx, "missing", time.Now()), domain.ErrPayrollNotFound)
	assert.ErrorIs(t, r.payrolls.UpdateFinalWorkedDays(ctx, "missing", dec("1"), dec("1")), domain.ErrPayrollNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	r := setupRepos(t)
	emp := r.mustEmployee(t, "Lopez")
	boom := errors.New("boom")

	err := r.tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		adj := &domain.DayAdjustment{EmployeeID: emp.ID, Date: date(t, "2024-10-12"), Value: dec("1")}
		if err := r.adjustments.Create(ctx, adj); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := r.adjustments.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransactor_Commits(t *testing.T) {
	r := setupRepos(t)
	emp := r.mustEmployee(t, "Lopez")

	err := r.tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return r.adjustments.Create(ctx, &domain.DayAdjustment{EmployeeID: emp.ID, Date: date(t, "2024-10-12"), Value: dec("1")})
		})
	})
	require.NoError(t, err)

	all, err := r.adjustments.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPayrollRepository_FindOpenForEmployeeDetectsSecondOpenRecord(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	emp := r.mustEmployee(t, "Gomez")

	r.mustPayroll(t, emp.ID, "2024-10-06", "2024-11-05")
	open, err := r.payrolls.FindOpenForEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, open)

	// без индекса база пропускает второй открытый расчёт
	require.NoError(t, r.db.Exec("DROP INDEX ux_monthly_payrolls_open_employee").Error)
	r.mustPayroll(t, emp.ID, "2024-11-06", "2024-12-05")

	_, err = r.payrolls.FindOpenForEmployee(ctx, emp.ID)
	assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
}
