package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/site-payroll-api/internal/config"
	"github.com/site-payroll-api/internal/database"
	"github.com/site-payroll-api/internal/database/databasetest"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T, now time.Time) (*app, *gorm.DB) {
	db := databasetest.New(t)
	return &app{
		cfg: &config.Config{
			Database: config.DatabaseConfig{Driver: database.DriverSQLite},
			Payroll:  config.PayrollConfig{GenerationWorkers: 2},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return now },
		open:   func(config.DatabaseConfig) (*gorm.DB, error) { return db, nil },
	}, db
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedEmployee(t *testing.T, db *gorm.DB) *domain.Employee {
	t.Helper()
	emp := &domain.Employee{Name: "Carlos", Surname: "Gomez", RoleID: "mason", DailyValue: decimal.NewFromInt(150)}
	require.NoError(t, repository.NewEmployeeRepository(db).Create(context.Background(), emp))
	return emp
}

func TestGenerateAndClosePeriod(t *testing.T) {
	a, db := newTestApp(t, time.Date(2024, 11, 5, 18, 0, 0, 0, time.UTC))
	seedEmployee(t, db)

	out, err := run(t, a, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-10-06..2024-11-05")
	assert.Contains(t, out, "3300.00")
	assert.Contains(t, out, "open")

	out, err = run(t, a, "close-period")
	require.NoError(t, err)
	assert.Contains(t, out, "closed")

	out, err = run(t, a, "list", "--open")
	require.NoError(t, err)
	assert.NotContains(t, out, "2024-10-06..")
}

func TestClosePeriod_RefusesOutsideClosingDay(t *testing.T) {
	a, db := newTestApp(t, time.Date(2024, 10, 20, 9, 0, 0, 0, time.UTC))
	seedEmployee(t, db)

	_, err := run(t, a, "generate", "--start", "2024-10-06")
	require.NoError(t, err)

	_, err = run(t, a, "close-period")
	assert.ErrorIs(t, err, errNotClosingDay)

	out, err := run(t, a, "list", "--open")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-10-06..2024-11-05")

	out, err = run(t, a, "close-period", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "closed")
}

func TestClose_UnknownPayroll(t *testing.T) {
	a, _ := newTestApp(t, time.Date(2024, 11, 5, 18, 0, 0, 0, time.UTC))

	_, err := run(t, a, "close", "--id", "missing")
	assert.ErrorIs(t, err, domain.ErrPayrollNotFound)

	_, err = run(t, a, "close")
	assert.Error(t, err)
}

func TestGenerate_InvalidPeriod(t *testing.T) {
	a, db := newTestApp(t, time.Date(2024, 11, 5, 18, 0, 0, 0, time.UTC))
	seedEmployee(t, db)

	_, err := run(t, a, "generate", "--start", "2024-11-05", "--end", "2024-10-06")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestMigrate_Idempotent(t *testing.T) {
	a, _ := newTestApp(t, time.Now())

	out, err := run(t, a, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
}
