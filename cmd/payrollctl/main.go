// Command payrollctl - консольный инструмент для плановых операций
// с расчётами: миграции, генерация периода и закрытие в день закрытия.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/site-payroll-api/internal/calendar"
	"github.com/site-payroll-api/internal/config"
	"github.com/site-payroll-api/internal/database"
	"github.com/site-payroll-api/internal/domain"
	"github.com/site-payroll-api/internal/dto"
	"github.com/site-payroll-api/internal/migrations"
	"github.com/site-payroll-api/internal/repository"
	"github.com/site-payroll-api/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var errNotClosingDay = errors.New("today is not a closing day, use --force to close anyway")

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
	open   func(cfg config.DatabaseConfig) (*gorm.DB, error)

	db       *gorm.DB
	payrolls service.PayrollService
}

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	a := &app{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		open:   database.Connect,
	}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Site payroll maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect()
		},
	}

	root.AddCommand(migrateCmd(a))
	root.AddCommand(generateCmd(a))
	root.AddCommand(closeCmd(a))
	root.AddCommand(closePeriodCmd(a))
	root.AddCommand(listCmd(a))
	return root
}

// connect открывает БД и собирает сервис расчётов
func (a *app) connect() error {
	db, err := a.open(a.cfg.Database)
	if err != nil {
		return err
	}
	a.db = db

	tx := repository.NewTransactor(db)
	a.payrolls = service.NewPayrollService(tx,
		repository.NewPayrollRepository(db),
		repository.NewAdjustmentRepository(db),
		repository.NewEmployeeRepository(db),
		a.logger,
		service.WithWorkers(a.cfg.Payroll.GenerationWorkers),
		service.WithClock(a.now),
	)
	return nil
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			if err := migrations.Up(sqlDB, database.Dialect(a.cfg.Database.Driver)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func generateCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate open payrolls for a period (current period by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				created []domain.MonthlyPayroll
				err     error
			)
			if start == "" {
				created, err = a.payrolls.GenerateCurrentPeriod(cmd.Context())
			} else {
				req := &dto.GeneratePayrollRequest{PeriodStart: start}
				if end != "" {
					req.PeriodEnd = &end
				}
				created, err = a.payrolls.Generate(cmd.Context(), req)
			}

			renderPayrolls(cmd.OutOrStdout(), created)
			return err
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "period start (yyyy-mm-dd)")
	cmd.Flags().StringVar(&end, "end", "", "period end (yyyy-mm-dd), defaults to start + 1 month - 1 day")
	return cmd
}

func closeCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a single payroll",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.payrolls.Close(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderPayrolls(cmd.OutOrStdout(), []domain.MonthlyPayroll{*p})
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "payroll id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func closePeriodCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "close-period",
		Short: "Close every open payroll of the period ending today",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.now()
			if !calendar.IsClosingDay(today) && !force {
				return errNotClosingDay
			}

			closed, err := a.payrolls.CloseOpenForPeriod(cmd.Context(),
				calendar.CurrentPeriodStart(today), calendar.CurrentPeriodEnd(today))
			if err != nil {
				return err
			}
			renderPayrolls(cmd.OutOrStdout(), closed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "close even if today is not the closing day")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var query dto.ListPayrollsQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payrolls",
		RunE: func(cmd *cobra.Command, args []string) error {
			payrolls, err := a.payrolls.List(cmd.Context(), &query)
			if err != nil {
				return err
			}
			renderPayrolls(cmd.OutOrStdout(), payrolls)
			return nil
		},
	}
	cmd.Flags().StringVar(&query.EmployeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&query.PeriodStart, "period-start", "", "period start (yyyy-mm-dd)")
	cmd.Flags().BoolVar(&query.OpenOnly, "open", false, "only open payrolls")
	return cmd
}

func renderPayrolls(w io.Writer, payrolls []domain.MonthlyPayroll) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Employee", "Period", "Base", "Worked", "Total", "Status"})
	for _, p := range payrolls {
		status := "open"
		if !p.IsOpen() {
			status = "closed"
		}
		tw.AppendRow(table.Row{
			p.ID,
			p.EmployeeID,
			calendar.FormatDate(p.PeriodStart) + ".." + calendar.FormatDate(p.PeriodEnd),
			p.BaseWorkdays.String(),
			p.FinalWorkedDays.String(),
			p.TotalPayment.StringFixed(2),
			status,
		})
	}
	tw.Render()
}
