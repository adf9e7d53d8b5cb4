package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/site-payroll-api/internal/config"
	"github.com/site-payroll-api/internal/database"
	"github.com/site-payroll-api/internal/handler"
	"github.com/site-payroll-api/internal/migrations"
	"github.com/site-payroll-api/internal/repository"
	"github.com/site-payroll-api/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Подключение к БД
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Запуск миграций
	if err := migrations.Up(sqlDB, database.Dialect(cfg.Database.Driver)); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация репозиториев
	tx := repository.NewTransactor(db)
	empRepo := repository.NewEmployeeRepository(db)
	adjRepo := repository.NewAdjustmentRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)

	// Инициализация сервисов
	empService := service.NewEmployeeService(empRepo)
	payrollService := service.NewPayrollService(tx, payrollRepo, adjRepo, empRepo, logger,
		service.WithWorkers(cfg.Payroll.GenerationWorkers),
	)
	adjService := service.NewAdjustmentService(tx, adjRepo, empRepo, payrollService)

	// Настройка роутера
	router := handler.NewRouter(
		handler.NewEmployeeHandler(empService, logger),
		handler.NewAdjustmentHandler(adjService, logger),
		handler.NewPayrollHandler(payrollService, logger),
		logger,
	)

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting",
		slog.String("port", cfg.Server.Port),
		slog.String("db_driver", cfg.Database.Driver),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}
