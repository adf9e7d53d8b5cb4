package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/site-payroll-api/internal/middleware"
)

// Router настраивает маршруты API
type Router struct {
	logger         *slog.Logger
	empHandler     *EmployeeHandler
	adjHandler     *AdjustmentHandler
	payrollHandler *PayrollHandler
}

// NewRouter создаёт новый роутер
func NewRouter(
	empHandler *EmployeeHandler,
	adjHandler *AdjustmentHandler,
	payrollHandler *PayrollHandler,
	logger *slog.Logger,
) *Router {
	return &Router{
		logger:         logger,
		empHandler:     empHandler,
		adjHandler:     adjHandler,
		payrollHandler: payrollHandler,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	mux := chi.NewRouter()

	// Применяем middleware
	mux.Use(chimiddleware.RequestID)
	mux.Use(middleware.Recoverer(r.logger))
	mux.Use(middleware.Logger(r.logger))
	mux.Use(chimiddleware.CleanPath)
	mux.Use(middleware.ContentType)

	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	})

	// Health check
	mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Route("/employees", func(cr chi.Router) {
		cr.Post("/", r.empHandler.Create)
		cr.Get("/", r.empHandler.List)
		cr.Get("/{id}", r.empHandler.GetByID)
	})

	mux.Route("/adjustments", func(cr chi.Router) {
		cr.Post("/", r.adjHandler.Create)
		cr.Get("/", r.adjHandler.List)
		cr.Delete("/{id}", r.adjHandler.Delete)
	})

	mux.Route("/payrolls", func(cr chi.Router) {
		cr.Post("/generate", r.payrollHandler.Generate)
		cr.Get("/", r.payrollHandler.List)
		cr.Get("/{id}", r.payrollHandler.GetByID)
		cr.Post("/{id}/close", r.payrollHandler.Close)
	})

	return mux
}
