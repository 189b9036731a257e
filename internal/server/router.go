package server

import (
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/gorilla/mux"
)

// NewRouter builds the employee API: /api/employees and /api/employees/{id}.
func NewRouter(log *slog.Logger, staff EmployeeService, appMetrics *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()

	// Recovery is innermost so logging and metrics see the 500 it writes.
	router.Use(MetricsMiddleware(appMetrics))
	router.Use(LoggingMiddleware(log))
	router.Use(RecoveryMiddleware(log))

	handler := NewEmployeeHandler(log, staff)

	router.HandleFunc("/api/employees", handler.Create).Methods(http.MethodPost)
	router.HandleFunc("/api/employees", handler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/employees/lookup", handler.Lookup).Methods(http.MethodGet)
	router.HandleFunc("/api/employees/{id}", handler.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/employees/{id}", handler.Update).Methods(http.MethodPut)
	router.HandleFunc("/api/employees/{id}", handler.Delete).Methods(http.MethodDelete)

	return router
}
