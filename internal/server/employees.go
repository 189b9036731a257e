package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	"github.com/gorilla/mux"
)

// EmployeeService is the behaviour the HTTP layer needs from the employee service.
type EmployeeService interface {
	Create(ctx context.Context, employee models.Employee) (models.Employee, error)
	ListAll(ctx context.Context) ([]models.Employee, error)
	GetByID(ctx context.Context, identifier int64) (models.Employee, bool, error)
	FindByName(ctx context.Context, firstName, lastName string) (models.Employee, bool, error)
	Update(ctx context.Context, employee models.Employee) (models.Employee, error)
	DeleteByID(ctx context.Context, identifier int64) error
}

type EmployeeHandler struct {
	log   *slog.Logger
	staff EmployeeService
}

func NewEmployeeHandler(log *slog.Logger, staff EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{log: log, staff: staff}
}

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	employee, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}

	created, err := h.staff.Create(r.Context(), employee)
	if err != nil {
		h.writeServiceError(w, r, "failed to create employee", err)
		return
	}

	writeJSON(w, h.log, http.StatusCreated, created)
}

// List handles GET /api/employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.staff.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "failed to list employees", err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, list)
}

// Get handles GET /api/employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	identifier, ok := h.parseID(w, r)
	if !ok {
		return
	}

	employee, found, err := h.staff.GetByID(r.Context(), identifier)
	if err != nil {
		h.writeServiceError(w, r, "failed to get employee", err)
		return
	}
	if !found {
		writeError(w, h.log, http.StatusNotFound, "employee not found")
		return
	}

	writeJSON(w, h.log, http.StatusOK, employee)
}

// Lookup handles GET /api/employees/lookup?firstName=&lastName=.
func (h *EmployeeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	firstName := r.URL.Query().Get("firstName")
	lastName := r.URL.Query().Get("lastName")
	if firstName == "" || lastName == "" {
		writeError(w, h.log, http.StatusBadRequest, "firstName and lastName are required")
		return
	}

	employee, found, err := h.staff.FindByName(r.Context(), firstName, lastName)
	if err != nil {
		h.writeServiceError(w, r, "failed to look up employee", err)
		return
	}
	if !found {
		writeError(w, h.log, http.StatusNotFound, "employee not found")
		return
	}

	writeJSON(w, h.log, http.StatusOK, employee)
}

// Update handles PUT /api/employees/{id}. The body replaces every field of the employee.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	identifier, ok := h.parseID(w, r)
	if !ok {
		return
	}

	employee, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}
	employee.ID = identifier

	updated, err := h.staff.Update(r.Context(), employee)
	if err != nil {
		h.writeServiceError(w, r, "failed to update employee", err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, updated)
}

// Delete handles DELETE /api/employees/{id}. Deleting an absent employee still answers 200.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identifier, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.staff.DeleteByID(r.Context(), identifier); err != nil {
		h.writeServiceError(w, r, "failed to delete employee", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *EmployeeHandler) decodeEmployee(w http.ResponseWriter, r *http.Request) (models.Employee, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var employee models.Employee
	if err := dec.Decode(&employee); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.log, http.StatusRequestEntityTooLarge, "request body too large")
			return models.Employee{}, false
		}

		writeError(w, h.log, http.StatusBadRequest, "invalid request body")
		return models.Employee{}, false
	}

	// The body must hold exactly one JSON object.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body")
		return models.Employee{}, false
	}

	if err := employees.ValidateEmployee(employee); err != nil {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return models.Employee{}, false
	}

	return employee, true
}

func (h *EmployeeHandler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, employees.ErrDuplicateEmail):
		writeError(w, h.log, http.StatusConflict, err.Error())
	case errors.Is(err, employees.ErrEmployeeNotFound):
		writeError(w, h.log, http.StatusNotFound, "employee not found")
	default:
		h.log.ErrorContext(r.Context(), msg, sl.Err(err))
		writeError(w, h.log, http.StatusInternalServerError, msg)
	}
}

func (h *EmployeeHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	identifier, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid employee id")
		return 0, false
	}

	return identifier, true
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", slog.Int("status", status), sl.Err(err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, errorResponse{Error: msg})
}
