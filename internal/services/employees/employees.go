package employees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
)

var (
	// ErrDuplicateEmail is matched by every DuplicateEmailError.
	ErrDuplicateEmail = errors.New("employee email already exists")
	// ErrEmployeeNotFound is returned by Update when the employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrInvalidEmail is returned by ValidateEmployee for a malformed email.
	ErrInvalidEmail = errors.New("invalid employee email")
)

// DuplicateEmailError reports the email that is already owned by another employee.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return "the employee with the given email already exists: " + e.Email
}

func (e *DuplicateEmailError) Unwrap() error {
	return ErrDuplicateEmail
}

type Staff struct {
	log     *slog.Logger
	repo    repository.EmployeeRepoIface
	metrics *metrics.Metrics
}

func NewStaff(log *slog.Logger, repo repository.EmployeeRepoIface, metrics *metrics.Metrics) *Staff {
	return &Staff{log: log, repo: repo, metrics: metrics}
}

func (s *Staff) initLogger(opn string) *slog.Logger {
	return s.log.With(
		sl.Op(opn),
		slog.String("division", "employee"),
	)
}

// Create stores a new employee after checking that nobody owns its email yet.
// Any ID carried by the employee is ignored; the store assigns a new one.
func (s *Staff) Create(ctx context.Context, employee models.Employee) (models.Employee, error) {
	const opn = "Employee.Create"
	log := s.initLogger(opn)

	_, err := s.repo.FindByEmail(ctx, employee.Email)
	switch {
	case err == nil:
		return models.Employee{}, s.duplicate(ctx, log, employee.Email)
	case !errors.Is(err, repository.ErrEmployeeNotFound):
		return models.Employee{}, fmt.Errorf("failed to check employee email: %w", err)
	}

	employee.ID = 0
	saved, err := s.repo.Save(ctx, employee)
	if err != nil {
		// the unique constraint catches a concurrent create that passed the check above
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.Employee{}, s.duplicate(ctx, log, employee.Email)
		}
		return models.Employee{}, fmt.Errorf("failed to save new employee %s: %w", employee.Email, err)
	}

	s.metrics.EmployeesCreated.Inc()
	log.DebugContext(ctx, "employee created", "id", saved.ID)

	return saved, nil
}

// ListAll returns every stored employee. An empty store yields an empty slice.
func (s *Staff) ListAll(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	if employees == nil {
		employees = []models.Employee{}
	}

	return employees, nil
}

// GetByID returns the employee with the given ID. The boolean is false when no such
// employee exists; the error is reserved for storage failures.
func (s *Staff) GetByID(ctx context.Context, identifier int64) (models.Employee, bool, error) {
	return found(s.repo.FindByID(ctx, identifier))
}

// FindByName returns the employee with the given first and last name, with the same
// absence convention as GetByID.
func (s *Staff) FindByName(ctx context.Context, firstName, lastName string) (models.Employee, bool, error) {
	return found(s.repo.FindByName(ctx, firstName, lastName))
}

// Update replaces every field of the stored employee identified by employee.ID.
// It fails with ErrEmployeeNotFound when the employee does not exist.
func (s *Staff) Update(ctx context.Context, employee models.Employee) (models.Employee, error) {
	const opn = "Employee.Update"
	log := s.initLogger(opn)

	if employee.ID <= 0 {
		return models.Employee{}, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, employee.ID)
	}

	saved, err := s.repo.Save(ctx, employee)
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		return models.Employee{}, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, employee.ID)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return models.Employee{}, s.duplicate(ctx, log, employee.Email)
	case err != nil:
		return models.Employee{}, fmt.Errorf("failed to update employee: '%d': %w", employee.ID, err)
	}

	log.DebugContext(ctx, "employee updated", "id", saved.ID)

	return saved, nil
}

// DeleteByID removes the employee with the given ID. Removing an absent employee succeeds.
func (s *Staff) DeleteByID(ctx context.Context, identifier int64) error {
	if err := s.repo.DeleteByID(ctx, identifier); err != nil {
		return fmt.Errorf("failed to delete employee '%d': %w", identifier, err)
	}

	s.metrics.EmployeesDeleted.Inc()

	return nil
}

func (s *Staff) duplicate(ctx context.Context, log *slog.Logger, email string) error {
	s.metrics.DuplicateEmails.Inc()
	log.InfoContext(ctx, "employee email is already taken", "email", email)

	return &DuplicateEmailError{Email: email}
}

func found(employee models.Employee, err error) (models.Employee, bool, error) {
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return models.Employee{}, false, nil
		}
		return models.Employee{}, false, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee, true, nil
}

// ValidateEmployee checks that the employee carries a bare, well-formed email address.
func ValidateEmployee(employee models.Employee) error {
	if !isValidEmail(employee.Email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, employee.Email)
	}

	return nil
}

// isValidEmail checks if the given email address is valid.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
