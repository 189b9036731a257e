package repository

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
)

var (
	// ErrEmployeeNotFound is returned when no row matches the lookup.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrDuplicateEmail is returned when a write violates the unique email constraint.
	ErrDuplicateEmail = errors.New("employee email already exists")
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// EmployeeRepoIface represents the interface for interacting with employee data in the repository.
type EmployeeRepoIface interface {
	FindByEmail(ctx context.Context, email string) (models.Employee, error)
	FindByID(ctx context.Context, identifier int64) (models.Employee, error)
	FindByName(ctx context.Context, firstName, lastName string) (models.Employee, error)
	FindAll(ctx context.Context) ([]models.Employee, error)
	Save(ctx context.Context, employee models.Employee) (models.Employee, error)
	DeleteByID(ctx context.Context, identifier int64) error
}

func NewEmployeeRepository(db Database, metrics *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// observe starts timing a query and returns the func recording its duration.
func (r *Repository) observe(queryType string) func() {
	startTime := time.Now()

	return func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(duration)
	}
}
