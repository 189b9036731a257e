package employees_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamathecxder/randomail"
)

// memoryRepo is an in-memory EmployeeRepoIface with the same unique email rule as the table.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Employee
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]models.Employee)}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.Email == email {
			return row, nil
		}
	}

	return models.Employee{}, repository.ErrEmployeeNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, identifier int64) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[identifier]
	if !ok {
		return models.Employee{}, repository.ErrEmployeeNotFound
	}

	return row, nil
}

func (m *memoryRepo) FindByName(_ context.Context, firstName, lastName string) (models.Employee, error) {
	all, _ := m.FindAll(context.Background())
	for _, row := range all {
		if row.FirstName == firstName && row.LastName == lastName {
			return row, nil
		}
	}

	return models.Employee{}, repository.ErrEmployeeNotFound
}

func (m *memoryRepo) FindAll(_ context.Context) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]models.Employee, 0, len(m.rows))
	for _, row := range m.rows {
		all = append(all, row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return all, nil
}

func (m *memoryRepo) Save(_ context.Context, employee models.Employee) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.Email == employee.Email && row.ID != employee.ID {
			return models.Employee{}, repository.ErrDuplicateEmail
		}
	}

	if employee.ID == 0 {
		m.nextID++
		employee.ID = m.nextID
	} else if _, ok := m.rows[employee.ID]; !ok {
		return models.Employee{}, repository.ErrEmployeeNotFound
	}

	m.rows[employee.ID] = employee

	return employee, nil
}

func (m *memoryRepo) DeleteByID(_ context.Context, identifier int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, identifier)

	return nil
}

func newLifecycleStaff() (*employees.Staff, *memoryRepo) {
	repo := newMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return employees.NewStaff(logger, repo, metrics.NewMetrics(prometheus.NewRegistry())), repo
}

func freshEmployee() models.Employee {
	return models.Employee{FirstName: "Vinod", LastName: "Chattergee", Email: randomail.GenerateRandomEmail()}
}

func TestLifecycle_CreateThenGet(t *testing.T) {
	t.Parallel()
	staff, _ := newLifecycleStaff()
	ctx := t.Context()

	employee := freshEmployee()
	created, err := staff.Create(ctx, employee)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	stored, ok, err := staff.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	employee.ID = created.ID
	assert.Equal(t, employee, stored)
}

func TestLifecycle_DuplicateEmailInsertsNothing(t *testing.T) {
	t.Parallel()
	staff, _ := newLifecycleStaff()
	ctx := t.Context()

	first := freshEmployee()
	_, err := staff.Create(ctx, first)
	require.NoError(t, err)

	second := models.Employee{FirstName: "Gautham", LastName: "Vinod", Email: first.Email}
	_, err = staff.Create(ctx, second)
	require.ErrorIs(t, err, employees.ErrDuplicateEmail)

	all, err := staff.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLifecycle_ListAllCountsEveryCreate(t *testing.T) {
	t.Parallel()
	staff, _ := newLifecycleStaff()
	ctx := t.Context()

	all, err := staff.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	const total = 5
	seen := make(map[string]struct{}, total)
	for len(seen) < total {
		employee := freshEmployee()
		if _, dup := seen[employee.Email]; dup {
			continue
		}
		seen[employee.Email] = struct{}{}
		_, err = staff.Create(ctx, employee)
		require.NoError(t, err)
	}

	all, err = staff.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, total)
}

func TestLifecycle_UnknownIDIsAbsent(t *testing.T) {
	t.Parallel()
	staff, _ := newLifecycleStaff()

	_, ok, err := staff.GetByID(t.Context(), 12345)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLifecycle_UpdateReplacesFields(t *testing.T) {
	t.Parallel()
	staff, _ := newLifecycleStaff()
	ctx := t.Context()

	created, err := staff.Create(ctx, freshEmployee())
	require.NoError(t, err)

	changed := created
	changed.FirstName = "Vinny"
	_, err = staff.Update(ctx, changed)
	require.NoError(t, err)

	stored, ok, err := staff.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, changed, stored)

	ghost := changed
	ghost.ID = created.ID + 100
	_, err = staff.Update(ctx, ghost)
	require.ErrorIs(t, err, employees.ErrEmployeeNotFound)
}

func TestLifecycle_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	staff, _ := newLifecycleStaff()
	ctx := t.Context()

	created, err := staff.Create(ctx, freshEmployee())
	require.NoError(t, err)

	require.NoError(t, staff.DeleteByID(ctx, created.ID))

	_, ok, err := staff.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, staff.DeleteByID(ctx, created.ID))
}
