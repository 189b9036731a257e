//go:build integration

package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/server"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamathecxder/randomail"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const migrationsDir = "../../migrations"

// startPostgres runs a disposable PostgreSQL, applies the migrations and returns a pool on it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("athena"),
		postgres.WithUsername("athena"),
		postgres.WithPassword("athena"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if termErr := ctr.Terminate(context.Background()); termErr != nil {
			t.Logf("failed to terminate container: %v", termErr)
		}
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := repository.NewDatabase(ctx, config.PostgresConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "athena",
		Password: "athena",
		Dbname:   "athena",
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(stdlib.OpenDBFromPool(pool), migrationsDir))

	return pool
}

func TestIntegration_EmployeeLifecycle(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	repo := repository.NewEmployeeRepository(pool, appMetrics)
	staff := employees.NewStaff(logger, repo, appMetrics)
	router := server.NewRouter(logger, staff, appMetrics)

	t.Run("api round trip", func(t *testing.T) {
		payload := models.Employee{FirstName: "Vinod", LastName: "Chattergee", Email: "vinod@example.com"}

		rr := doRequest(t, router, http.MethodPost, "/api/employees", payload)
		require.Equal(t, http.StatusCreated, rr.Code)

		var created models.Employee
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		require.NotZero(t, created.ID)
		assert.Equal(t, payload.Email, created.Email)

		rr = doRequest(t, router, http.MethodPost, "/api/employees", payload)
		require.Equal(t, http.StatusConflict, rr.Code)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1, "duplicate create must not insert a row")

		target := "/api/employees/" + strconv.FormatInt(created.ID, 10)
		rr = doRequest(t, router, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"firstName":"Vinod"`)

		rr = doRequest(t, router, http.MethodDelete, target, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = doRequest(t, router, http.MethodGet, target, nil)
		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("service properties", func(t *testing.T) {
		_, err := pool.Exec(ctx, "TRUNCATE employees")
		require.NoError(t, err)

		all, err := staff.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		first, err := staff.Create(ctx, models.Employee{
			FirstName: "Gautham", LastName: "Vinod", Email: randomail.GenerateRandomEmail(),
		})
		require.NoError(t, err)

		changed := first
		changed.FirstName = "Gauth"
		_, err = staff.Update(ctx, changed)
		require.NoError(t, err)

		stored, ok, err := staff.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, changed, stored)

		byName, ok, err := staff.FindByName(ctx, "Gauth", "Vinod")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, first.ID, byName.ID)

		ghost := changed
		ghost.ID = first.ID + 1000
		_, err = staff.Update(ctx, ghost)
		require.ErrorIs(t, err, employees.ErrEmployeeNotFound)

		require.NoError(t, staff.DeleteByID(ctx, ghost.ID))
	})

	t.Run("unique constraint backs the email check", func(t *testing.T) {
		email := randomail.GenerateRandomEmail()
		_, err := repo.Save(ctx, models.Employee{FirstName: "A", LastName: "B", Email: email})
		require.NoError(t, err)

		_, err = repo.Save(ctx, models.Employee{FirstName: "C", LastName: "D", Email: email})
		require.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})
}
