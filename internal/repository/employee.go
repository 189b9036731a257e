package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for a unique constraint breach.
const uniqueViolation = "23505"

const employeeColumns = `id, first_name, last_name, email`

// FindByEmail retrieves the employee owning the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (models.Employee, error) {
	defer r.observe("find_employee_by_email")()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	return employee, nil
}

// FindByID retrieves an employee from the database by their ID.
func (r *Repository) FindByID(ctx context.Context, identifier int64) (models.Employee, error) {
	defer r.observe("find_employee_by_id")()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return employee, nil
}

// FindByName retrieves the employee with the given first and last name.
// When several employees share the name, the one with the lowest ID is returned.
func (r *Repository) FindByName(ctx context.Context, firstName, lastName string) (models.Employee, error) {
	defer r.observe("find_employee_by_name")()

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE first_name = $1 AND last_name = $2
		ORDER BY id
		LIMIT 1;
	`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, firstName, lastName))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by name: %w", err)
	}

	return employee, nil
}

// FindAll returns every employee ordered by ID.
func (r *Repository) FindAll(ctx context.Context) ([]models.Employee, error) {
	defer r.observe("find_all_employees")()

	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		var employee models.Employee
		if err = rows.Scan(&employee.ID, &employee.FirstName, &employee.LastName, &employee.Email); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// Save persists the employee. An employee without ID is inserted and receives the
// generated ID; an employee with ID replaces every column of the existing row.
func (r *Repository) Save(ctx context.Context, employee models.Employee) (models.Employee, error) {
	if employee.ID == 0 {
		return r.insertEmployee(ctx, employee)
	}

	return r.updateEmployee(ctx, employee)
}

func (r *Repository) insertEmployee(ctx context.Context, employee models.Employee) (models.Employee, error) {
	defer r.observe("insert_employee")()

	query := `
		INSERT INTO employees (first_name, last_name, email)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	err := r.db.QueryRow(ctx, query, employee.FirstName, employee.LastName, employee.Email).Scan(&employee.ID)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to save employee: %w", translate(err))
	}

	return employee, nil
}

func (r *Repository) updateEmployee(ctx context.Context, employee models.Employee) (models.Employee, error) {
	defer r.observe("update_employee")()

	query := `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4
		WHERE id = $1
		RETURNING ` + employeeColumns + `;
	`

	updated, err := scanEmployee(r.db.QueryRow(ctx, query,
		employee.ID, employee.FirstName, employee.LastName, employee.Email))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to update employee data: %w", err)
	}

	return updated, nil
}

// DeleteByID removes the employee with the given ID. Deleting a missing employee is not an error.
func (r *Repository) DeleteByID(ctx context.Context, identifier int64) error {
	defer r.observe("delete_employee")()

	query := `DELETE FROM employees WHERE id = $1`

	_, err := r.db.Exec(ctx, query, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	return nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var result models.Employee

	err := row.Scan(&result.ID, &result.FirstName, &result.LastName, &result.Email)
	if err != nil {
		return models.Employee{}, translate(err)
	}

	return result, nil
}

// translate maps driver errors onto the repository sentinels, keeping the driver error in the chain.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrEmployeeNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
	}

	return err
}
