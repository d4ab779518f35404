// Package repository provides employee lookups for actor resolution.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("employee not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Employee struct {
	ID        int64
	UserID    *uuid.UUID
	FullName  string
	Email     *string
	CreatedAt time.Time
}

// GetByUserID returns the employee row linked to an auth user.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (Employee, error) {
	var employee Employee
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, full_name, email, created_at
		FROM employees WHERE user_id = $1
	`, userID).Scan(
		&employee.ID, &employee.UserID, &employee.FullName, &employee.Email, &employee.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return employee, err
}
