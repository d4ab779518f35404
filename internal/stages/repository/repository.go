// Package repository loads the stage catalog from the backing store.
package repository

import (
	"context"

	"leadflow_backend/internal/stages/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadCatalog reads all stage rows ordered by id. Called once at startup;
// the resulting catalog is treated as immutable for the session.
func (r *Repository) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, colour
		FROM lead_stages
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]domain.Stage, 0)
	for rows.Next() {
		var stage domain.Stage
		if err := rows.Scan(&stage.ID, &stage.Name, &stage.Colour); err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return domain.NewCatalog(stages), nil
}
