// Package stages provides the stage catalog bounded context module.
// The catalog is loaded once at module construction and shared, immutable,
// with every consumer for the rest of the session.
package stages

import (
	"context"

	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/stages/domain"
	"leadflow_backend/internal/stages/handler"
	"leadflow_backend/internal/stages/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the stages bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	resolver *domain.Resolver
}

// NewModule loads the stage catalog and wires the resolver.
func NewModule(ctx context.Context, pool *pgxpool.Pool) (*Module, error) {
	repo := repository.New(pool)

	catalog, err := repo.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	resolver := domain.NewResolver(catalog)

	return &Module{
		handler:  handler.New(resolver),
		resolver: resolver,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "stages"
}

// Resolver returns the shared stage resolver for other modules.
func (m *Module) Resolver() *domain.Resolver {
	return m.resolver
}

// RegisterRoutes mounts stages routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	stagesGroup := ctx.Protected.Group("/stages")
	m.handler.RegisterRoutes(stagesGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
