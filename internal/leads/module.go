// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route
// registration.
package leads

import (
	"context"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	identityservice "leadflow_backend/internal/identity/service"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"
	stages "leadflow_backend/internal/stages/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	resolver *stages.Resolver,
	actors *identityservice.Service,
	redisClient *redis.Client,
	eventBus events.Bus,
	val *validator.Validator,
	cfg *config.Config,
	log *logger.Logger,
) *Module {
	adapter := repository.New(pool)

	var guard service.TransitionGuard = service.NoopGuard{}
	if redisClient != nil {
		guard = service.NewRedisGuard(redisClient, cfg.GetTransitionGuardTTL())
	}

	svc := service.New(adapter, adapter, adapter, resolver, actors, guard, eventBus, log, cfg.GetWriteTimeout())

	// Audit-trail visibility: every applied transition is logged even when
	// no other module subscribes.
	eventBus.Subscribe(events.LeadStageChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadStageChanged)
		if !ok {
			return nil
		}
		if !e.AuditRecorded {
			log.Warn("stage change applied without audit record", "leadRef", e.LeadRef, "toStage", e.ToStage)
		}
		return nil
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lifecycle service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
