// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new current-schema lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ConsumerName  string    `json:"consumerName"`
	ConsumerPhone string    `json:"consumerPhone"`
	Source        string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published after a stage transition has been applied to
// the backing row. AuditRecorded reports whether the history insert succeeded.
type LeadStageChanged struct {
	BaseEvent
	LeadRef       string `json:"leadRef"`
	FromStage     *int   `json:"fromStage,omitempty"`
	ToStage       int    `json:"toStage"`
	ActorName     string `json:"actorName"`
	AuditRecorded bool   `json:"auditRecorded"`
}

func (e LeadStageChanged) EventName() string { return "leads.stage.changed" }

// LeadReactivated is published when a lead's unactivated flag is cleared.
type LeadReactivated struct {
	BaseEvent
	LeadRef   string `json:"leadRef"`
	ActorName string `json:"actorName"`
}

func (e LeadReactivated) EventName() string { return "leads.lead.reactivated" }
