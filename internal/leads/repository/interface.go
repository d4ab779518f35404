package repository

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// Consumer-driven interfaces. The service layer depends on these, not on
// the concrete Adapter, so tests can substitute fakes and fault injectors.

// LeadStore is the uniform read/write surface over both lead schemas.
type LeadStore interface {
	ReadState(ctx context.Context, ref domain.LeadReference) (LeadState, error)
	WriteStage(ctx context.Context, ref domain.LeadReference, stageID int, changedBy string, changedAt time.Time, fields map[string]any) error
	SetUnactivated(ctx context.Context, ref domain.LeadReference, unactivated bool) error
}

// HistoryStore is the append-only audit log surface.
type HistoryStore interface {
	AppendHistory(ctx context.Context, event StageChangeEvent) error
	ListHistory(ctx context.Context, ref domain.LeadReference) ([]StageChangeEvent, error)
}

// LeadCreator creates current-schema leads (intake).
type LeadCreator interface {
	CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error)
}

var (
	_ LeadStore    = (*Adapter)(nil)
	_ HistoryStore = (*Adapter)(nil)
	_ LeadCreator  = (*Adapter)(nil)
)
