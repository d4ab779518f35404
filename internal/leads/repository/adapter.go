// Package repository implements the dual-schema lead adapter: one uniform
// read/write surface over the current and legacy lead stores, routed solely
// by the LeadReference kind.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// Adapter routes every read and write to the schema named by the lead
// reference and translates logical field names into the physical columns of
// that schema.
type Adapter struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{pool: pool}
}

// LeadState is the schema-agnostic view of a lead's lifecycle position.
type LeadState struct {
	Ref                 domain.LeadReference
	StageID             int
	StageChangedBy      *string
	StageChangedAt      *time.Time
	Unactivated         bool
	HasScheduledMeeting bool
}

// fieldColumns maps a logical field name to its physical column per schema.
// An empty column means the schema has no home for the field: the legacy
// schema stores only id references, so display-name fields are dropped
// there, while the current schema keeps both the id and the denormalized
// text in sync.
type fieldColumns struct {
	current string
	legacy  string
}

var logicalFields = map[string]fieldColumns{
	"handler_display_name":     {current: "handler", legacy: ""},
	"handler_id":               {current: "handler_id", legacy: "case_handler_id"},
	"category_name":            {current: "category", legacy: ""},
	"category_id":              {current: "category_id", legacy: "category_id"},
	"communication_started_at": {current: "communication_started_at", legacy: "communication_started_at"},
	"scheduled_meeting_at":     {current: "scheduled_meeting_at", legacy: "scheduled_meeting_at"},
}

// translateFields maps logical field names to (column, value) pairs for the
// given schema. Unknown logical names fail fast, before any write; fields
// the target schema cannot represent are dropped silently.
func translateFields(kind domain.Kind, fields map[string]any) (columns []string, values []any, err error) {
	for name, value := range fields {
		cols, ok := logicalFields[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown lead field %q", name)
		}
		column := cols.current
		if kind == domain.KindLegacy {
			column = cols.legacy
		}
		if column == "" {
			continue
		}
		columns = append(columns, column)
		values = append(values, value)
	}
	return columns, values, nil
}

// ReadState reads the lead's lifecycle state from whichever schema backs it.
func (a *Adapter) ReadState(ctx context.Context, ref domain.LeadReference) (LeadState, error) {
	switch ref.Kind {
	case domain.KindCurrent:
		return a.readCurrentState(ctx, ref)
	case domain.KindLegacy:
		return a.readLegacyState(ctx, ref)
	default:
		return LeadState{}, &domain.UnroutableReferenceError{Raw: ref.String()}
	}
}

// WriteStage issues the single stage update: the stage column plus
// stage_changed_by/stage_changed_at plus any caller-supplied extra fields,
// translated for the target schema.
func (a *Adapter) WriteStage(ctx context.Context, ref domain.LeadReference, stageID int, changedBy string, changedAt time.Time, fields map[string]any) error {
	columns, values, err := translateFields(ref.Kind, fields)
	if err != nil {
		return err
	}

	switch ref.Kind {
	case domain.KindCurrent:
		return a.writeCurrentStage(ctx, ref, stageID, changedBy, changedAt, columns, values)
	case domain.KindLegacy:
		return a.writeLegacyStage(ctx, ref, stageID, changedBy, changedAt, columns, values)
	default:
		return &domain.UnroutableReferenceError{Raw: ref.String()}
	}
}

// SetUnactivated flips the unactivated flag in the backing schema.
func (a *Adapter) SetUnactivated(ctx context.Context, ref domain.LeadReference, unactivated bool) error {
	switch ref.Kind {
	case domain.KindCurrent:
		tag, err := a.pool.Exec(ctx, `
			UPDATE leads SET unactivated = $1, updated_at = now() WHERE id = $2
		`, unactivated, ref.CurrentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	case domain.KindLegacy:
		tag, err := a.pool.Exec(ctx, `
			UPDATE legacy_leads SET unactivated = $1 WHERE id = $2
		`, unactivated, ref.LegacyID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	default:
		return &domain.UnroutableReferenceError{Raw: ref.String()}
	}
}
