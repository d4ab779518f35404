package repository

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// StageChangeEvent is one append-only audit record. Created exactly once per
// successful transition, never mutated or deleted afterward.
type StageChangeEvent struct {
	ID         uuid.UUID
	Ref        domain.LeadReference
	FromStage  *int
	ToStage    int
	ActorName  string
	OccurredAt time.Time
	Note       *string
}

// AppendHistory inserts one audit record, tagged with whichever of the two
// foreign keys matches the reference kind: newlead_id for the current
// schema, lead_id for the legacy schema.
func (a *Adapter) AppendHistory(ctx context.Context, event StageChangeEvent) error {
	var newleadID *uuid.UUID
	var leadID *int64
	switch event.Ref.Kind {
	case domain.KindCurrent:
		newleadID = &event.Ref.CurrentID
	case domain.KindLegacy:
		leadID = &event.Ref.LegacyID
	default:
		return &domain.UnroutableReferenceError{Raw: event.Ref.String()}
	}

	_, err := a.pool.Exec(ctx, `
		INSERT INTO stage_change_events (newlead_id, lead_id, from_stage, to_stage, actor_name, occurred_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, newleadID, leadID, event.FromStage, event.ToStage, event.ActorName, event.OccurredAt, event.Note)
	return err
}

// ListHistory returns a lead's stage change events, newest first.
func (a *Adapter) ListHistory(ctx context.Context, ref domain.LeadReference) ([]StageChangeEvent, error) {
	query := `
		SELECT id, from_stage, to_stage, actor_name, occurred_at, note
		FROM stage_change_events
		WHERE newlead_id = $1
		ORDER BY occurred_at DESC, id DESC
	`
	var arg any = ref.CurrentID
	if ref.Kind == domain.KindLegacy {
		query = `
			SELECT id, from_stage, to_stage, actor_name, occurred_at, note
			FROM stage_change_events
			WHERE lead_id = $1
			ORDER BY occurred_at DESC, id DESC
		`
		arg = ref.LegacyID
	}

	rows, err := a.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StageChangeEvent, 0)
	for rows.Next() {
		event := StageChangeEvent{Ref: ref}
		if err := rows.Scan(&event.ID, &event.FromStage, &event.ToStage, &event.ActorName, &event.OccurredAt, &event.Note); err != nil {
			return nil, err
		}
		items = append(items, event)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
