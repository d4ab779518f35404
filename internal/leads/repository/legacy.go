package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5"
)

// The legacy store keeps the same logical lifecycle columns under its own
// names and never carries denormalized display text; only id references.

func (a *Adapter) readLegacyState(ctx context.Context, ref domain.LeadReference) (LeadState, error) {
	state := LeadState{Ref: ref}
	var scheduledMeetingAt *time.Time
	err := a.pool.QueryRow(ctx, `
		SELECT stage, stage_changed_by, stage_changed_at, unactivated, scheduled_meeting_at
		FROM legacy_leads WHERE id = $1
	`, ref.LegacyID).Scan(
		&state.StageID, &state.StageChangedBy, &state.StageChangedAt,
		&state.Unactivated, &scheduledMeetingAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadState{}, ErrNotFound
	}
	if err != nil {
		return LeadState{}, err
	}
	state.HasScheduledMeeting = scheduledMeetingAt != nil && scheduledMeetingAt.After(time.Now())
	return state, nil
}

func (a *Adapter) writeLegacyStage(ctx context.Context, ref domain.LeadReference, stageID int, changedBy string, changedAt time.Time, columns []string, values []any) error {
	set := []string{"stage = $1", "stage_changed_by = $2", "stage_changed_at = $3"}
	args := []any{stageID, changedBy, changedAt}
	for i, column := range columns {
		set = append(set, fmt.Sprintf("%s = $%d", column, i+4))
		args = append(args, values[i])
	}
	args = append(args, ref.LegacyID)

	tag, err := a.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE legacy_leads SET %s WHERE id = $%d
	`, strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
