package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Lead is a current-schema lead row.
type Lead struct {
	ID                     uuid.UUID
	FullName               string
	Phone                  string
	Email                  *string
	StageID                int
	StageChangedBy         *string
	StageChangedAt         *time.Time
	Handler                *string
	HandlerID              *int64
	Category               *string
	CategoryID             *int64
	CommunicationStartedAt *time.Time
	ScheduledMeetingAt     *time.Time
	Unactivated            bool
	Source                 *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type CreateLeadParams struct {
	FullName string
	Phone    string
	Email    *string
	StageID  int
	Source   *string
}

// CreateLead inserts a current-schema lead. Legacy leads are never created
// by this service; they exist only as migrated data.
func (a *Adapter) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var lead Lead
	err := a.pool.QueryRow(ctx, `
		INSERT INTO leads (full_name, phone, email, stage, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, full_name, phone, email, stage, stage_changed_by, stage_changed_at,
			handler, handler_id, category, category_id, communication_started_at,
			scheduled_meeting_at, unactivated, source, created_at, updated_at
	`, params.FullName, params.Phone, params.Email, params.StageID, params.Source).Scan(
		&lead.ID, &lead.FullName, &lead.Phone, &lead.Email, &lead.StageID,
		&lead.StageChangedBy, &lead.StageChangedAt, &lead.Handler, &lead.HandlerID,
		&lead.Category, &lead.CategoryID, &lead.CommunicationStartedAt,
		&lead.ScheduledMeetingAt, &lead.Unactivated, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (a *Adapter) readCurrentState(ctx context.Context, ref domain.LeadReference) (LeadState, error) {
	state := LeadState{Ref: ref}
	var scheduledMeetingAt *time.Time
	err := a.pool.QueryRow(ctx, `
		SELECT stage, stage_changed_by, stage_changed_at, unactivated, scheduled_meeting_at
		FROM leads WHERE id = $1
	`, ref.CurrentID).Scan(
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

func (a *Adapter) writeCurrentStage(ctx context.Context, ref domain.LeadReference, stageID int, changedBy string, changedAt time.Time, columns []string, values []any) error {
	set := []string{"stage = $1", "stage_changed_by = $2", "stage_changed_at = $3", "updated_at = now()"}
	args := []any{stageID, changedBy, changedAt}
	for i, column := range columns {
		set = append(set, fmt.Sprintf("%s = $%d", column, i+4))
		args = append(args, values[i])
	}
	args = append(args, ref.CurrentID)

	tag, err := a.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE leads SET %s WHERE id = $%d
	`, strings.Join(set, ", "), len(args)), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
