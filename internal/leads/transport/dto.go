package transport

import (
	"encoding/json"
	"strconv"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// StageValue accepts a stage target as either a JSON string or a JSON
// number, since callers address stages by name, alias, or raw numeric id.
type StageValue string

func (v *StageValue) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*v = StageValue(asString)
		return nil
	}
	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*v = StageValue(strconv.Itoa(int(asNumber)))
	return nil
}

func (v StageValue) String() string { return string(v) }

// Request DTOs

type TransitionRequest struct {
	Target StageValue     `json:"target" validate:"required"`
	Note   *string        `json:"note,omitempty" validate:"omitempty,max=400"`
	Fields map[string]any `json:"fields,omitempty" validate:"-"`
}

type CreateLeadRequest struct {
	FullName string  `json:"fullName" validate:"required,min=1,max=200"`
	Phone    string  `json:"phone" validate:"required,min=5,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Source   *string `json:"source,omitempty" validate:"omitempty,max=100"`
}

// Response DTOs

// LeadSnapshot is the schema-agnostic view returned after reads and
// transitions. AuditRecorded is false when the stage write applied but the
// history insert failed (the documented non-fatal policy).
type LeadSnapshot struct {
	Ref                 string     `json:"ref"`
	StageID             int        `json:"stageId"`
	StageName           string     `json:"stageName,omitempty"`
	StageKey            string     `json:"stageKey,omitempty"`
	StageChangedBy      *string    `json:"stageChangedBy,omitempty"`
	StageChangedAt      *time.Time `json:"stageChangedAt,omitempty"`
	Unactivated         bool       `json:"unactivated"`
	HasScheduledMeeting bool       `json:"hasScheduledMeeting"`
	AuditRecorded       bool       `json:"auditRecorded"`
}

// ActionMenuResponse is the derived action menu for a lead's current stage.
type ActionMenuResponse struct {
	Ref     string                   `json:"ref"`
	StageID int                      `json:"stageId"`
	Kind    string                   `json:"kind"`
	Actions []domain.ActionMenuEntry `json:"actions"`
}

// HistoryEventResponse is one audit record with stage names resolved.
type HistoryEventResponse struct {
	ID            string    `json:"id"`
	FromStage     *int      `json:"fromStage,omitempty"`
	FromStageName *string   `json:"fromStageName,omitempty"`
	ToStage       int       `json:"toStage"`
	ToStageName   string    `json:"toStageName,omitempty"`
	ActorName     string    `json:"actorName"`
	OccurredAt    time.Time `json:"occurredAt"`
	Note          *string   `json:"note,omitempty"`
}
