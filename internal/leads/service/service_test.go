package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/internal/identity"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	stages "leadflow_backend/internal/stages/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// fakes

type fakeStore struct {
	state         repository.LeadState
	readErr       error
	writeErr      error
	writtenStage  int
	writtenBy     string
	writtenFields map[string]any
	writeCalls    int
}

func (f *fakeStore) ReadState(ctx context.Context, ref domain.LeadReference) (repository.LeadState, error) {
	if f.readErr != nil {
		return repository.LeadState{}, f.readErr
	}
	return f.state, nil
}

func (f *fakeStore) WriteStage(ctx context.Context, ref domain.LeadReference, stageID int, changedBy string, changedAt time.Time, fields map[string]any) error {
	f.writeCalls++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writtenStage = stageID
	f.writtenBy = changedBy
	f.writtenFields = fields
	return nil
}

func (f *fakeStore) SetUnactivated(ctx context.Context, ref domain.LeadReference, unactivated bool) error {
	f.state.Unactivated = unactivated
	return nil
}

type fakeHistory struct {
	appendErr error
	appended  []repository.StageChangeEvent
	listed    []repository.StageChangeEvent
}

func (f *fakeHistory) AppendHistory(ctx context.Context, event repository.StageChangeEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, event)
	return nil
}

func (f *fakeHistory) ListHistory(ctx context.Context, ref domain.LeadReference) ([]repository.StageChangeEvent, error) {
	return f.listed, nil
}

type fakeCreator struct {
	created repository.CreateLeadParams
	lead    repository.Lead
}

func (f *fakeCreator) CreateLead(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.created = params
	return f.lead, nil
}

type fakeActors struct {
	actor identity.Actor
	err   error
}

func (f *fakeActors) FetchActor(ctx context.Context, id httpkit.Identity) (identity.Actor, error) {
	return f.actor, f.err
}

type denyGuard struct{}

func (denyGuard) Acquire(context.Context, domain.LeadReference, int) (bool, error) {
	return false, nil
}

type failingGuard struct{}

func (failingGuard) Acquire(context.Context, domain.LeadReference, int) (bool, error) {
	return false, errors.New("redis gone")
}

type fakeIdentity struct {
	roles []string
}

func (f *fakeIdentity) UserID() uuid.UUID         { return uuid.Nil }
func (f *fakeIdentity) FullName() string          { return "Token Name" }
func (f *fakeIdentity) EmployeeID() (int64, bool) { return 0, false }
func (f *fakeIdentity) Roles() []string           { return f.roles }
func (f *fakeIdentity) IsAuthenticated() bool     { return true }
func (f *fakeIdentity) HasRole(role string) bool {
	for _, r := range f.roles {
		if r == role {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------

func testResolver() *stages.Resolver {
	return stages.NewResolver(stages.NewCatalog([]stages.Stage{
		{ID: 1, Name: "Created"},
		{ID: 5, Name: "Communication started"},
		{ID: 20, Name: "Meeting scheduled"},
		{ID: 23, Name: "Waiting for mtng sum"},
		{ID: 24, Name: "Mtng sum+Agreement sent"},
		{ID: 30, Name: "Success"},
		{ID: 31, Name: "Handler set"},
		{ID: 32, Name: "Handler started"},
	}))
}

func newTestService(store *fakeStore, history *fakeHistory, guard TransitionGuard, actors *fakeActors) *Service {
	if actors == nil {
		actors = &fakeActors{actor: identity.Actor{FullName: "Dana Levi"}}
	}
	return New(store, history, &fakeCreator{}, testResolver(), actors, guard, nil, logger.New("development"), time.Second)
}

func currentRef(t *testing.T) domain.LeadReference {
	t.Helper()
	ref, err := domain.ParseLeadReference("550e8400-e29b-41d4-a716-446655440000")
	if err != nil {
		t.Fatalf("parse ref: %v", err)
	}
	return ref
}

func TestTransitionWritesStageAndHistory(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}}
	history := &fakeHistory{}
	svc := newTestService(store, history, nil, nil)
	ref := currentRef(t)

	snap, err := svc.Transition(context.Background(), ref, &fakeIdentity{}, transport.TransitionRequest{
		Target: "mtng_sum_agreement_sent",
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	if store.writtenStage != 24 {
		t.Errorf("written stage = %d, want 24", store.writtenStage)
	}
	if store.writtenBy != "Dana Levi" {
		t.Errorf("written by = %q", store.writtenBy)
	}
	if snap.StageID != 24 || !snap.AuditRecorded {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(history.appended) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history.appended))
	}
	rec := history.appended[0]
	if rec.FromStage == nil || *rec.FromStage != 23 || rec.ToStage != 24 {
		t.Errorf("history record = %+v", rec)
	}
	if rec.ActorName != "Dana Levi" {
		t.Errorf("history actor = %q", rec.ActorName)
	}
}

func TestTransitionSucceedsWhenHistoryWriteFails(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}}
	history := &fakeHistory{appendErr: errors.New("audit table unavailable")}
	svc := newTestService(store, history, nil, nil)

	snap, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{
		Target: "24",
	})
	if err != nil {
		t.Fatalf("history failure must not fail the transition: %v", err)
	}
	if store.writtenStage != 24 {
		t.Errorf("stage write should have happened: %d", store.writtenStage)
	}
	if snap.AuditRecorded {
		t.Error("snapshot should surface the missed audit record")
	}
}

func TestTransitionUnresolvableTargetWritesNothing(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}}
	history := &fakeHistory{}
	svc := newTestService(store, history, nil, nil)

	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{
		Target: "no such stage",
	})
	if err == nil {
		t.Fatal("expected resolution failure")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.writeCalls != 0 {
		t.Error("no write may happen on resolution failure")
	}
	if len(history.appended) != 0 {
		t.Error("no history may be appended on resolution failure")
	}
}

func TestTransitionRowWriteFailureIsFatal(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}, writeErr: errors.New("boom")}
	history := &fakeHistory{}
	svc := newTestService(store, history, nil, nil)

	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{Target: "24"})
	if err == nil {
		t.Fatal("expected error when the row write fails")
	}
	if len(history.appended) != 0 {
		t.Error("history must not be written after a failed row write")
	}
}

func TestTransitionWriteTimeoutMapsToUnavailable(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}, writeErr: context.DeadlineExceeded}
	svc := newTestService(store, &fakeHistory{}, nil, nil)

	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{Target: "24"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestTransitionDuplicateInFlightConflicts(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}}
	svc := newTestService(store, &fakeHistory{}, denyGuard{}, nil)

	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{Target: "24"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if store.writeCalls != 0 {
		t.Error("guarded transition must not write")
	}
}

func TestTransitionGuardFailureIsBestEffort(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 23}}
	svc := newTestService(store, &fakeHistory{}, failingGuard{}, nil)

	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{Target: "24"})
	if err != nil {
		t.Fatalf("guard errors must not block transitions: %v", err)
	}
	if store.writtenStage != 24 {
		t.Errorf("stage should have been written: %d", store.writtenStage)
	}
}

func TestTransitionNotFoundLead(t *testing.T) {
	store := &fakeStore{readErr: repository.ErrNotFound}
	svc := newTestService(store, &fakeHistory{}, nil, nil)

	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{Target: "24"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestActionsUsesStateAndRoles(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 31}}
	svc := newTestService(store, &fakeHistory{}, nil, nil)
	ref := currentRef(t)

	resp, err := svc.Actions(context.Background(), ref, &fakeIdentity{})
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Label != "Start case" {
		t.Errorf("actions = %+v", resp.Actions)
	}
	if resp.StageID != 31 || resp.Kind != "current" {
		t.Errorf("response = %+v", resp)
	}

	super, err := svc.Actions(context.Background(), ref, &fakeIdentity{roles: []string{"superuser"}})
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(super.Actions) != 2 || super.Actions[1].Label != "Drop as spam/irrelevant" {
		t.Errorf("superuser actions = %+v", super.Actions)
	}
}

func TestActionsUnactivatedLead(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 31, Unactivated: true}}
	svc := newTestService(store, &fakeHistory{}, nil, nil)

	resp, err := svc.Actions(context.Background(), currentRef(t), &fakeIdentity{})
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Label != "Reactivate lead first" {
		t.Errorf("actions = %+v", resp.Actions)
	}
}

func TestReactivateClearsFlag(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 31, Unactivated: true}}
	svc := newTestService(store, &fakeHistory{}, nil, nil)

	snap, err := svc.Reactivate(context.Background(), currentRef(t), &fakeIdentity{})
	if err != nil {
		t.Fatalf("Reactivate failed: %v", err)
	}
	if snap.Unactivated {
		t.Error("snapshot should show the lead reactivated")
	}
}

func TestHistoryResolvesStageNames(t *testing.T) {
	from := 23
	history := &fakeHistory{listed: []repository.StageChangeEvent{
		{ID: uuid.New(), FromStage: &from, ToStage: 24, ActorName: "Dana Levi", OccurredAt: time.Now()},
		{ID: uuid.New(), ToStage: 1, ActorName: "intake", OccurredAt: time.Now().Add(-time.Hour)},
	}}
	svc := newTestService(&fakeStore{}, history, nil, nil)

	items, err := svc.History(context.Background(), currentRef(t))
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].FromStageName == nil || *items[0].FromStageName != "Waiting for mtng sum" {
		t.Errorf("from stage name = %v", items[0].FromStageName)
	}
	if items[0].ToStageName != "Mtng sum+Agreement sent" {
		t.Errorf("to stage name = %q", items[0].ToStageName)
	}
	if items[1].FromStageName != nil {
		t.Errorf("initial record should have no from stage name")
	}
}

func TestCreateStartsAtInitialStage(t *testing.T) {
	creator := &fakeCreator{lead: repository.Lead{ID: uuid.New(), FullName: "New Lead", Phone: "+972501234567"}}
	store := &fakeStore{state: repository.LeadState{StageID: 1}}
	svc := New(store, &fakeHistory{}, creator, testResolver(), &fakeActors{}, nil, nil, logger.New("development"), time.Second)

	snap, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		FullName: "New Lead",
		Phone:    "050-123-4567",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if creator.created.StageID != 1 {
		t.Errorf("initial stage = %d, want 1", creator.created.StageID)
	}
	if creator.created.Phone != "+972501234567" {
		t.Errorf("phone not normalized: %q", creator.created.Phone)
	}
	if snap.StageID != 1 {
		t.Errorf("snapshot stage = %d", snap.StageID)
	}
}

func TestTransitionForwardsExtraFields(t *testing.T) {
	store := &fakeStore{state: repository.LeadState{StageID: 5}}
	svc := newTestService(store, &fakeHistory{}, nil, nil)

	fields := map[string]any{"communication_started_at": "2026-08-31T10:00:00Z"}
	_, err := svc.Transition(context.Background(), currentRef(t), &fakeIdentity{}, transport.TransitionRequest{
		Target: "meeting_scheduled",
		Fields: fields,
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if store.writtenFields["communication_started_at"] != "2026-08-31T10:00:00Z" {
		t.Errorf("fields not forwarded: %v", store.writtenFields)
	}
}
