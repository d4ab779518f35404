// Package service implements the lead lifecycle operations: action menu
// derivation, the stage transition executor, reactivation, intake, and the
// audit history view.
package service

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/identity"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	stages "leadflow_backend/internal/stages/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

// ActorProvider resolves the acting user immediately before a transition.
type ActorProvider interface {
	FetchActor(ctx context.Context, id httpkit.Identity) (identity.Actor, error)
}

// Service orchestrates the lifecycle state machine against the dual-schema
// adapter. Resolution and derivation are pure; Transition is the only
// operation with side effects.
type Service struct {
	store        repository.LeadStore
	history      repository.HistoryStore
	creator      repository.LeadCreator
	resolver     *stages.Resolver
	actors       ActorProvider
	guard        TransitionGuard
	bus          events.Bus
	log          *logger.Logger
	writeTimeout time.Duration
}

func New(
	store repository.LeadStore,
	history repository.HistoryStore,
	creator repository.LeadCreator,
	resolver *stages.Resolver,
	actors ActorProvider,
	guard TransitionGuard,
	bus events.Bus,
	log *logger.Logger,
	writeTimeout time.Duration,
) *Service {
	if guard == nil {
		guard = NoopGuard{}
	}
	return &Service{
		store:        store,
		history:      history,
		creator:      creator,
		resolver:     resolver,
		actors:       actors,
		guard:        guard,
		bus:          bus,
		log:          log,
		writeTimeout: writeTimeout,
	}
}

// Actions derives the legal action menu for the lead's current stage.
// Read-only; never fails for a recognized lead.
func (s *Service) Actions(ctx context.Context, ref domain.LeadReference, id httpkit.Identity) (transport.ActionMenuResponse, error) {
	state, err := s.store.ReadState(ctx, ref)
	if err != nil {
		return transport.ActionMenuResponse{}, s.mapReadError(err)
	}

	flags := domain.Flags{
		HasScheduledMeeting: state.HasScheduledMeeting,
		IsUnactivated:       state.Unactivated,
		IsSuperuser:         id.HasRole("superuser"),
	}
	entries := domain.DeriveActions(state.StageID, s.resolver.Catalog().KeyFor(state.StageID), ref.Kind, flags)

	return transport.ActionMenuResponse{
		Ref:     ref.String(),
		StageID: state.StageID,
		Kind:    string(ref.Kind),
		Actions: entries,
	}, nil
}

// Transition applies a stage change: resolve the target, de-duplicate rapid
// repeats, stamp the actor, write the row, then append the audit record.
// The row write is fatal on failure; the history insert is not. The stage
// change has already taken effect at that point, so the miss is logged and
// surfaced via AuditRecorded=false rather than rolled back.
func (s *Service) Transition(ctx context.Context, ref domain.LeadReference, id httpkit.Identity, req transport.TransitionRequest) (transport.LeadSnapshot, error) {
	targetStage, err := s.resolver.Resolve(req.Target.String())
	if err != nil {
		var resErr *stages.ResolutionError
		if errors.As(err, &resErr) {
			return transport.LeadSnapshot{}, apperr.Validation(err.Error()).WithDetails(map[string]string{
				"input":        resErr.Input,
				"canonicalKey": resErr.CanonicalKey,
			})
		}
		return transport.LeadSnapshot{}, apperr.Validation(err.Error())
	}

	allowed, err := s.guard.Acquire(ctx, ref, targetStage)
	if err != nil {
		// The guard is best-effort: losing Redis must not block transitions.
		s.log.Warn("transition guard unavailable", "ref", ref.String(), "error", err)
	} else if !allowed {
		return transport.LeadSnapshot{}, apperr.Conflict("an identical transition is already in flight")
	}

	actor, err := s.actors.FetchActor(ctx, id)
	if err != nil {
		return transport.LeadSnapshot{}, apperr.Wrap(apperr.KindInternal, "failed to resolve actor", err)
	}

	state, err := s.store.ReadState(ctx, ref)
	if err != nil {
		return transport.LeadSnapshot{}, s.mapReadError(err)
	}
	fromStage := state.StageID

	occurredAt := time.Now()

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	err = s.store.WriteStage(writeCtx, ref, targetStage, actor.FullName, occurredAt, req.Fields)
	cancel()
	if err != nil {
		return transport.LeadSnapshot{}, s.mapWriteError(err)
	}

	auditRecorded := true
	historyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	err = s.history.AppendHistory(historyCtx, repository.StageChangeEvent{
		Ref:        ref,
		FromStage:  &fromStage,
		ToStage:    targetStage,
		ActorName:  actor.FullName,
		OccurredAt: occurredAt,
		Note:       req.Note,
	})
	cancel()
	if err != nil {
		auditRecorded = false
		s.log.HistoryWriteFailed(ref.String(), targetStage, err)
	}

	s.log.StageTransition(ref.String(), &fromStage, targetStage, actor.FullName)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadStageChanged{
			BaseEvent:     events.NewBaseEvent(),
			LeadRef:       ref.String(),
			FromStage:     &fromStage,
			ToStage:       targetStage,
			ActorName:     actor.FullName,
			AuditRecorded: auditRecorded,
		})
	}

	snapshot := s.toSnapshot(ref, state, targetStage, actor.FullName, occurredAt)
	snapshot.AuditRecorded = auditRecorded
	return snapshot, nil
}

// Reactivate clears the unactivated flag so the normal action menu applies
// again.
func (s *Service) Reactivate(ctx context.Context, ref domain.LeadReference, id httpkit.Identity) (transport.LeadSnapshot, error) {
	actor, err := s.actors.FetchActor(ctx, id)
	if err != nil {
		return transport.LeadSnapshot{}, apperr.Wrap(apperr.KindInternal, "failed to resolve actor", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	err = s.store.SetUnactivated(writeCtx, ref, false)
	cancel()
	if err != nil {
		return transport.LeadSnapshot{}, s.mapWriteError(err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadReactivated{
			BaseEvent: events.NewBaseEvent(),
			LeadRef:   ref.String(),
			ActorName: actor.FullName,
		})
	}

	return s.Snapshot(ctx, ref)
}

// Snapshot reads the lead's current lifecycle state.
func (s *Service) Snapshot(ctx context.Context, ref domain.LeadReference) (transport.LeadSnapshot, error) {
	state, err := s.store.ReadState(ctx, ref)
	if err != nil {
		return transport.LeadSnapshot{}, s.mapReadError(err)
	}

	snapshot := transport.LeadSnapshot{
		Ref:                 ref.String(),
		StageID:             state.StageID,
		StageKey:            s.resolver.Catalog().KeyFor(state.StageID),
		StageChangedBy:      state.StageChangedBy,
		StageChangedAt:      state.StageChangedAt,
		Unactivated:         state.Unactivated,
		HasScheduledMeeting: state.HasScheduledMeeting,
		AuditRecorded:       true,
	}
	if stage, ok := s.resolver.Catalog().Get(state.StageID); ok {
		snapshot.StageName = stage.Name
	}
	return snapshot, nil
}

// History returns the lead's audit trail, newest first, with stage names
// resolved against the catalog.
func (s *Service) History(ctx context.Context, ref domain.LeadReference) ([]transport.HistoryEventResponse, error) {
	events, err := s.history.ListHistory(ctx, ref)
	if err != nil {
		return nil, s.mapReadError(err)
	}

	catalog := s.resolver.Catalog()
	items := make([]transport.HistoryEventResponse, 0, len(events))
	for _, event := range events {
		item := transport.HistoryEventResponse{
			ID:         event.ID.String(),
			FromStage:  event.FromStage,
			ToStage:    event.ToStage,
			ActorName:  event.ActorName,
			OccurredAt: event.OccurredAt,
			Note:       event.Note,
		}
		if event.FromStage != nil {
			if stage, ok := catalog.Get(*event.FromStage); ok {
				item.FromStageName = &stage.Name
			}
		}
		if stage, ok := catalog.Get(event.ToStage); ok {
			item.ToStageName = stage.Name
		}
		items = append(items, item)
	}
	return items, nil
}

// Create inserts a current-schema lead at the initial stage.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadSnapshot, error) {
	initialStage, err := s.resolver.Resolve(stages.KeyCreated)
	if err != nil {
		return transport.LeadSnapshot{}, apperr.Wrap(apperr.KindInternal, "catalog has no initial stage", err)
	}

	lead, err := s.creator.CreateLead(ctx, repository.CreateLeadParams{
		FullName: req.FullName,
		Phone:    phone.NormalizeE164(req.Phone),
		Email:    req.Email,
		StageID:  initialStage,
		Source:   req.Source,
	})
	if err != nil {
		return transport.LeadSnapshot{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent:     events.NewBaseEvent(),
			LeadID:        lead.ID,
			ConsumerName:  lead.FullName,
			ConsumerPhone: lead.Phone,
			Source:        derefString(lead.Source),
		})
	}

	ref := domain.LeadReference{Kind: domain.KindCurrent, CurrentID: lead.ID}
	return s.Snapshot(ctx, ref)
}

func (s *Service) toSnapshot(ref domain.LeadReference, prior repository.LeadState, stageID int, changedBy string, changedAt time.Time) transport.LeadSnapshot {
	snapshot := transport.LeadSnapshot{
		Ref:                 ref.String(),
		StageID:             stageID,
		StageKey:            s.resolver.Catalog().KeyFor(stageID),
		StageChangedBy:      &changedBy,
		StageChangedAt:      &changedAt,
		Unactivated:         prior.Unactivated,
		HasScheduledMeeting: prior.HasScheduledMeeting,
	}
	if stage, ok := s.resolver.Catalog().Get(stageID); ok {
		snapshot.StageName = stage.Name
	}
	return snapshot
}

func (s *Service) mapReadError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	var routeErr *domain.UnroutableReferenceError
	if errors.As(err, &routeErr) {
		return apperr.BadRequest(err.Error())
	}
	return err
}

func (s *Service) mapWriteError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Unavailable("stage write timed out; retry the action")
	}
	var routeErr *domain.UnroutableReferenceError
	if errors.As(err, &routeErr) {
		return apperr.BadRequest(err.Error())
	}
	return err
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
