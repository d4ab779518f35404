package domain

import (
	"strings"

	stages "leadflow_backend/internal/stages/domain"
)

// SideEffectKind tells the caller what applying an action involves beyond
// the stage write itself.
type SideEffectKind string

const (
	// ActionNone renders as an inert menu entry.
	ActionNone SideEffectKind = "none"
	// ActionTransition is a plain stage transition.
	ActionTransition SideEffectKind = "transition"
	// ActionComposite is a transition that also stamps extra fields
	// (e.g. the communication-started timestamps).
	ActionComposite SideEffectKind = "composite"
	// ActionScheduleMeeting is a transition preceded by scheduling UI.
	ActionScheduleMeeting SideEffectKind = "schedule_meeting"
	// ActionSendOffer is a transition preceded by price-offer composition.
	ActionSendOffer SideEffectKind = "send_offer"
	// ActionReactivate clears the unactivated flag before anything else.
	ActionReactivate SideEffectKind = "reactivate"
)

// ActionMenuEntry is one legal action from the lead's current stage.
// Produced fresh on every derivation, never persisted.
type ActionMenuEntry struct {
	Label          string              `json:"label"`
	TargetStageKey stages.CanonicalKey `json:"targetStageKey,omitempty"`
	Kind           SideEffectKind      `json:"kind"`
}

// Flags are the orthogonal lead conditions the transition table consults.
type Flags struct {
	HasScheduledMeeting bool
	IsUnactivated       bool
	IsSuperuser         bool
}

// The "Another meeting" label is chosen by comparing the resolved numeric
// stage id against a threshold, with the two payment-related stages
// excluded. This numeric override predates the name-keyed table and is kept
// exactly as the legacy data expects it.
const anotherMeetingMinStageID = 20

var anotherMeetingExcludedIDs = map[int]bool{
	27: true, // Payment request sent
	29: true, // Finances & payments plan
}

// DeriveActions computes the ordered list of legal actions for a lead at
// stageID. stageKey is the catalog's canonical key for that id, or "" when
// the id is unknown; such stages get the default fallthrough set, never an
// error, since the UI must always render something. The function is pure:
// identical inputs yield identical output.
func DeriveActions(stageID int, stageKey stages.CanonicalKey, kind Kind, flags Flags) []ActionMenuEntry {
	_ = kind // both schemas currently share one table; the discriminator is threaded for routing symmetry

	if flags.IsUnactivated {
		return []ActionMenuEntry{{Label: "Reactivate lead first", Kind: ActionReactivate}}
	}

	var entries []ActionMenuEntry

	switch stageKey {
	case stages.KeyCreated:
		// Terminal-looking but not terminal: an external scheduler
		// assignment moves the lead out-of-band.
		return []ActionMenuEntry{{Label: "No action available", Kind: ActionNone}}

	case stages.KeyCommunicationStarted:
		entries = []ActionMenuEntry{
			{Label: "Communication started", TargetStageKey: stages.KeyCommunicationStarted, Kind: ActionComposite},
			meetingEntry(stageID),
		}

	case stages.KeyMeetingScheduled, stages.KeyMeetingRescheduling, stages.KeyAnotherMeeting:
		entries = []ActionMenuEntry{
			{Label: "Reschedule meeting", TargetStageKey: stages.KeyMeetingRescheduling, Kind: ActionScheduleMeeting},
		}
		// "Meeting ended" is suppressed while rescheduling unless a
		// meeting is actually on the calendar.
		if stageKey != stages.KeyMeetingRescheduling || flags.HasScheduledMeeting {
			entries = append(entries, ActionMenuEntry{
				Label: "Meeting ended", TargetStageKey: stages.KeyWaitingForMtngSum, Kind: ActionTransition,
			})
		}

	case stages.KeyWaitingForMtngSum:
		entries = []ActionMenuEntry{
			meetingEntry(stageID),
			{Label: "Send price offer", TargetStageKey: stages.KeyMtngSumAgreementSent, Kind: ActionSendOffer},
		}

	case stages.KeyMtngSumAgreementSent:
		entries = []ActionMenuEntry{
			meetingEntry(stageID),
			{Label: "Client signed", TargetStageKey: stages.KeyClientSignedAgreement, Kind: ActionTransition},
			{Label: "Client declined", TargetStageKey: stages.KeyClientDeclined, Kind: ActionTransition},
			{Label: "Revised price offer", TargetStageKey: stages.KeyMtngSumAgreementSent, Kind: ActionSendOffer},
		}

	case stages.KeyClientSignedAgreement:
		entries = []ActionMenuEntry{
			{Label: "Send payment request", TargetStageKey: stages.KeyPaymentRequestSent, Kind: ActionTransition},
		}

	case stages.KeyPaymentRequestSent:
		entries = []ActionMenuEntry{
			{Label: "Payment received – new client", TargetStageKey: stages.KeySuccess, Kind: ActionTransition},
		}

	case stages.KeyHandlerSet:
		entries = []ActionMenuEntry{
			{Label: "Start case", TargetStageKey: stages.KeyHandlerStarted, Kind: ActionTransition},
		}

	case stages.KeyHandlerStarted:
		entries = []ActionMenuEntry{
			{Label: "Application submitted", TargetStageKey: stages.KeyApplicationSubmitted, Kind: ActionTransition},
			{Label: "Case closed", TargetStageKey: stages.KeyCaseClosed, Kind: ActionTransition},
		}

	case stages.KeyApplicationSubmitted:
		entries = []ActionMenuEntry{
			{Label: "Case closed", TargetStageKey: stages.KeyCaseClosed, Kind: ActionTransition},
		}

	case stages.KeySuccess, stages.KeyCaseClosed, stages.KeyDroppedSpamIrrelevant:
		// Terminal: no actions, superuser included.
		return []ActionMenuEntry{}

	default:
		entries = []ActionMenuEntry{meetingEntry(stageID)}
		if !isContactOrOutcomeRelated(stageKey) {
			entries = append(entries, ActionMenuEntry{
				Label: "Communication started", TargetStageKey: stages.KeyCommunicationStarted, Kind: ActionComposite,
			})
		}
	}

	if flags.IsSuperuser {
		entries = append(entries, ActionMenuEntry{
			Label: "Drop as spam/irrelevant", TargetStageKey: stages.KeyDroppedSpamIrrelevant, Kind: ActionTransition,
		})
	}

	return entries
}

// meetingEntry picks "Another meeting" vs "Schedule Meeting" by the numeric
// stage id override described above.
func meetingEntry(stageID int) ActionMenuEntry {
	if stageID >= anotherMeetingMinStageID && !anotherMeetingExcludedIDs[stageID] {
		return ActionMenuEntry{Label: "Another meeting", TargetStageKey: stages.KeyAnotherMeeting, Kind: ActionScheduleMeeting}
	}
	return ActionMenuEntry{Label: "Schedule Meeting", TargetStageKey: stages.KeyMeetingScheduled, Kind: ActionScheduleMeeting}
}

// isContactOrOutcomeRelated reports whether the stage is itself
// communication-, meeting-, or success-related; the default fallthrough
// withholds "Communication started" from those.
func isContactOrOutcomeRelated(stageKey stages.CanonicalKey) bool {
	return strings.Contains(stageKey, "communication") ||
		strings.Contains(stageKey, "meeting") ||
		strings.Contains(stageKey, "mtng") ||
		strings.Contains(stageKey, "success")
}
