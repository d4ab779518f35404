package domain

import (
	"reflect"
	"testing"

	stages "leadflow_backend/internal/stages/domain"
)

func labelsOf(entries []ActionMenuEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func TestDeriveActionsCreatedHasExactlyNoActionEntry(t *testing.T) {
	entries := DeriveActions(1, stages.KeyCreated, KindCurrent, Flags{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(entries), labelsOf(entries))
	}
	if entries[0].Label != "No action available" || entries[0].Kind != ActionNone {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if entries[0].TargetStageKey != "" {
		t.Errorf("no-action entry must not target a stage: %+v", entries[0])
	}
}

func TestDeriveActionsCreatedIgnoresSuperuser(t *testing.T) {
	entries := DeriveActions(1, stages.KeyCreated, KindCurrent, Flags{IsSuperuser: true})
	if len(entries) != 1 || entries[0].Label != "No action available" {
		t.Errorf("superuser must not add entries on created: %v", labelsOf(entries))
	}
}

func TestDeriveActionsTerminalStagesAreEmpty(t *testing.T) {
	terminals := []struct {
		id  int
		key stages.CanonicalKey
	}{
		{30, stages.KeySuccess},
		{34, stages.KeyCaseClosed},
		{40, stages.KeyDroppedSpamIrrelevant},
	}
	for _, term := range terminals {
		entries := DeriveActions(term.id, term.key, KindLegacy, Flags{IsSuperuser: true})
		if len(entries) != 0 {
			t.Errorf("terminal stage %q should have no actions, got %v", term.key, labelsOf(entries))
		}
	}
}

func TestDeriveActionsUnactivatedShortCircuitsEverything(t *testing.T) {
	for _, key := range []stages.CanonicalKey{stages.KeyCreated, stages.KeyHandlerSet, stages.KeySuccess, "unknownstage"} {
		entries := DeriveActions(31, key, KindCurrent, Flags{IsUnactivated: true, IsSuperuser: true})
		if len(entries) != 1 {
			t.Fatalf("stage %q: expected single reactivate entry, got %v", key, labelsOf(entries))
		}
		if entries[0].Label != "Reactivate lead first" || entries[0].Kind != ActionReactivate {
			t.Errorf("stage %q: unexpected entry %+v", key, entries[0])
		}
	}
}

func TestDeriveActionsHandlerSetHasSingleStartCase(t *testing.T) {
	entries := DeriveActions(31, stages.KeyHandlerSet, KindCurrent, Flags{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %v", labelsOf(entries))
	}
	if entries[0].Label != "Start case" || entries[0].TargetStageKey != stages.KeyHandlerStarted {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestDeriveActionsMtngSumAgreementSentOrder(t *testing.T) {
	entries := DeriveActions(24, stages.KeyMtngSumAgreementSent, KindCurrent, Flags{})
	want := []string{"Another meeting", "Client signed", "Client declined", "Revised price offer"}
	if got := labelsOf(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if entries[0].Kind != ActionScheduleMeeting {
		t.Errorf("first entry should schedule a meeting, got %+v", entries[0])
	}
	if entries[3].Kind != ActionSendOffer {
		t.Errorf("last entry should compose an offer, got %+v", entries[3])
	}
}

func TestDeriveActionsMeetingEndedSuppressedWhileRescheduling(t *testing.T) {
	// No meeting on the calendar: only the reschedule entry remains.
	entries := DeriveActions(22, stages.KeyMeetingRescheduling, KindCurrent, Flags{})
	if got := labelsOf(entries); !reflect.DeepEqual(got, []string{"Reschedule meeting"}) {
		t.Errorf("labels = %v", got)
	}

	// With a meeting scheduled, "Meeting ended" comes back.
	entries = DeriveActions(22, stages.KeyMeetingRescheduling, KindCurrent, Flags{HasScheduledMeeting: true})
	if got := labelsOf(entries); !reflect.DeepEqual(got, []string{"Reschedule meeting", "Meeting ended"}) {
		t.Errorf("labels = %v", got)
	}

	// Meeting scheduled/another meeting always offer both regardless of the flag.
	entries = DeriveActions(20, stages.KeyMeetingScheduled, KindCurrent, Flags{})
	if got := labelsOf(entries); !reflect.DeepEqual(got, []string{"Reschedule meeting", "Meeting ended"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestDeriveActionsMeetingLabelByNumericThreshold(t *testing.T) {
	cases := []struct {
		stageID int
		want    string
	}{
		{5, "Schedule Meeting"},
		{19, "Schedule Meeting"},
		{20, "Another meeting"},
		{23, "Another meeting"},
		{27, "Schedule Meeting"}, // payment request sent is excluded
		{29, "Schedule Meeting"}, // finances plan is excluded
		{30, "Another meeting"},
	}
	for _, tc := range cases {
		entry := meetingEntry(tc.stageID)
		if entry.Label != tc.want {
			t.Errorf("meetingEntry(%d).Label = %q, want %q", tc.stageID, entry.Label, tc.want)
		}
	}
}

func TestDeriveActionsDefaultFallthroughForUnknownStage(t *testing.T) {
	entries := DeriveActions(99, "somefuturestage", KindCurrent, Flags{})
	want := []string{"Another meeting", "Communication started"}
	if got := labelsOf(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}

	// Unknown ids below the threshold pick the plain schedule label.
	entries = DeriveActions(7, "somefuturestage", KindCurrent, Flags{})
	want = []string{"Schedule Meeting", "Communication started"}
	if got := labelsOf(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestDeriveActionsDefaultWithholdsCommunicationFromRelatedStages(t *testing.T) {
	for _, key := range []stages.CanonicalKey{"prelaunchmeetingprep", "mtngfollowup", "successreview", "communicationpaused"} {
		entries := DeriveActions(50, key, KindCurrent, Flags{})
		for _, e := range entries {
			if e.Label == "Communication started" {
				t.Errorf("stage %q should not offer Communication started: %v", key, labelsOf(entries))
			}
		}
	}
}

func TestDeriveActionsSuperuserAppendsDropEntry(t *testing.T) {
	entries := DeriveActions(31, stages.KeyHandlerSet, KindCurrent, Flags{IsSuperuser: true})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", labelsOf(entries))
	}
	last := entries[len(entries)-1]
	if last.Label != "Drop as spam/irrelevant" || last.TargetStageKey != stages.KeyDroppedSpamIrrelevant {
		t.Errorf("unexpected final entry: %+v", last)
	}
}

func TestDeriveActionsIsPure(t *testing.T) {
	flags := Flags{HasScheduledMeeting: true, IsSuperuser: true}
	first := DeriveActions(24, stages.KeyMtngSumAgreementSent, KindLegacy, flags)
	second := DeriveActions(24, stages.KeyMtngSumAgreementSent, KindLegacy, flags)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated derivation differs: %v vs %v", first, second)
	}

	// Mutating the returned slice must not leak into later derivations.
	first[0].Label = "tampered"
	third := DeriveActions(24, stages.KeyMtngSumAgreementSent, KindLegacy, flags)
	if !reflect.DeepEqual(second, third) {
		t.Errorf("derivation observed caller mutation: %v vs %v", second, third)
	}
}

func TestDeriveActionsCommunicationStartedStage(t *testing.T) {
	entries := DeriveActions(5, stages.KeyCommunicationStarted, KindCurrent, Flags{})
	want := []string{"Communication started", "Schedule Meeting"}
	if got := labelsOf(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if entries[0].Kind != ActionComposite {
		t.Errorf("re-contact entry should be composite: %+v", entries[0])
	}
}
