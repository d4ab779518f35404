// Package domain provides the stage catalog, name canonicalization, and the
// stage identifier resolver for the leads lifecycle.
package domain

import "strings"

// CanonicalKey is the normalized form of a stage name used for
// case/format-insensitive lookup. It is computed on demand, never persisted.
type CanonicalKey = string

// Canonical lower-cases the input and strips every non-alphanumeric rune, so
// "Mtng sum+Agreement sent", "mtng_sum_agreement_sent" and
// "MTNG SUM AGREEMENT SENT" all map to the same key. The function is
// deterministic and idempotent.
func Canonical(name string) CanonicalKey {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonical keys for the stages the lifecycle rules reference by name.
const (
	KeyCreated               CanonicalKey = "created"
	KeySchedulerAssigned     CanonicalKey = "schedulerassigned"
	KeyCommunicationStarted  CanonicalKey = "communicationstarted"
	KeyMeetingComplete       CanonicalKey = "meetingcomplete"
	KeyMeetingScheduled      CanonicalKey = "meetingscheduled"
	KeyAnotherMeeting        CanonicalKey = "anothermeeting"
	KeyMeetingRescheduling   CanonicalKey = "meetingrescheduling"
	KeyWaitingForMtngSum     CanonicalKey = "waitingformtngsum"
	KeyMtngSumAgreementSent  CanonicalKey = "mtngsumagreementsent"
	KeyClientSignedAgreement CanonicalKey = "clientsignedagreement"
	KeyClientDeclined        CanonicalKey = "clientdeclined"
	KeyPaymentRequestSent    CanonicalKey = "paymentrequestsent"
	KeyFinancesPaymentsPlan  CanonicalKey = "financespaymentsplan"
	KeySuccess               CanonicalKey = "success"
	KeyHandlerSet            CanonicalKey = "handlerset"
	KeyHandlerStarted        CanonicalKey = "handlerstarted"
	KeyApplicationSubmitted  CanonicalKey = "applicationsubmitted"
	KeyCaseClosed            CanonicalKey = "caseclosed"
	KeyDroppedSpamIrrelevant CanonicalKey = "droppedspamirrelevant"
)
