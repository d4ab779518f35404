package domain

// manualStageIDFallbacks hard-codes ids for canonical keys as a last-resort
// safety net for partially-migrated legacy data. It is consulted only after
// both the catalog and the alias table miss and is never authoritative:
// a catalog hit always wins.
//
// TODO: audit against production catalogs whether any of these entries still
// fire; entries that never engage can be dropped.
var manualStageIDFallbacks = map[CanonicalKey]int{
	KeyCreated:               1,
	KeyCommunicationStarted:  5,
	KeyMeetingScheduled:      20,
	KeyAnotherMeeting:        21,
	KeyWaitingForMtngSum:     23,
	KeyMtngSumAgreementSent:  24,
	KeyPaymentRequestSent:    27,
	KeyFinancesPaymentsPlan:  29,
	KeySuccess:               30,
	KeyHandlerSet:            31,
	KeyHandlerStarted:        32,
	KeyCaseClosed:            34,
	KeyDroppedSpamIrrelevant: 40,
}

// FallbackID returns the hard-coded id for a canonical key, if one exists.
func FallbackID(key CanonicalKey) (int, bool) {
	id, ok := manualStageIDFallbacks[key]
	return id, ok
}

// Fallbacks returns a copy of the fallback table, for diagnostics and tests.
func Fallbacks() map[CanonicalKey]int {
	out := make(map[CanonicalKey]int, len(manualStageIDFallbacks))
	for k, v := range manualStageIDFallbacks {
		out[k] = v
	}
	return out
}
