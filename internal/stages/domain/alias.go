package domain

// stageAliases maps deprecated or synonym canonical keys to the canonical
// key the catalog actually carries. An alias hit is always re-checked
// against the live catalog; the alias table itself never yields an id.
var stageAliases = map[CanonicalKey]CanonicalKey{
	"paidmeeting":             KeyMeetingComplete,
	"financesandpaymentsplan": KeyFinancesPaymentsPlan,
	"paymentplan":             KeyFinancesPaymentsPlan,
	"mtngsumagreement":        KeyMtngSumAgreementSent,
	"spam":                    KeyDroppedSpamIrrelevant,
	"meetingsumagreementsent": KeyMtngSumAgreementSent,
}

// AliasTarget returns the canonical key a deprecated/synonym key points to.
func AliasTarget(key CanonicalKey) (CanonicalKey, bool) {
	target, ok := stageAliases[key]
	return target, ok
}

// Aliases returns a copy of the alias table, for diagnostics and tests.
func Aliases() map[CanonicalKey]CanonicalKey {
	out := make(map[CanonicalKey]CanonicalKey, len(stageAliases))
	for k, v := range stageAliases {
		out[k] = v
	}
	return out
}
