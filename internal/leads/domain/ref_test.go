package domain

import (
	"errors"
	"testing"
)

func TestParseLeadReferenceRoutesByShape(t *testing.T) {
	cases := []struct {
		raw      string
		wantKind Kind
		wantErr  bool
	}{
		{"legacy_12345", KindLegacy, false},
		{"12345", KindLegacy, false},
		{" 12345 ", KindLegacy, false},
		{"550e8400-e29b-41d4-a716-446655440000", KindCurrent, false},
		{"legacy_abc", "", true},
		{"legacy_", "", true},
		{"not-a-lead", "", true},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tc := range cases {
		ref, err := ParseLeadReference(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLeadReference(%q) should fail", tc.raw)
				continue
			}
			var unroutable *UnroutableReferenceError
			if !errors.As(err, &unroutable) {
				t.Errorf("ParseLeadReference(%q): expected *UnroutableReferenceError, got %T", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLeadReference(%q) returned error: %v", tc.raw, err)
			continue
		}
		if ref.Kind != tc.wantKind {
			t.Errorf("ParseLeadReference(%q).Kind = %q, want %q", tc.raw, ref.Kind, tc.wantKind)
		}
	}
}

func TestParseLeadReferenceLegacyIDValue(t *testing.T) {
	ref, err := ParseLeadReference("legacy_987")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.LegacyID != 987 {
		t.Errorf("LegacyID = %d, want 987", ref.LegacyID)
	}
}

func TestLeadReferenceStringRoundTrips(t *testing.T) {
	for _, raw := range []string{"legacy_42", "550e8400-e29b-41d4-a716-446655440000"} {
		ref, err := ParseLeadReference(raw)
		if err != nil {
			t.Fatalf("ParseLeadReference(%q): %v", raw, err)
		}
		again, err := ParseLeadReference(ref.String())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", ref.String(), err)
		}
		if again != ref {
			t.Errorf("round trip changed the reference: %+v != %+v", again, ref)
		}
	}
}

func TestLeadReferenceIsZero(t *testing.T) {
	var zero LeadReference
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	ref, _ := ParseLeadReference("legacy_1")
	if ref.IsZero() {
		t.Error("parsed reference should not report IsZero")
	}
}
