// Package domain provides core business rules for the leads bounded context:
// lead reference routing and the action menu transition table.
package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates which of the two backing schemas a lead lives in.
type Kind string

const (
	// KindCurrent is the newer schema: uuid primary keys plus denormalized
	// display columns alongside the foreign keys.
	KindCurrent Kind = "current"
	// KindLegacy is the older schema: bigint primary keys, id-only
	// references, different column names.
	KindLegacy Kind = "legacy"
)

// LeadReference identifies a lead plus the schema it lives in. The kind is
// determined once, from the raw identifier's shape, and must not change for
// the lifetime of a reference; the adapter routes every read and write by it.
type LeadReference struct {
	Kind      Kind
	CurrentID uuid.UUID
	LegacyID  int64
}

// UnroutableReferenceError reports a raw identifier whose schema could not
// be determined. Rejected before any write is attempted.
type UnroutableReferenceError struct {
	Raw string
}

func (e *UnroutableReferenceError) Error() string {
	return fmt.Sprintf("unroutable lead reference %q", e.Raw)
}

const legacyPrefix = "legacy_"

// ParseLeadReference determines the schema from the identifier's shape:
// a "legacy_"-prefixed composite id or a bare integer routes to the legacy
// store, a UUID routes to the current store. Anything else is unroutable.
func ParseLeadReference(raw string) (LeadReference, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return LeadReference{}, &UnroutableReferenceError{Raw: raw}
	}

	if strings.HasPrefix(trimmed, legacyPrefix) {
		id, err := strconv.ParseInt(strings.TrimPrefix(trimmed, legacyPrefix), 10, 64)
		if err != nil {
			return LeadReference{}, &UnroutableReferenceError{Raw: raw}
		}
		return LeadReference{Kind: KindLegacy, LegacyID: id}, nil
	}

	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		// Bare numeric ids belong to the legacy store.
		return LeadReference{Kind: KindLegacy, LegacyID: id}, nil
	}

	if id, err := uuid.Parse(trimmed); err == nil {
		return LeadReference{Kind: KindCurrent, CurrentID: id}, nil
	}

	return LeadReference{}, &UnroutableReferenceError{Raw: raw}
}

// String renders the reference in the same shape ParseLeadReference accepts.
func (r LeadReference) String() string {
	if r.Kind == KindLegacy {
		return legacyPrefix + strconv.FormatInt(r.LegacyID, 10)
	}
	return r.CurrentID.String()
}

// IsZero reports whether the reference is unset.
func (r LeadReference) IsZero() bool {
	return r.Kind == ""
}
