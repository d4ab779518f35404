package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolutionError reports a stage value that none of the resolution
// strategies could map to an id. It carries both the original input and the
// computed canonical key so operators can diagnose catalog/alias gaps.
type ResolutionError struct {
	Input        string
	CanonicalKey CanonicalKey
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unresolvable stage %q (canonical key %q)", e.Input, e.CanonicalKey)
}

// Resolver turns any stage representation (number, numeric string, name,
// alias) into one canonical numeric stage id, or fails explicitly. It is
// pure given its catalog snapshot and safe for concurrent use.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver over an immutable catalog snapshot.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Catalog returns the catalog snapshot the resolver reads from.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve maps a raw stage value to a stage id. Resolution order, first
// match wins:
//
//  1. a string that parses entirely as an integer is trusted verbatim;
//  2. the canonical key is looked up in the catalog (by normalized name or
//     by id-as-string);
//  3. the alias table maps the key to a different canonical key, which is
//     retried against the catalog;
//  4. the manual fallback table supplies a hard-coded id;
//  5. otherwise a *ResolutionError is returned. Never silently defaults.
func (r *Resolver) Resolve(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, &ResolutionError{Input: raw, CanonicalKey: ""}
	}

	if id, err := strconv.Atoi(trimmed); err == nil {
		return id, nil
	}

	key := Canonical(trimmed)
	if key == "" {
		return 0, &ResolutionError{Input: raw, CanonicalKey: key}
	}

	if id, ok := r.catalog.IDForKey(key); ok {
		return id, nil
	}

	if target, ok := AliasTarget(key); ok {
		if id, ok := r.catalog.IDForKey(target); ok {
			return id, nil
		}
	}

	if id, ok := FallbackID(key); ok {
		return id, nil
	}

	return 0, &ResolutionError{Input: raw, CanonicalKey: key}
}
