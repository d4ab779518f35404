package domain

import "strconv"

// Stage is one row of the stage catalog.
type Stage struct {
	ID     int
	Name   string
	Colour *string
}

// Catalog holds the known stages, loaded once at startup and immutable for
// the rest of the session. Lookups never mutate it, so it is safe for
// concurrent use without locking.
type Catalog struct {
	ordered []Stage
	byID    map[int]Stage
	byKey   map[CanonicalKey]int
}

// NewCatalog builds a catalog from stage rows. Later rows with a duplicate
// id replace earlier ones; name keys are indexed by canonical form and
// additionally by the id rendered as a string, so "20" finds stage 20.
func NewCatalog(stages []Stage) *Catalog {
	c := &Catalog{
		ordered: make([]Stage, 0, len(stages)),
		byID:    make(map[int]Stage, len(stages)),
		byKey:   make(map[CanonicalKey]int, len(stages)*2),
	}
	for _, s := range stages {
		if _, dup := c.byID[s.ID]; !dup {
			c.ordered = append(c.ordered, s)
		}
		c.byID[s.ID] = s
		if key := Canonical(s.Name); key != "" {
			c.byKey[key] = s.ID
		}
		c.byKey[strconv.Itoa(s.ID)] = s.ID
	}
	return c
}

// Stages returns the catalog rows in load order.
func (c *Catalog) Stages() []Stage {
	out := make([]Stage, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Get returns the stage with the given id.
func (c *Catalog) Get(id int) (Stage, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// IDForKey returns the stage id whose canonical name (or id-as-string)
// matches the given key.
func (c *Catalog) IDForKey(key CanonicalKey) (int, bool) {
	id, ok := c.byKey[key]
	return id, ok
}

// KeyFor returns the canonical key of the stage with the given id, or ""
// when the id is not in the catalog.
func (c *Catalog) KeyFor(id int) CanonicalKey {
	if s, ok := c.byID[id]; ok {
		return Canonical(s.Name)
	}
	return ""
}

// Len returns the number of stages in the catalog.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
