package datmant

import (
	"fmt"
	"strings"
)

// DefaultTolerance is the per-channel matching tolerance used when callers
// have no reason to override it. Masks that round-trip through PNG keep
// their exact values, but masks inherited from lossy pipelines drift by a
// couple of steps per channel.
const DefaultTolerance = 2

// ClassEntry describes one defect class: a human-readable label, the color
// it is painted with, the class code it exports to, and optional aliases
// accepted when looking the class up by name.
type ClassEntry struct {
	Label   string
	Color   RGBA8
	Code    uint8
	Aliases []string
}

// ColorTable is the bidirectional mapping between mask colors and class
// codes. It is immutable after construction; a canvas session installs one
// table and keeps it for the session's lifetime.
type ColorTable struct {
	entries   []ClassEntry
	tolerance uint8
	byCode    map[uint8]int
}

// NewColorTable validates the entries and builds the lookup table.
// tolerance is the per-channel slack allowed when matching a pixel color to
// an entry.
//
// Validation rejects, wrapping [ErrInvalidTable]:
//   - an empty entry list
//   - empty labels and duplicate labels or aliases (case-insensitive)
//   - the reserved background code 0 and duplicate codes
//   - colors with zero alpha (alpha is the mask occupancy channel)
//   - color pairs closer than 2*tolerance+1 on every RGB channel, which
//     would make a drifted pixel match two classes at once
func NewColorTable(entries []ClassEntry, tolerance uint8) (*ColorTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidTable)
	}

	byCode := make(map[uint8]int, len(entries))
	names := make(map[string]string, len(entries))

	claim := func(name, label string) error {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("%w: empty name on entry %q", ErrInvalidTable, label)
		}
		if prev, dup := names[key]; dup {
			return fmt.Errorf("%w: name %q used by both %q and %q", ErrInvalidTable, name, prev, label)
		}
		names[key] = label
		return nil
	}

	for i, e := range entries {
		if err := claim(e.Label, e.Label); err != nil {
			return nil, err
		}
		for _, alias := range e.Aliases {
			if err := claim(alias, e.Label); err != nil {
				return nil, err
			}
		}
		if e.Code == 0 {
			return nil, fmt.Errorf("%w: entry %q uses reserved background code 0", ErrInvalidTable, e.Label)
		}
		if prev, dup := byCode[e.Code]; dup {
			return nil, fmt.Errorf("%w: code %d used by both %q and %q",
				ErrInvalidTable, e.Code, entries[prev].Label, e.Label)
		}
		if e.Color.A == 0 {
			return nil, fmt.Errorf("%w: entry %q has zero alpha", ErrInvalidTable, e.Label)
		}
		byCode[e.Code] = i
	}

	// Any two entries must stay distinguishable after each drifts by up to
	// tolerance on every channel.
	minGap := 2*int(tolerance) + 1
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i].Color, entries[j].Color
			gap := max(
				int(absDiff(a.R, b.R)),
				int(absDiff(a.G, b.G)),
				int(absDiff(a.B, b.B)),
			)
			if gap < minGap {
				return nil, fmt.Errorf("%w: colors of %q and %q are ambiguous at tolerance %d",
					ErrInvalidTable, entries[i].Label, entries[j].Label, tolerance)
			}
		}
	}

	t := &ColorTable{
		entries:   make([]ClassEntry, len(entries)),
		tolerance: tolerance,
		byCode:    byCode,
	}
	copy(t.entries, entries)
	return t, nil
}

// ClassOf returns the class code whose color matches c within the table
// tolerance, comparing R, G and B only. Returns the background code 0 when
// no entry matches. Validation guarantees at most one entry can match.
func (t *ColorTable) ClassOf(c RGBA8) uint8 {
	for i := range t.entries {
		if t.entries[i].Color.MatchesRGB(c, t.tolerance) {
			return t.entries[i].Code
		}
	}
	return 0
}

// ColorOf returns the display color of a class code.
// Returns ErrUnknownClass for codes absent from the table, including the
// background code 0, which has no color of its own.
func (t *ColorTable) ColorOf(code uint8) (RGBA8, error) {
	i, ok := t.byCode[code]
	if !ok {
		return Transparent, fmt.Errorf("%w: %d", ErrUnknownClass, code)
	}
	return t.entries[i].Color, nil
}

// EntryByCode returns the entry registered for a class code.
func (t *ColorTable) EntryByCode(code uint8) (ClassEntry, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return ClassEntry{}, false
	}
	return t.entries[i], true
}

// EntryByName returns the entry whose label or alias matches name,
// case-insensitively.
func (t *ColorTable) EntryByName(name string) (ClassEntry, bool) {
	for i := range t.entries {
		if strings.EqualFold(t.entries[i].Label, name) {
			return t.entries[i], true
		}
		for _, alias := range t.entries[i].Aliases {
			if strings.EqualFold(alias, name) {
				return t.entries[i], true
			}
		}
	}
	return ClassEntry{}, false
}

// Entries returns a copy of the table entries in construction order.
func (t *ColorTable) Entries() []ClassEntry {
	out := make([]ClassEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of classes in the table.
func (t *ColorTable) Len() int { return len(t.entries) }

// Tolerance returns the per-channel matching tolerance.
func (t *ColorTable) Tolerance() uint8 { return t.tolerance }
