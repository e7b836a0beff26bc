// Package catalog resolves human-readable item names to the canonical
// identifiers the price sources understand.
package catalog

import (
	"regexp"
	"strings"

	"github.com/skyforge/skycalc/internal/domain"
)

// Resolver maps display names to item ids against a static catalog.
//
// Resolution order: exact case-insensitive match, then a substring match
// in catalog iteration order, then deterministic synthesis. The
// substring fallback is deliberately loose and can return semantically
// wrong ids (e.g. "Diamond" matching "Diamond Spreading"); that matches
// the observed lookup behavior and is kept as-is.
//
// A Resolver built without a catalog operates in fallback-only mode:
// every name is synthesized, none is reported as a catalog match.
type Resolver struct {
	entries []domain.CatalogEntry
	exact   map[string]string
}

// NewResolver builds a resolver over the loaded catalog. The catalog is
// immutable for the session; entry order is preserved for the substring
// fallback.
func NewResolver(entries []domain.CatalogEntry) *Resolver {
	exact := make(map[string]string, len(entries))
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		// First entry wins for duplicate display names.
		if _, ok := exact[key]; !ok {
			exact[key] = e.ID
		}
	}
	return &Resolver{entries: entries, exact: exact}
}

// Unloaded returns a fallback-only resolver for use before (or without)
// a successful catalog load.
func Unloaded() *Resolver {
	return &Resolver{}
}

// Resolve returns an item id for displayName. It never fails: names
// absent from the catalog get a synthesized id, which the price sources
// may legitimately not recognize.
func (r *Resolver) Resolve(displayName string) string {
	needle := strings.ToLower(strings.TrimSpace(displayName))
	if needle == "" {
		return ""
	}

	if id, ok := r.exact[needle]; ok {
		return id
	}

	for _, e := range r.entries {
		have := strings.ToLower(e.Name)
		if strings.Contains(have, needle) || strings.Contains(needle, have) {
			return e.ID
		}
	}

	return Synthesize(displayName)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Synthesize derives an identifier from a display name: uppercase,
// whitespace runs collapsed to one underscore, parentheses stripped.
// Deterministic, total, and not guaranteed to exist upstream.
func Synthesize(displayName string) string {
	s := strings.TrimSpace(displayName)
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.ToUpper(s)
}
