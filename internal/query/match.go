// Package query filters the rule catalog by free text and facet selections.
//
// Matching is a full scan on every call. Values selected within one field are
// alternatives; fields are combined with AND.
package query

import (
	"strings"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
)

// Match reports whether rule satisfies term and every field in sel.
func Match(rule *catalog.Rule, term string, sel Selection) bool {
	return newMatcher(term, sel).match(rule)
}

// Filter returns the rules matching term and sel, in catalog order. The
// result is always a new slice.
func Filter(rules []catalog.Rule, term string, sel Selection) []catalog.Rule {
	m := newMatcher(term, sel)
	out := make([]catalog.Rule, 0, len(rules))
	for i := range rules {
		if m.match(&rules[i]) {
			out = append(out, rules[i])
		}
	}
	return out
}

type matcher struct {
	needle string
	sel    Selection
}

func newMatcher(term string, sel Selection) matcher {
	return matcher{needle: strings.ToLower(term), sel: sel}
}

func (m matcher) match(r *catalog.Rule) bool {
	if m.needle != "" && !strings.Contains(searchText(r), m.needle) {
		return false
	}
	for field, selected := range m.sel {
		if len(selected) == 0 {
			continue
		}
		if !r.Facet(field).ContainsAny(selected) {
			return false
		}
	}
	return true
}

// searchText joins the present name, description and id, lower-cased.
func searchText(r *catalog.Rule) string {
	parts := make([]string, 0, 3)
	if r.Name != nil && *r.Name != "" {
		parts = append(parts, *r.Name)
	}
	if r.Description != nil && *r.Description != "" {
		parts = append(parts, *r.Description)
	}
	if r.ID != "" {
		parts = append(parts, r.ID)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
