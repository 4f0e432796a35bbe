package query

import (
	"github.com/McPacket/detection-rules-explorer/internal/catalog"
)

// Session holds the mutable state of one browsing session over a fixed
// catalog: the search term and the active selection. It is not safe for
// concurrent use.
type Session struct {
	rules     []catalog.Rule
	term      string
	selection Selection
}

// NewSession starts a session with no term and no selection.
func NewSession(rules []catalog.Rule) *Session {
	return &Session{rules: rules, selection: NewSelection()}
}

// Term returns the current search term.
func (s *Session) Term() string { return s.term }

// SetTerm replaces the search term. "" disables text matching.
func (s *Session) SetTerm(term string) { s.term = term }

// Toggle flips one facet value in the selection.
func (s *Session) Toggle(field, value string) { s.selection.Toggle(field, value) }

// Selected reports whether value is selected for field.
func (s *Session) Selected(field, value string) bool { return s.selection.Has(field, value) }

// Selection returns a copy of the active selection.
func (s *Session) Selection() Selection { return s.selection.Clone() }

// ActiveCount is the number of selected values across all fields.
func (s *Session) ActiveCount() int { return s.selection.Count() }

// ClearFilters drops every selection and keeps the search term.
func (s *Session) ClearFilters() { s.selection = NewSelection() }

// ClearAll drops every selection and the search term.
func (s *Session) ClearAll() {
	s.ClearFilters()
	s.term = ""
}

// Total is the catalog size.
func (s *Session) Total() int { return len(s.rules) }

// Results recomputes the filtered rules for the current state.
func (s *Session) Results() []catalog.Rule {
	return Filter(s.rules, s.term, s.selection)
}
