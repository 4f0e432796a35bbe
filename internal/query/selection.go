package query

import "slices"

// Selection is the active filter set: field name to the values chosen for
// that field. A field with no chosen values has no entry.
type Selection map[string][]string

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return make(Selection)
}

// Toggle adds value to field if it is not selected and removes it otherwise.
// Removing the last value of a field removes the field.
func (s Selection) Toggle(field, value string) {
	current := s[field]
	if i := slices.Index(current, value); i >= 0 {
		next := slices.Delete(slices.Clone(current), i, i+1)
		if len(next) == 0 {
			delete(s, field)
			return
		}
		s[field] = next
		return
	}
	s[field] = append(slices.Clone(current), value)
}

// Has reports whether value is selected for field.
func (s Selection) Has(field, value string) bool {
	return slices.Contains(s[field], value)
}

// Count returns the number of selected values across all fields.
func (s Selection) Count() int {
	n := 0
	for _, values := range s {
		n += len(values)
	}
	return n
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for field, values := range s {
		out[field] = slices.Clone(values)
	}
	return out
}
