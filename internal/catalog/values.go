package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Values is a facet field that rule authors write either as a single scalar
// ("domain: endpoint") or as a sequence ("os: [windows, macos]"). The written
// shape is kept so the catalog artifact round-trips the way it was written.
//
// A nil *Values means the field was absent. A sequence with no elements is
// present but contributes nothing to facet counts.
type Values struct {
	items []string
	list  bool
}

// Single returns a scalar-shaped value.
func Single(v string) *Values {
	return &Values{items: []string{v}}
}

// List returns a sequence-shaped value.
func List(vs ...string) *Values {
	items := make([]string, len(vs))
	copy(items, vs)
	return &Values{items: items, list: true}
}

// IsList reports whether the field was written as a sequence.
func (v *Values) IsList() bool {
	return v != nil && v.list
}

// Items returns the values in source order. The slice must not be modified.
func (v *Values) Items() []string {
	if v == nil {
		return nil
	}
	return v.items
}

// Len returns the number of values.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.items)
}

// Contains reports whether s equals the scalar or is an element of the sequence.
func (v *Values) Contains(s string) bool {
	if v == nil {
		return false
	}
	for _, item := range v.items {
		if item == s {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of candidates is contained.
func (v *Values) ContainsAny(candidates []string) bool {
	for _, c := range candidates {
		if v.Contains(c) {
			return true
		}
	}
	return false
}

// UnmarshalYAML accepts a scalar or a sequence of scalars. Null and empty
// sequence elements are dropped.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*v = Values{}
			return nil
		}
		*v = Values{items: []string{node.Value}}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for i, elem := range node.Content {
			elem = resolveAlias(elem)
			if elem.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: element %d: expected a scalar", elem.Line, i)
			}
			if elem.ShortTag() == "!!null" || elem.Value == "" {
				continue
			}
			items = append(items, elem.Value)
		}
		*v = Values{items: items, list: true}
		return nil
	default:
		return fmt.Errorf("line %d: expected a scalar or a sequence", node.Line)
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// MarshalJSON writes a sequence as an array and a scalar as a string.
func (v Values) MarshalJSON() ([]byte, error) {
	if v.list {
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	}
	if len(v.items) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(v.items[0])
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Values) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if items == nil {
			items = []string{}
		}
		*v = Values{items: items, list: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Values{items: []string{s}}
	return nil
}
