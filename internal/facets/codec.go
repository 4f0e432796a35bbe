package facets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Filters is the ordered "filters" object of the index artifact. It encodes
// as a JSON object whose keys keep field order, which encoding/json maps
// would sort.
type Filters []Field

func (f Filters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		values := field.Values
		if values == nil {
			values = []Count{}
		}
		val, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Filters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("filters: expected object, got %v", tok)
	}

	out := Filters{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("filters: expected field name, got %v", tok)
		}
		var values []Count
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("filters: field %q: %w", name, err)
		}
		if values == nil {
			values = []Count{}
		}
		out = append(out, Field{Name: name, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}
