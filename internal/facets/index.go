// Package facets builds the per-field distinct value and count table shown
// next to the rule list.
//
// Counts are computed once over the full catalog. They describe how common a
// value is overall, not how many rules would remain under the current filters.
package facets

import (
	"sort"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
)

// DefaultFields is the filterable field list, in display order.
var DefaultFields = []string{
	catalog.FieldDomain,
	catalog.FieldType,
	catalog.FieldOS,
	catalog.FieldUseCases,
	catalog.FieldTactics,
	catalog.FieldDataSources,
	catalog.FieldLanguage,
	catalog.FieldSeverity,
}

// Count is one distinct value of a field and the number of rules carrying it.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Field holds the sorted counts for one filterable field.
type Field struct {
	Name   string
	Values []Count
}

// Index is the facet index artifact.
type Index struct {
	TotalRules int     `json:"total_rules"`
	Filters    Filters `json:"filters"`
}

// Build computes the index for fields over rules. Values are sorted by byte
// order; empty strings are never counted. A rule counts at most once per value
// even if a sequence repeats it.
func Build(rules []catalog.Rule, fields []string) *Index {
	idx := &Index{
		TotalRules: len(rules),
		Filters:    make(Filters, 0, len(fields)),
	}
	for _, field := range fields {
		idx.Filters = append(idx.Filters, Field{Name: field, Values: countField(rules, field)})
	}
	return idx
}

func countField(rules []catalog.Rule, field string) []Count {
	counts := make(map[string]int)
	seen := make(map[string]struct{})
	for i := range rules {
		clear(seen)
		for _, v := range rules[i].Facet(field).Items() {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			counts[v]++
		}
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	out := make([]Count, 0, len(values))
	for _, v := range values {
		out = append(out, Count{Value: v, Count: counts[v]})
	}
	return out
}

// Field returns the counts for a field and whether the index has it.
func (ix *Index) Field(name string) ([]Count, bool) {
	for _, f := range ix.Filters {
		if f.Name == name {
			return f.Values, true
		}
	}
	return nil, false
}

// Count returns the catalog-wide count for one field value, or 0.
func (ix *Index) Count(field, value string) int {
	values, _ := ix.Field(field)
	i := sort.Search(len(values), func(i int) bool { return values[i].Value >= value })
	if i < len(values) && values[i].Value == value {
		return values[i].Count
	}
	return 0
}
