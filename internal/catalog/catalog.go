package catalog

import (
	"go.uber.org/zap"
)

// Catalog is the ordered collection of normalized rules. Order is discovery
// order and is the canonical display order. A Catalog is never modified after
// New returns.
type Catalog struct {
	rules      []Rule
	byID       map[string]int
	duplicates []Duplicate
}

// Duplicate records a rule whose id was already taken by an earlier rule.
type Duplicate struct {
	ID           string
	Path         string
	PreviousPath string
}

// New builds a catalog from rules in the order given. Rules sharing an id are
// all kept; each repeat is logged and reported by Duplicates, and Lookup
// resolves to the last one.
func New(rules []Rule, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &Catalog{
		rules: make([]Rule, len(rules)),
		byID:  make(map[string]int, len(rules)),
	}
	copy(c.rules, rules)

	for i := range c.rules {
		r := &c.rules[i]
		if prev, ok := c.byID[r.ID]; ok {
			d := Duplicate{ID: r.ID, Path: r.SourcePath, PreviousPath: c.rules[prev].SourcePath}
			c.duplicates = append(c.duplicates, d)
			logger.Warnw("duplicate rule id", "id", d.ID, "path", d.Path, "previous_path", d.PreviousPath)
		}
		c.byID[r.ID] = i
	}

	logger.Debugw("catalog assembled", "rules", len(c.rules), "duplicates", len(c.duplicates))
	return c
}

// Rules returns the catalog in display order. The slice is shared and must
// not be modified.
func (c *Catalog) Rules() []Rule {
	return c.rules
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Lookup returns the last rule discovered with the given id.
func (c *Catalog) Lookup(id string) (*Rule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.rules[i], true
}

// Duplicates returns every repeated id in discovery order.
func (c *Catalog) Duplicates() []Duplicate {
	return c.duplicates
}
