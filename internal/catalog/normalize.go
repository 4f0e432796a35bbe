package catalog

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Normalize parses one rule file and converts it into a Rule. relPath is the
// file location relative to the rules root; it becomes the rule's source_path
// and supplies the id when the file has none.
func Normalize(data []byte, relPath string) (Rule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Rule{}, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Rule{}, ErrEmptyDocument
	}
	if root := resolveAlias(doc.Content[0]); root.Kind != yaml.MappingNode {
		return Rule{}, ErrNotMapping
	}

	var rec Record
	if err := doc.Decode(&rec); err != nil {
		return Rule{}, fmt.Errorf("decoding rule: %w", err)
	}

	slashed := filepath.ToSlash(relPath)
	id := rec.ID
	if id == "" {
		id = idFromPath(slashed)
	}

	return Rule{
		ID:          id,
		Name:        rec.Name,
		Description: rec.Description,
		Domain:      rec.Domain,
		Type:        rec.Type,
		OS:          rec.OS,
		UseCases:    rec.UseCases,
		Tactics:     rec.Tactics,
		DataSources: rec.DataSources,
		Language:    rec.Language,
		Severity:    rec.Severity,
		Created:     rec.Created,
		Updated:     rec.Updated,
		Query:       rec.Query,
		SourcePath:  slashed,
	}, nil
}

// idFromPath strips the directory and the last extension from a slash path.
// A bare dotfile such as ".yml" keeps its full name so the id is never empty.
func idFromPath(p string) string {
	base := path.Base(p)
	if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" {
		return stem
	}
	return base
}
