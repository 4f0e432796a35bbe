// Package catalog reads YAML detection rule files and normalizes them into
// an ordered, read-only rule catalog.
package catalog

// Facet field names. These are also the JSON keys of the catalog artifact.
const (
	FieldDomain      = "domain"
	FieldType        = "type"
	FieldOS          = "os"
	FieldUseCases    = "use_cases"
	FieldTactics     = "tactics"
	FieldDataSources = "data_sources"
	FieldLanguage    = "language"
	FieldSeverity    = "severity"
)

// Record is the YAML source format for a single rule file. Keys not listed
// here are ignored.
type Record struct {
	ID          string  `yaml:"id"`
	Name        *string `yaml:"name"`
	Description *string `yaml:"description"`
	Domain      *Values `yaml:"domain"`
	Type        *Values `yaml:"type"`
	Language    *Values `yaml:"language"`
	Severity    *Values `yaml:"severity"`
	OS          *Values `yaml:"os"`
	UseCases    *Values `yaml:"use_cases"`
	Tactics     *Values `yaml:"tactics"`
	DataSources *Values `yaml:"data_sources"`
	Created     *string `yaml:"created"`
	Updated     *string `yaml:"updated"`
	Query       *string `yaml:"query"`
}

// Rule is a normalized catalog entry, serialized into the catalog artifact.
// Absent fields are nil and omitted from JSON.
type Rule struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Domain      *Values `json:"domain,omitempty"`
	Type        *Values `json:"type,omitempty"`
	OS          *Values `json:"os,omitempty"`
	UseCases    *Values `json:"use_cases,omitempty"`
	Tactics     *Values `json:"tactics,omitempty"`
	DataSources *Values `json:"data_sources,omitempty"`
	Language    *Values `json:"language,omitempty"`
	Severity    *Values `json:"severity,omitempty"`
	Created     *string `json:"created,omitempty"`
	Updated     *string `json:"updated,omitempty"`
	Query       *string `json:"query,omitempty"`
	SourcePath  string  `json:"source_path"`
}

// Facet returns the value of a facet field by name, or nil when the rule does
// not carry it or the name is not a facet field.
func (r *Rule) Facet(field string) *Values {
	switch field {
	case FieldDomain:
		return r.Domain
	case FieldType:
		return r.Type
	case FieldOS:
		return r.OS
	case FieldUseCases:
		return r.UseCases
	case FieldTactics:
		return r.Tactics
	case FieldDataSources:
		return r.DataSources
	case FieldLanguage:
		return r.Language
	case FieldSeverity:
		return r.Severity
	}
	return nil
}

// NameOrID is the display title of the rule.
func (r *Rule) NameOrID() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return r.ID
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// NameText returns the name, or "" when absent.
func (r *Rule) NameText() string { return str(r.Name) }

// DescriptionText returns the description, or "" when absent.
func (r *Rule) DescriptionText() string { return str(r.Description) }
