package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
	"github.com/McPacket/detection-rules-explorer/internal/facets"
	"github.com/McPacket/detection-rules-explorer/internal/pipeline"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// outputAsJSON writes v as indented JSON
func outputAsJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSection(w io.Writer, title string) {
	headerColor.Fprintf(w, "▶ %s\n", title)
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		value = "(not set)"
	}
	fmt.Fprintf(w, "  %-18s %s\n", label+":", value)
}

// humanize turns a field name into a label. Only the first underscore is
// replaced, which is how the browser UI labels its filter groups.
func humanize(field string) string {
	return strings.Replace(field, "_", " ", 1)
}

func formatValues(v *catalog.Values) string {
	return strings.Join(v.Items(), ", ")
}

type buildSummary struct {
	Version     string         `json:"version"`
	Discovered  int            `json:"discovered"`
	Parsed      int            `json:"parsed"`
	Failed      int            `json:"failed"`
	Duplicates  int            `json:"duplicates"`
	TotalRules  int            `json:"total_rules"`
	FacetValues map[string]int `json:"facet_values"`
	RulesPath   string         `json:"rules_path"`
	IndexPath   string         `json:"index_path"`
	Bytes       int            `json:"bytes"`
	DurationMS  int64          `json:"duration_ms"`
	Failures    []string       `json:"failures,omitempty"`
}

func buildSummaryOf(res *pipeline.Result) buildSummary {
	s := buildSummary{
		Version:     res.Write.Manifest.Version,
		Discovered:  res.Stats.Discovered,
		Parsed:      res.Stats.Parsed,
		Failed:      res.Stats.Failed,
		Duplicates:  res.Stats.Duplicates,
		TotalRules:  res.Index.TotalRules,
		FacetValues: make(map[string]int, len(res.Index.Filters)),
		RulesPath:   res.Write.RulesPath,
		IndexPath:   res.Write.IndexPath,
		Bytes:       res.Write.Bytes,
		DurationMS:  res.Duration.Milliseconds(),
	}
	for _, f := range res.Index.Filters {
		s.FacetValues[f.Name] = len(f.Values)
	}
	for _, fail := range res.Stats.Failures {
		s.Failures = append(s.Failures, fail.Error())
	}
	return s
}

func printBuildSummary(w io.Writer, res *pipeline.Result) {
	successColor.Fprintf(w, "✓ Built catalog of %d rules (version %s)\n", res.Catalog.Len(), res.Write.Manifest.Version)
	fmt.Fprintln(w)

	printSection(w, "Files")
	printField(w, "Discovered", fmt.Sprintf("%d", res.Stats.Discovered))
	printField(w, "Parsed", fmt.Sprintf("%d", res.Stats.Parsed))
	printField(w, "Failed", fmt.Sprintf("%d", res.Stats.Failed))
	printField(w, "Duplicate IDs", fmt.Sprintf("%d", res.Stats.Duplicates))
	fmt.Fprintln(w)

	printSection(w, "Unique values")
	for _, f := range res.Index.Filters {
		if len(f.Values) == 0 {
			continue
		}
		printField(w, humanize(f.Name), fmt.Sprintf("%d", len(f.Values)))
	}
	fmt.Fprintln(w)

	printSection(w, "Output")
	printField(w, "Rules", res.Write.RulesPath)
	printField(w, "Index", res.Write.IndexPath)
	printField(w, "Size", fmt.Sprintf("%.1f KB", float64(res.Write.Bytes)/1024))
	printField(w, "Took", res.Duration.Round(time.Millisecond).String())

	if len(res.Stats.Failures) > 0 {
		fmt.Fprintln(w)
		warningColor.Fprintf(w, "Skipped %d malformed rule files:\n", len(res.Stats.Failures))
		for _, fail := range res.Stats.Failures {
			warningColor.Fprintf(w, "  - %s\n", fail.Error())
		}
	}
}

func printResultHeader(w io.Writer, matched, total, active int) {
	msg := fmt.Sprintf("Showing %d of %d rules", matched, total)
	if active > 0 {
		plural := "s"
		if active == 1 {
			plural = ""
		}
		msg += fmt.Sprintf(" (%d filter%s applied)", active, plural)
	}
	headerColor.Fprintln(w, msg)
	if matched == 0 {
		warningColor.Fprintln(w, "No rules found. Try adjusting the search or filters.")
	}
}

// printRuleLine prints one search hit: id, title and its domain and severity.
func printRuleLine(w io.Writer, r *catalog.Rule) {
	var tags []string
	for _, v := range []*catalog.Values{r.Domain, r.Severity} {
		if v.Len() > 0 {
			tags = append(tags, formatValues(v))
		}
	}
	line := fmt.Sprintf("%-32s %s", r.ID, r.NameOrID())
	if len(tags) > 0 {
		line += infoColor.Sprintf("  [%s]", strings.Join(tags, " | "))
	}
	fmt.Fprintln(w, line)
}

func printRuleDetail(w io.Writer, r *catalog.Rule) {
	headerColor.Fprintln(w, r.NameOrID())
	fmt.Fprintln(w)

	printSection(w, "Rule")
	printField(w, "ID", r.ID)
	printField(w, "Name", r.NameText())
	printField(w, "Description", r.DescriptionText())
	printField(w, "Source", r.SourcePath)
	if r.Created != nil {
		printField(w, "Created", *r.Created)
	}
	if r.Updated != nil {
		printField(w, "Updated", *r.Updated)
	}
	fmt.Fprintln(w)

	printSection(w, "Facets")
	for _, field := range facets.DefaultFields {
		printField(w, humanize(field), formatValues(r.Facet(field)))
	}

	if r.Query != nil && *r.Query != "" {
		fmt.Fprintln(w)
		printSection(w, "Query")
		for _, line := range strings.Split(strings.TrimRight(*r.Query, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func printFacet(w io.Writer, f facets.Field) {
	fmt.Fprintln(w)
	infoColor.Fprintf(w, "%s (%d)\n", humanize(f.Name), len(f.Values))
	if len(f.Values) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, c := range f.Values {
		fmt.Fprintf(w, "  %-40s %d\n", c.Value, c.Count)
	}
}
