// Package pipeline runs the batch build: discover rule files, normalize them,
// build the catalog and facet index, and persist both artifacts.
package pipeline

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/McPacket/detection-rules-explorer/internal/artifact"
	"github.com/McPacket/detection-rules-explorer/internal/catalog"
	"github.com/McPacket/detection-rules-explorer/internal/config"
	"github.com/McPacket/detection-rules-explorer/internal/facets"
	"github.com/McPacket/detection-rules-explorer/internal/metrics"
)

// Result describes one completed build.
type Result struct {
	Stats    catalog.LoadStats
	Catalog  *catalog.Catalog
	Index    *facets.Index
	Write    *artifact.WriteResult
	Duration time.Duration
}

// Run performs a full build. A missing rules root fails before anything is
// written; malformed rule files are skipped and reported in Result.Stats.
func Run(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (res *Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveBuild(start, err)
		if cfg.Metrics.Textfile != "" {
			if werr := metrics.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
				logger.Warnw("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", werr)
			}
		}
	}()

	logger.Infow("searching for rule files", "root", cfg.RulesDir)

	loader := catalog.NewLoader(logger, cfg.Workers)
	cat, stats, err := loader.Load(ctx, cfg.RulesDir)
	if err != nil {
		return nil, err
	}
	metrics.FilesDiscovered.Add(float64(stats.Discovered))
	metrics.RulesParsed.Add(float64(stats.Parsed))
	metrics.RulesFailed.Add(float64(stats.Failed))
	metrics.DuplicateIDs.Add(float64(stats.Duplicates))

	idx := facets.Build(cat.Rules(), facets.DefaultFields)

	version := cfg.Version
	if version == "" {
		version = GitVersion(cfg.RulesDir)
	}
	written, err := artifact.Write(cfg.OutputDir, cat.Rules(), idx, version, time.Now())
	if err != nil {
		return nil, err
	}

	metrics.CatalogRules.Set(float64(cat.Len()))
	for _, f := range idx.Filters {
		metrics.FacetValues.WithLabelValues(f.Name).Set(float64(len(f.Values)))
	}

	res = &Result{
		Stats:    stats,
		Catalog:  cat,
		Index:    idx,
		Write:    written,
		Duration: time.Since(start),
	}
	logger.Infow("catalog built",
		"discovered", stats.Discovered,
		"parsed", stats.Parsed,
		"failed", stats.Failed,
		"duplicates", stats.Duplicates,
		"rules_path", written.RulesPath,
		"index_path", written.IndexPath,
		"bytes", written.Bytes,
		"version", version,
		"duration", res.Duration,
	)
	for _, f := range idx.Filters {
		if len(f.Values) > 0 {
			logger.Debugw("facet summary", "field", f.Name, "unique_values", len(f.Values))
		}
	}
	return res, nil
}

// GitVersion returns "<date>.<short sha>" for the repository containing dir,
// or just the date outside a git checkout.
func GitVersion(dir string) string {
	date := time.Now().UTC().Format("2006.01.02")
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return date
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return date
	}
	return date + "." + sha
}
