// Package artifact persists and loads the two derived files consumed by the
// explorer UI: the rule catalog and the facet index.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
	"github.com/McPacket/detection-rules-explorer/internal/facets"
)

// File names inside the output directory.
const (
	RulesFile    = "rules.json"
	IndexFile    = "index.json"
	ManifestFile = "manifest.json"
)

var (
	// ErrArtifactsUnavailable means the catalog or index could not be loaded
	// in full. Callers may retry once the build has been rerun.
	ErrArtifactsUnavailable = errors.New("rule artifacts unavailable")
	ErrChecksumMismatch     = errors.New("artifact checksum mismatch")
)

// Manifest describes one build. It is written last, so its presence means
// both artifacts were written completely.
type Manifest struct {
	Version     string    `json:"version"`
	GeneratedAt string    `json:"generated_at"`
	TotalRules  int       `json:"total_rules"`
	Checksums   Checksums `json:"checksums"`
}

// Checksums are hex SHA-256 digests of the artifact files.
type Checksums struct {
	Rules string `json:"rules"`
	Index string `json:"index"`
}

// WriteResult reports what Write produced.
type WriteResult struct {
	Manifest  Manifest
	RulesPath string
	IndexPath string
	Bytes     int
}

// Write serializes rules and index into dir, creating it if needed. Each
// file is replaced atomically.
func Write(dir string, rules []catalog.Rule, index *facets.Index, version string, now time.Time) (*WriteResult, error) {
	if rules == nil {
		rules = []catalog.Rule{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	rulesData, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}
	indexData, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling index: %w", err)
	}

	manifest := Manifest{
		Version:     version,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		TotalRules:  len(rules),
		Checksums: Checksums{
			Rules: checksum(rulesData),
			Index: checksum(indexData),
		},
	}
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}

	res := &WriteResult{
		Manifest:  manifest,
		RulesPath: filepath.Join(dir, RulesFile),
		IndexPath: filepath.Join(dir, IndexFile),
		Bytes:     len(rulesData) + len(indexData),
	}
	if err := writeFileAtomic(res.RulesPath, rulesData); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(res.IndexPath, indexData); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(dir, ManifestFile), manifestData); err != nil {
		return nil, err
	}
	return res, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
