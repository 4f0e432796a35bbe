package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
	"github.com/McPacket/detection-rules-explorer/internal/facets"
)

// Dataset is a fully loaded pair of artifacts. Manifest is nil for output
// directories written without one.
type Dataset struct {
	Catalog  *catalog.Catalog
	Index    *facets.Index
	Manifest *Manifest
}

// Load reads both artifacts from dir. It returns a Dataset only when both
// are present, parse, agree on the rule count, and match the manifest
// checksums; every other outcome wraps ErrArtifactsUnavailable.
func Load(ctx context.Context, dir string) (*Dataset, error) {
	var rulesData, indexData, manifestData []byte

	g, gCtx := errgroup.WithContext(ctx)
	read := func(name string, dst *[]byte, optional bool) func() error {
		return func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				if optional && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return fmt.Errorf("reading %s: %w", name, err)
			}
			*dst = data
			return nil
		}
	}
	g.Go(read(RulesFile, &rulesData, false))
	g.Go(read(IndexFile, &indexData, false))
	g.Go(read(ManifestFile, &manifestData, true))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactsUnavailable, err)
	}

	ds, err := decode(rulesData, indexData, manifestData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactsUnavailable, err)
	}
	return ds, nil
}

func decode(rulesData, indexData, manifestData []byte) (*Dataset, error) {
	var manifest *Manifest
	if manifestData != nil {
		manifest = &Manifest{}
		if err := json.Unmarshal(manifestData, manifest); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
		}
		if got := checksum(rulesData); got != manifest.Checksums.Rules {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, RulesFile)
		}
		if got := checksum(indexData); got != manifest.Checksums.Index {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, IndexFile)
		}
	}

	var rules []catalog.Rule
	if err := json.Unmarshal(rulesData, &rules); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", RulesFile, err)
	}
	var index facets.Index
	if err := json.Unmarshal(indexData, &index); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", IndexFile, err)
	}
	if index.TotalRules != len(rules) {
		return nil, fmt.Errorf("index reports %d rules, catalog has %d", index.TotalRules, len(rules))
	}

	return &Dataset{
		Catalog:  catalog.New(rules, nil),
		Index:    &index,
		Manifest: manifest,
	}, nil
}
