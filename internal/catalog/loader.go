package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadStats summarizes one load of a rules directory.
type LoadStats struct {
	Discovered int
	Parsed     int
	Failed     int
	Duplicates int
	Failures   []*RecordError
}

// Loader discovers rule files under a root directory and normalizes them.
type Loader struct {
	logger  *zap.SugaredLogger
	workers int
}

// NewLoader creates a loader that normalizes up to workers files at once.
// workers <= 0 means one per CPU.
func NewLoader(logger *zap.SugaredLogger, workers int) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Loader{logger: logger, workers: workers}
}

// Discover returns every .yml and .yaml file under root, recursively, in
// lexical order within each directory. Unreadable subdirectories are skipped
// with a warning.
func (l *Loader) Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("accessing rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			l.logger.Warnw("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isRuleFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking rules directory: %w", err)
	}
	return files, nil
}

func isRuleFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yml" || ext == ".yaml"
}

type loadResult struct {
	rule Rule
	err  error
}

// Load discovers and normalizes every rule file under root and builds the
// catalog. Files that fail to read or parse are dropped and reported in
// LoadStats; only a missing or unreadable root, or ctx cancellation, fails the
// whole load.
func (l *Loader) Load(ctx context.Context, root string) (*Catalog, LoadStats, error) {
	files, err := l.Discover(root)
	if err != nil {
		return nil, LoadStats{}, err
	}
	if len(files) == 0 {
		l.logger.Warnw("no rule files found", "root", root)
	}

	results := make([]loadResult, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = l.loadFile(root, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Discovered: len(files)}
	rules := make([]Rule, 0, len(files))
	for _, res := range results {
		if res.err != nil {
			var recErr *RecordError
			if !errors.As(res.err, &recErr) {
				recErr = &RecordError{Err: res.err}
			}
			stats.Failures = append(stats.Failures, recErr)
			l.logger.Warnw("skipping malformed rule file", "path", recErr.Path, "error", recErr.Err)
			continue
		}
		rules = append(rules, res.rule)
	}
	stats.Failed = len(stats.Failures)
	stats.Parsed = len(rules)

	c := New(rules, l.logger)
	stats.Duplicates = len(c.Duplicates())
	return c, stats, nil
}

func (l *Loader) loadFile(root, path string) loadResult {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	data, err := os.ReadFile(path)
	if err != nil {
		return loadResult{err: &RecordError{Path: rel, Err: fmt.Errorf("reading file: %w", err)}}
	}
	rule, err := Normalize(data, rel)
	if err != nil {
		return loadResult{err: &RecordError{Path: rel, Err: err}}
	}
	return loadResult{rule: rule}
}
