package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
	"github.com/McPacket/detection-rules-explorer/internal/facets"
)

var buildTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func sampleRules() []catalog.Rule {
	name := "Suspicious login"
	return []catalog.Rule{
		{ID: "susp_login", Name: &name, Domain: catalog.Single("identity"), Tactics: catalog.List("initial_access"), SourcePath: "alerts/susp_login.yml"},
		{ID: "beacon", OS: catalog.List(), SourcePath: "net/beacon.yaml"},
	}
}

func TestWriteLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "data")
	rules := sampleRules()
	idx := facets.Build(rules, facets.DefaultFields)

	res, err := Write(dir, rules, idx, "2026.01.02.abc123", buildTime)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Manifest.TotalRules)
	assert.Equal(t, "2026-01-02T03:04:05Z", res.Manifest.GeneratedAt)
	assert.NotEmpty(t, res.Manifest.Checksums.Rules)
	assert.Greater(t, res.Bytes, 0)

	ds, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, ds.Manifest)
	assert.Equal(t, "2026.01.02.abc123", ds.Manifest.Version)
	assert.Equal(t, rules, ds.Catalog.Rules())
	assert.Equal(t, idx, ds.Index)
}

func TestWrite_RulesFileShape(t *testing.T) {
	dir := t.TempDir()
	rules := sampleRules()
	_, err := Write(dir, rules, facets.Build(rules, facets.DefaultFields), "v", buildTime)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, RulesFile))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "identity", raw[0]["domain"])
	assert.Equal(t, "alerts/susp_login.yml", raw[0]["source_path"])
	assert.NotContains(t, raw[0], "description")
	assert.NotContains(t, raw[1], "name")
	assert.Equal(t, []any{}, raw[1]["os"])
}

func TestWrite_EmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, nil, facets.Build(nil, facets.DefaultFields), "v", buildTime)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, RulesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	var raw struct {
		TotalRules int                        `json:"total_rules"`
		Filters    map[string][]facets.Count `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 0, raw.TotalRules)
	assert.Len(t, raw.Filters, len(facets.DefaultFields))
	for field, values := range raw.Filters {
		assert.NotNil(t, values, field)
		assert.Empty(t, values, field)
	}

	ds, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Catalog.Len())
}

func TestLoad_MissingArtifact(t *testing.T) {
	dir := t.TempDir()
	rules := sampleRules()
	_, err := Write(dir, rules, facets.Build(rules, facets.DefaultFields), "v", buildTime)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, IndexFile)))

	_, err = Load(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactsUnavailable))
}

func TestLoad_TamperedArtifact(t *testing.T) {
	dir := t.TempDir()
	rules := sampleRules()
	_, err := Write(dir, rules, facets.Build(rules, facets.DefaultFields), "v", buildTime)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, RulesFile), []byte(`[]`), 0o644))

	_, err = Load(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactsUnavailable))
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}

func TestLoad_WithoutManifest(t *testing.T) {
	dir := t.TempDir()
	rules := `[{"id":"a","tactics":["execution"],"source_path":"a.yml"}]`
	index := `{"total_rules":1,"filters":{"tactics":[{"value":"execution","count":1}]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, RulesFile), []byte(rules), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(index), 0o644))

	ds, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Nil(t, ds.Manifest)
	assert.Equal(t, 1, ds.Catalog.Len())
	assert.Equal(t, 1, ds.Index.Count("tactics", "execution"))
}

func TestLoad_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RulesFile), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(`{"total_rules":3,"filters":{}}`), 0o644))

	_, err := Load(context.Background(), dir)
	assert.True(t, errors.Is(err, ErrArtifactsUnavailable))
}
