package facets

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
)

func sampleRules() []catalog.Rule {
	return []catalog.Rule{
		{ID: "r1", Domain: catalog.Single("endpoint"), Tactics: catalog.List("persistence", "execution")},
		{ID: "r2", Domain: catalog.Single("network"), Tactics: catalog.List("execution")},
	}
}

func TestBuild_CountsPerField(t *testing.T) {
	idx := Build(sampleRules(), DefaultFields)

	assert.Equal(t, 2, idx.TotalRules)
	tactics, ok := idx.Field(catalog.FieldTactics)
	require.True(t, ok)
	assert.Equal(t, []Count{{Value: "execution", Count: 2}, {Value: "persistence", Count: 1}}, tactics)

	domains, _ := idx.Field(catalog.FieldDomain)
	assert.Equal(t, []Count{{Value: "endpoint", Count: 1}, {Value: "network", Count: 1}}, domains)

	os, ok := idx.Field(catalog.FieldOS)
	require.True(t, ok)
	assert.Empty(t, os)

	assert.Equal(t, 2, idx.Count(catalog.FieldTactics, "execution"))
	assert.Equal(t, 0, idx.Count(catalog.FieldTactics, "exfiltration"))
	assert.Equal(t, 0, idx.Count("nope", "execution"))
}

func TestBuild_FieldOrderFollowsConfig(t *testing.T) {
	idx := Build(nil, DefaultFields)
	require.Len(t, idx.Filters, len(DefaultFields))
	for i, f := range idx.Filters {
		assert.Equal(t, DefaultFields[i], f.Name)
	}
}

func TestBuild_DeterministicAcrossOrder(t *testing.T) {
	rules := []catalog.Rule{
		{ID: "a", Severity: catalog.Single("high"), OS: catalog.List("windows", "linux")},
		{ID: "b", Severity: catalog.Single("low"), OS: catalog.Single("macos")},
		{ID: "c", Severity: catalog.Single("high"), OS: catalog.List("linux")},
		{ID: "d", Type: catalog.Single("eql")},
		{ID: "e", Severity: catalog.Single("critical"), UseCases: catalog.List("threat_hunting")},
	}
	want := Build(rules, DefaultFields)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]catalog.Rule(nil), rules...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Build(shuffled, DefaultFields))
	}
}

func TestBuild_ScalarCountConservation(t *testing.T) {
	rules := []catalog.Rule{
		{ID: "a", Severity: catalog.Single("high")},
		{ID: "b", Severity: catalog.Single("low")},
		{ID: "c", Severity: catalog.Single("high")},
		{ID: "d"},
		{ID: "e", Severity: catalog.Single("")},
	}
	idx := Build(rules, []string{catalog.FieldSeverity})

	values, _ := idx.Field(catalog.FieldSeverity)
	sum := 0
	for _, v := range values {
		sum += v.Count
	}
	assert.Equal(t, 3, sum, "absent and empty severities contribute nothing")
	assert.Equal(t, 5, idx.TotalRules)
}

func TestBuild_SequenceRepeatsCountOnce(t *testing.T) {
	rules := []catalog.Rule{{ID: "a", Tactics: catalog.List("execution", "execution")}}
	idx := Build(rules, []string{catalog.FieldTactics})
	assert.Equal(t, 1, idx.Count(catalog.FieldTactics, "execution"))
}

func TestBuild_ScalarInSequenceField(t *testing.T) {
	rules := []catalog.Rule{
		{ID: "a", OS: catalog.Single("windows")},
		{ID: "b", OS: catalog.List("windows", "linux")},
	}
	idx := Build(rules, []string{catalog.FieldOS})
	values, _ := idx.Field(catalog.FieldOS)
	assert.Equal(t, []Count{{Value: "linux", Count: 1}, {Value: "windows", Count: 2}}, values)
}

func TestBuild_CodePointOrder(t *testing.T) {
	rules := []catalog.Rule{
		{ID: "a", Domain: catalog.Single("beta")},
		{ID: "b", Domain: catalog.Single("Zeta")},
		{ID: "c", Domain: catalog.Single("alpha")},
	}
	values, _ := Build(rules, []string{catalog.FieldDomain}).Field(catalog.FieldDomain)
	require.Len(t, values, 3)
	assert.Equal(t, "Zeta", values[0].Value)
	assert.Equal(t, "alpha", values[1].Value)
	assert.Equal(t, "beta", values[2].Value)
}

func TestIndex_JSONKeepsFieldOrder(t *testing.T) {
	idx := Build(sampleRules(), DefaultFields)
	data, err := json.Marshal(idx)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `{"total_rules":2,"filters":{"domain":[`), s)
	assert.Less(t, strings.Index(s, `"type"`), strings.Index(s, `"os"`))
	assert.Less(t, strings.Index(s, `"data_sources"`), strings.Index(s, `"severity"`))
	assert.Contains(t, s, `"os":[]`)

	var back Index
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, idx, &back)
}

func TestFilters_UnmarshalRejectsNonObject(t *testing.T) {
	var f Filters
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &f))
}
