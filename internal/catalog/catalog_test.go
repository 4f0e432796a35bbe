package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNew_PreservesOrder(t *testing.T) {
	rules := []Rule{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	c := New(rules, nil)

	require.Equal(t, 3, c.Len())
	assert.Equal(t, "c", c.Rules()[0].ID)
	assert.Equal(t, "a", c.Rules()[1].ID)
	assert.Equal(t, "b", c.Rules()[2].ID)

	rules[0].ID = "mutated"
	assert.Equal(t, "c", c.Rules()[0].ID, "catalog must not alias the input slice")
}

func TestNew_DuplicatesKeptLookupLastWins(t *testing.T) {
	rules := []Rule{
		{ID: "dup", Name: strPtr("first"), SourcePath: "a/dup.yml"},
		{ID: "other", SourcePath: "other.yml"},
		{ID: "dup", Name: strPtr("second"), SourcePath: "b/dup.yml"},
	}
	c := New(rules, nil)

	assert.Equal(t, 3, c.Len())
	require.Len(t, c.Duplicates(), 1)
	assert.Equal(t, Duplicate{ID: "dup", Path: "b/dup.yml", PreviousPath: "a/dup.yml"}, c.Duplicates()[0])

	r, ok := c.Lookup("dup")
	require.True(t, ok)
	assert.Equal(t, "second", r.NameText())

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestRule_Facet(t *testing.T) {
	r := Rule{Domain: Single("endpoint"), Tactics: List("execution")}
	assert.Equal(t, r.Domain, r.Facet(FieldDomain))
	assert.Equal(t, r.Tactics, r.Facet(FieldTactics))
	assert.Nil(t, r.Facet(FieldOS))
	assert.Nil(t, r.Facet("query"))
}

func TestRule_NameOrID(t *testing.T) {
	assert.Equal(t, "id-only", (&Rule{ID: "id-only"}).NameOrID())
	assert.Equal(t, "Named", (&Rule{ID: "x", Name: strPtr("Named")}).NameOrID())
}
