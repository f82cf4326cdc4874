package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-list/core/types"
	"price-list/internal/errors"
)

// parentMap is a ParentLookup that allows cycles
type parentMap map[string]string

func (m parentMap) Parent(id string) (string, bool) {
	p, ok := m[id]
	return p, ok
}

func foodTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree(
		types.Category{ID: "food"},
		types.Category{ID: "fruit", ParentID: types.Ptr("food")},
		types.Category{ID: "citrus", ParentID: types.Ptr("fruit")},
		types.Category{ID: "tools"},
	)
	require.NoError(t, err)
	return tree
}

func TestMatches(t *testing.T) {
	resolver := NewResolver(foodTree(t))

	tests := []struct {
		name       string
		categories []string
		rule       *string
		expected   bool
	}{
		{name: "no rule category matches anything", categories: nil, rule: nil, expected: true},
		{name: "no product categories", categories: nil, rule: types.Ptr("food"), expected: false},
		{name: "equal category", categories: []string{"food"}, rule: types.Ptr("food"), expected: true},
		{name: "child of rule category", categories: []string{"fruit"}, rule: types.Ptr("food"), expected: true},
		{name: "grandchild of rule category", categories: []string{"citrus"}, rule: types.Ptr("food"), expected: true},
		{name: "ancestor of rule category", categories: []string{"food"}, rule: types.Ptr("citrus"), expected: false},
		{name: "unrelated category", categories: []string{"tools"}, rule: types.Ptr("food"), expected: false},
		{name: "any of several categories", categories: []string{"tools", "citrus"}, rule: types.Ptr("fruit"), expected: true},
		{name: "unknown product category", categories: []string{"ghost"}, rule: types.Ptr("food"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolver.Matches(tt.categories, tt.rule))
		})
	}
}

func TestMatchesTerminatesOnCycle(t *testing.T) {
	resolver := NewResolver(parentMap{"a": "b", "b": "c", "c": "a"})

	assert.True(t, resolver.Matches([]string{"a"}, types.Ptr("c")))
	assert.False(t, resolver.Matches([]string{"a"}, types.Ptr("z")))
	assert.False(t, resolver.Matches([]string{"a", "b"}, types.Ptr("z")))
}

func TestMatchesWithoutHierarchy(t *testing.T) {
	resolver := NewResolver(nil)
	assert.True(t, resolver.Matches([]string{"fruit"}, types.Ptr("fruit")))
	assert.False(t, resolver.Matches([]string{"fruit"}, types.Ptr("food")))
}

func TestAncestors(t *testing.T) {
	resolver := NewResolver(foodTree(t))
	assert.Equal(t, []string{"citrus", "fruit", "food"}, resolver.Ancestors("citrus"))

	cyclic := NewResolver(parentMap{"a": "b", "b": "a"})
	assert.Equal(t, []string{"a", "b"}, cyclic.Ancestors("a"))
}

func TestNewTreeValidation(t *testing.T) {
	_, err := NewTree(types.Category{ID: "fruit", ParentID: types.Ptr("food")})
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = NewTree(types.Category{ID: "food"}, types.Category{ID: "food"})
	assert.True(t, errors.IsType(err, errors.TypeInput))

	tree := foodTree(t)
	parent, ok := tree.Parent("citrus")
	require.True(t, ok)
	assert.Equal(t, "fruit", parent)

	_, ok = tree.Parent("food")
	assert.False(t, ok)
	assert.Len(t, tree.Categories(), 4)
}
