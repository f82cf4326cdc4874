// Package category resolves whether a product's categories fall under a rule's category.
package category

import (
	"sort"

	"price-list/core/types"
	"price-list/internal/errors"
)

// ParentLookup returns the parent of a category, ok=false for a root or unknown id
type ParentLookup interface {
	Parent(id string) (parent string, ok bool)
}

// Resolver matches product categories against rule categories
type Resolver struct {
	parents ParentLookup
}

// NewResolver creates a resolver over the given hierarchy
func NewResolver(parents ParentLookup) *Resolver {
	return &Resolver{parents: parents}
}

// Matches reports whether rule is nil, equal to one of productCategories,
// or an ancestor of one of them.
func (r *Resolver) Matches(productCategories []string, rule *string) bool {
	if rule == nil {
		return true
	}
	if len(productCategories) == 0 {
		return false
	}

	// Shared across starting points: a node already walked without a hit
	// cannot lead to one, and a cycle stops at its first repeat.
	visited := make(map[string]struct{})
	for _, start := range productCategories {
		for current, ok := start, true; ok; current, ok = r.parent(current) {
			if current == *rule {
				return true
			}
			if _, seen := visited[current]; seen {
				break
			}
			visited[current] = struct{}{}
		}
	}
	return false
}

// Ancestors returns id followed by its ancestors, nearest first
func (r *Resolver) Ancestors(id string) []string {
	var chain []string
	visited := make(map[string]struct{})
	for current, ok := id, true; ok; current, ok = r.parent(current) {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}
		chain = append(chain, current)
	}
	return chain
}

func (r *Resolver) parent(id string) (string, bool) {
	if r.parents == nil {
		return "", false
	}
	return r.parents.Parent(id)
}

// Tree is an in-memory category hierarchy
type Tree struct {
	categories map[string]types.Category
}

// NewTree builds a tree. Parents must reference declared categories.
func NewTree(categories ...types.Category) (*Tree, error) {
	t := &Tree{categories: make(map[string]types.Category, len(categories))}
	for _, c := range categories {
		if c.ID == "" {
			return nil, errors.Input("category id is required")
		}
		if _, dup := t.categories[c.ID]; dup {
			return nil, errors.Newf(errors.TypeInput, "duplicate category: %s", c.ID)
		}
		t.categories[c.ID] = c
	}
	for _, c := range t.categories {
		if c.ParentID == nil {
			continue
		}
		if _, ok := t.categories[*c.ParentID]; !ok {
			return nil, errors.Newf(errors.TypeInput, "category %s: unknown parent %s", c.ID, *c.ParentID)
		}
	}
	return t, nil
}

// Parent implements ParentLookup
func (t *Tree) Parent(id string) (string, bool) {
	c, ok := t.categories[id]
	if !ok || c.ParentID == nil {
		return "", false
	}
	return *c.ParentID, true
}

// Category looks up a category by id
func (t *Tree) Category(id string) (types.Category, bool) {
	c, ok := t.categories[id]
	return c, ok
}

// Categories returns all categories sorted by id
func (t *Tree) Categories() []types.Category {
	out := make([]types.Category, 0, len(t.categories))
	for _, c := range t.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
