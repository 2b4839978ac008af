package search

import (
	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
)

// DefaultIndexPattern prefixes every collection name.
const DefaultIndexPattern = "collab-data-"

// Index is one search-engine collection and the result type its documents map to.
type Index struct {
	Name     string
	Type     result.Type
	Category category.Category
}

// collections lists the indexed collection per result type, grouped by category.
var collections = []struct {
	category category.Category
	typ      result.Type
	name     string
	public   bool
}{
	{category.Spaces, result.TypeSpace, "spaces", true},
	{category.Spaces, result.TypeSubspace, "subspaces", true},
	{category.Contributors, result.TypeUser, "users", false},
	{category.Contributors, result.TypeOrganization, "organizations", false},
	{category.CollaborationTools, result.TypeCallout, "callouts", false},
	{category.Responses, result.TypePost, "posts", true},
	{category.Responses, result.TypeWhiteboard, "whiteboards", true},
	{category.Responses, result.TypeMemo, "memos", true},
}

// Router maps category filters to the collections a search must query.
// Its tables are built once and never mutated.
type Router struct {
	byCategory map[category.Category][]Index
	public     map[string]bool
	all        []Index
}

// NewRouter builds the routing tables for collections named pattern+collection.
// An empty pattern falls back to DefaultIndexPattern.
func NewRouter(pattern string) *Router {
	if pattern == "" {
		pattern = DefaultIndexPattern
	}

	r := &Router{
		byCategory: make(map[category.Category][]Index),
		public:     make(map[string]bool),
	}
	for _, c := range collections {
		idx := Index{Name: pattern + c.name, Type: c.typ, Category: c.category}
		r.byCategory[c.category] = append(r.byCategory[c.category], idx)
		r.all = append(r.all, idx)
		if c.public {
			r.public[idx.Name] = true
		}
	}
	return r
}

// Indexes returns every routed collection.
func (r *Router) Indexes() []Index {
	out := make([]Index, len(r.all))
	copy(out, r.all)
	return out
}

// AllowedTypes returns the result types the category is served by.
func (r *Router) AllowedTypes(c category.Category) []result.Type {
	idxs := r.byCategory[c]
	out := make([]result.Type, len(idxs))
	for i, idx := range idxs {
		out[i] = idx.Type
	}
	return out
}

// IsPublic reports whether the collection may be searched for anonymous callers.
func (r *Router) IsPublic(name string) bool { return r.public[name] }

// Route returns the collections to query for filters. No filters means every
// category. A filter's types narrow its own category only. With publicOnly the
// result is further narrowed to public-safe collections. The result is empty,
// never an error, when nothing remains.
func (r *Router) Route(filters []request.CategoryFilter, publicOnly bool) []Index {
	if len(filters) == 0 {
		filters = request.DefaultFilters()
	}

	var out []Index
	seen := make(map[string]bool)
	for _, f := range filters {
		allowed := typeSet(f.Types)
		for _, idx := range r.byCategory[f.Category] {
			if allowed != nil && !allowed[idx.Type] {
				continue
			}
			if publicOnly && !r.public[idx.Name] {
				continue
			}
			if seen[idx.Name] {
				continue
			}
			seen[idx.Name] = true
			out = append(out, idx)
		}
	}
	return out
}

func typeSet(types []result.Type) map[result.Type]bool {
	if len(types) == 0 {
		return nil
	}
	m := make(map[result.Type]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}
