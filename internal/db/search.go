package db

import "github.com/kailas-cloud/collabsearch/internal/domain/search/filter"

// TextQuery is the input for one full-text sub-query.
// Terms are OR-ed and matched across every TEXT field of the index, so a
// document scores higher the more term/field combinations it matches.
type TextQuery struct {
	IndexName string
	Terms     []string
	// TagField, when set, widens matching to documents whose tag field holds
	// any of TagValues.
	TagField     string
	TagValues    []string
	Filters      filter.Expression
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// MultiSearchItem is the outcome of one sub-query of a MultiSearch.
type MultiSearchItem struct {
	Result *SearchResult
	Err    error
}
