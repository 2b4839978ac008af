package search

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
)

// Document fields every collection carries.
const (
	FieldID      = "id"
	FieldType    = "type"
	FieldSpaceID = "spaceID"
	FieldTagsets = "tagsets"
)

// returnFields are the only fields fetched per hit.
var returnFields = []string{FieldID, FieldType}

// Query is the match clause shared by every sub-query of one search.
type Query struct {
	terms     []string
	tagValues []string
	scope     filter.Expression
}

// BuildQuery joins terms into one clause matched across every text field.
// Tagset names widen matching to documents tagged with a term in that tagset.
// A scope space id keeps documents without a space plus those of that space.
func BuildQuery(terms, tagsetNames []string, scopeSpaceID string) (Query, error) {
	if len(terms) == 0 {
		return Query{}, domain.NewValidationError("terms", "at least one term is required")
	}
	if len(terms) > request.MaxTerms {
		return Query{}, domain.NewValidationError("terms",
			fmt.Sprintf("at most %d terms allowed", request.MaxTerms))
	}

	q := Query{terms: terms}

	for _, name := range tagsetNames {
		for _, t := range terms {
			q.tagValues = append(q.tagValues, name+":"+strings.ToLower(t))
		}
	}

	if scopeSpaceID != "" {
		missing, err := filter.NewMissing(FieldSpaceID)
		if err != nil {
			return Query{}, fmt.Errorf("scope filter: %w", err)
		}
		match, err := filter.NewMatch(FieldSpaceID, scopeSpaceID)
		if err != nil {
			return Query{}, fmt.Errorf("scope filter: %w", err)
		}
		q.scope, err = filter.NewExpression(nil, []filter.Condition{missing, match}, nil)
		if err != nil {
			return Query{}, fmt.Errorf("scope filter: %w", err)
		}
	}

	return q, nil
}

// Terms returns the terms the query matches.
func (q Query) Terms() []string { return q.terms }

// Scope returns the scope filter, empty when unscoped.
func (q Query) Scope() filter.Expression { return q.scope }

// For renders the sub-query against one collection.
func (q Query) For(index string, size int) db.TextQuery {
	tq := db.TextQuery{
		IndexName:    index,
		Terms:        q.terms,
		Filters:      q.scope,
		TopK:         size,
		ReturnFields: returnFields,
	}
	if len(q.tagValues) > 0 {
		tq.TagField = FieldTagsets
		tq.TagValues = q.tagValues
	}
	return tq
}
