package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/cursor"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
)

// Search parameter limits.
const (
	MaxTerms        = 5
	MinTermLength   = 2
	MaxTermLength   = 128
	MaxTagsets      = 2
	DefaultPageSize = 4
	MaxPageSize     = 50
)

// CategoryFilter selects one category, its page size and optionally a type subset.
type CategoryFilter struct {
	Category category.Category
	Cursor   string
	Size     int
	Types    []result.Type
}

// Position returns where the output bucket o resumes. ok is false when the
// cursor is absent or holds no position for o.
func (f CategoryFilter) Position(o result.Output) (cursor.Position, bool) {
	if f.Cursor == "" {
		return cursor.Position{}, false
	}
	set, err := cursor.Decode(f.Cursor)
	if err != nil {
		return cursor.Position{}, false
	}
	p, ok := set[string(o)]
	return p, ok
}

// Served returns how many items the most advanced bucket of this filter has
// already returned, 0 without a cursor.
func (f CategoryFilter) Served() int {
	if f.Cursor == "" {
		return 0
	}
	set, err := cursor.Decode(f.Cursor)
	if err != nil {
		return 0
	}
	return set.Served()
}

// Request is a validated search query.
type Request struct {
	terms        []string
	tagsetNames  []string
	scopeSpaceID string
	filters      []CategoryFilter
}

// New validates and normalizes search parameters.
// Without filters one filter per category with DefaultPageSize is used.
// maxPageSize <= 0 falls back to MaxPageSize.
func New(
	terms, tagsetNames []string,
	scopeSpaceID string,
	filters []CategoryFilter,
	maxPageSize int,
) (Request, error) {
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}

	normTerms, err := normalizeTerms(terms)
	if err != nil {
		return Request{}, err
	}

	if len(tagsetNames) > MaxTagsets {
		return Request{}, domain.NewValidationError("tagsetNames",
			fmt.Sprintf("at most %d tagsets allowed", MaxTagsets))
	}
	tagsets := make([]string, 0, len(tagsetNames))
	for _, name := range tagsetNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return Request{}, domain.NewValidationError("tagsetNames", "tagset name must not be empty")
		}
		tagsets = append(tagsets, name)
	}

	if scopeSpaceID != "" {
		if _, err := uuid.Parse(scopeSpaceID); err != nil {
			return Request{}, domain.NewValidationError("scopeSpaceId", "must be a UUID")
		}
	}

	normFilters, err := normalizeFilters(filters, maxPageSize)
	if err != nil {
		return Request{}, err
	}

	return Request{
		terms:        normTerms,
		tagsetNames:  tagsets,
		scopeSpaceID: scopeSpaceID,
		filters:      normFilters,
	}, nil
}

// DefaultFilters returns one filter per category with the default page size.
func DefaultFilters() []CategoryFilter {
	cats := category.All()
	out := make([]CategoryFilter, len(cats))
	for i, c := range cats {
		out[i] = CategoryFilter{Category: c, Size: DefaultPageSize}
	}
	return out
}

func normalizeTerms(terms []string) ([]string, error) {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) < MinTermLength {
			return nil, domain.NewValidationError("terms",
				fmt.Sprintf("term %q is shorter than %d characters", t, MinTermLength))
		}
		if utf8.RuneCountInString(t) > MaxTermLength {
			return nil, domain.NewValidationError("terms",
				fmt.Sprintf("term is longer than %d characters", MaxTermLength))
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, domain.NewValidationError("terms", "at least one term is required")
	}
	if len(out) > MaxTerms {
		return nil, domain.NewValidationError("terms", fmt.Sprintf("at most %d terms allowed", MaxTerms))
	}
	return out, nil
}

func normalizeFilters(filters []CategoryFilter, maxPageSize int) ([]CategoryFilter, error) {
	if len(filters) == 0 {
		return DefaultFilters(), nil
	}

	seen := make(map[category.Category]bool, len(filters))
	out := make([]CategoryFilter, 0, len(filters))
	for _, f := range filters {
		if !f.Category.IsValid() {
			return nil, domain.NewValidationError("filters.category",
				fmt.Sprintf("unknown category %q", f.Category))
		}
		if seen[f.Category] {
			return nil, domain.NewValidationError("filters.category",
				fmt.Sprintf("category %q given more than once", f.Category))
		}
		seen[f.Category] = true

		if f.Size == 0 {
			f.Size = DefaultPageSize
		}
		if f.Size < 1 || f.Size > maxPageSize {
			return nil, domain.NewValidationError("filters.size",
				fmt.Sprintf("size must be between 1 and %d", maxPageSize))
		}

		for _, t := range f.Types {
			if !t.IsValid() {
				return nil, domain.NewValidationError("filters.types", fmt.Sprintf("unknown type %q", t))
			}
		}

		if f.Cursor != "" {
			if _, err := cursor.Decode(f.Cursor); err != nil {
				return nil, domain.NewValidationError("filters.cursor", err.Error())
			}
		}

		out = append(out, f)
	}
	return out, nil
}

// Terms returns the normalized search terms.
func (r Request) Terms() []string { return r.terms }

// TagsetNames returns the tagsets that widen matching.
func (r Request) TagsetNames() []string { return r.tagsetNames }

// ScopeSpaceID returns the scope restriction, empty when unscoped.
func (r Request) ScopeSpaceID() string { return r.scopeSpaceID }

// Filters returns the category filters, never empty.
func (r Request) Filters() []CategoryFilter { return r.filters }

// Filter returns the filter for c. ok is false when c was not requested.
func (r Request) Filter(c category.Category) (CategoryFilter, bool) {
	for _, f := range r.filters {
		if f.Category == c {
			return f, true
		}
	}
	return CategoryFilter{}, false
}
