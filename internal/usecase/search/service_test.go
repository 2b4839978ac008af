package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
)

func spacesOnly(size int) []request.CategoryFilter {
	return []request.CategoryFilter{{Category: category.Spaces, Size: size}}
}

func TestSearch_RanksByScoreThenID(t *testing.T) {
	ents := newMockEntities()
	for _, id := range []string{"s1", "s2", "s3"} {
		ents.spaces[id] = entity.Space{ID: id, NameID: id, Visibility: entity.SpaceActive}
	}
	ex := &mockExtractor{raws: []result.Raw{
		raw("s3", 9, result.TypeSpace, "s3"),
		raw("s1", 7, result.TypeSpace, "s1"),
		raw("s2", 7, result.TypeSpace, "s2"),
	}}
	svc := newTestService(t, ents, ex)

	resp, err := svc.Search(context.Background(), member(), Input{
		Terms:   []string{"alpha"},
		Filters: spacesOnly(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultIDs(resp.Spaces); !equalIDs(got, []string{"s3", "s2", "s1"}) {
		t.Errorf("spaces = %v, want [s3 s2 s1]", got)
	}
	if resp.Spaces.Total != result.TotalNotComputed {
		t.Errorf("total = %d, want %d", resp.Spaces.Total, result.TotalNotComputed)
	}
	if resp.Spaces.Cursor == "" {
		t.Error("expected cursor on non-empty page")
	}
	if len(resp.Contributors.Results) != 0 || resp.Contributors.Total != result.TotalNotComputed {
		t.Errorf("unrequested bucket must be empty, got %+v", resp.Contributors)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	ents := newMockEntities()
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		ents.spaces[id] = entity.Space{ID: id}
	}
	ex := &mockExtractor{raws: []result.Raw{
		raw("s1", 1, result.TypeSpace, "s1"),
		raw("s2", 3, result.TypeSpace, "s2"),
		raw("s3", 3, result.TypeSpace, "s3"),
		raw("s4", 2, result.TypeSpace, "s4"),
	}}
	svc := newTestService(t, ents, ex)
	in := Input{Terms: []string{"alpha"}, Filters: spacesOnly(3)}

	first, err := svc.Search(context.Background(), member(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := svc.Search(context.Background(), member(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !equalIDs(resultIDs(first.Spaces), resultIDs(again.Spaces)) {
			t.Fatalf("order changed: %v vs %v", resultIDs(first.Spaces), resultIDs(again.Spaces))
		}
	}
	if got := resultIDs(first.Spaces); !equalIDs(got, []string{"s3", "s2", "s4"}) {
		t.Errorf("spaces = %v, want [s3 s2 s4]", got)
	}
}

func TestSearch_CursorResumesAfterPage(t *testing.T) {
	ents := newMockEntities()
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		ents.spaces[id] = entity.Space{ID: id}
	}
	ex := &mockExtractor{raws: []result.Raw{
		raw("s1", 4, result.TypeSpace, "s1"),
		raw("s2", 3, result.TypeSpace, "s2"),
		raw("s3", 2, result.TypeSpace, "s3"),
		raw("s4", 1, result.TypeSpace, "s4"),
	}}
	svc := newTestService(t, ents, ex)

	first, err := svc.Search(context.Background(), member(), Input{
		Terms: []string{"alpha"}, Filters: spacesOnly(2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Search(context.Background(), member(), Input{
		Terms: []string{"alpha"},
		Filters: []request.CategoryFilter{
			{Category: category.Spaces, Size: 2, Cursor: first.Spaces.Cursor},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultIDs(second.Spaces); !equalIDs(got, []string{"s3", "s4"}) {
		t.Errorf("second page = %v, want [s3 s4]", got)
	}
}

func TestSearch_ScopedContributors(t *testing.T) {
	ents := newMockEntities()
	ents.spaces[scopeID] = entity.Space{ID: scopeID, NameID: "scope"}
	ents.users["u1"] = entity.User{ID: "u1"}
	ents.users["u2"] = entity.User{ID: "u2"}
	ents.users["u3"] = entity.User{ID: "u3"}
	ents.userCreds[scopeID] = []string{"u1", "u3"}
	ents.orgs["o1"] = entity.Organization{ID: "o1", Authorization: registeredPolicy}
	ents.orgs["o2"] = entity.Organization{ID: "o2", Authorization: registeredPolicy}
	ents.orgCreds[scopeID] = []string{"o2"}

	ex := &mockExtractor{raws: []result.Raw{
		raw("u1", 5, result.TypeUser, "u1"),
		raw("u2", 4, result.TypeUser, "u2"),
		raw("o1", 3, result.TypeOrganization, "o1"),
		raw("o2", 2, result.TypeOrganization, "o2"),
	}}
	svc := newTestService(t, ents, ex)

	resp, err := svc.Search(context.Background(), member(), Input{
		Terms:        []string{"alpha"},
		ScopeSpaceID: scopeID,
		Filters:      []request.CategoryFilter{{Category: category.Contributors, Size: 10}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultIDs(resp.Contributors); !equalIDs(got, []string{"u1", "o2"}) {
		t.Errorf("contributors = %v, want [u1 o2]", got)
	}
	if ex.req.ScopeSpaceID() != scopeID {
		t.Errorf("extractor scope = %q", ex.req.ScopeSpaceID())
	}
}

func TestSearch_DraftCalloutHidesContent(t *testing.T) {
	ents := newMockEntities()
	ents.posts["p1"] = entity.Post{ID: "p1", Authorization: registeredPolicy}
	ents.posts["p2"] = entity.Post{ID: "p2", Authorization: registeredPolicy}
	draft := publishedParent("c-draft", registeredPolicy)
	draft.Callout.Visibility = entity.CalloutDraft
	ents.contribs["p1"] = draft
	ents.contribs["p2"] = publishedParent("c1", registeredPolicy)

	ex := &mockExtractor{raws: []result.Raw{
		raw("p1", 5, result.TypePost, "p1"),
		raw("p2", 4, result.TypePost, "p2"),
	}}
	svc := newTestService(t, ents, ex)

	resp, err := svc.Search(context.Background(), member(), Input{
		Terms:   []string{"alpha"},
		Filters: []request.CategoryFilter{{Category: category.Responses, Size: 10}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultIDs(resp.Contributions); !equalIDs(got, []string{"p2"}) {
		t.Errorf("contributions = %v, want [p2]", got)
	}
	post, ok := resp.Contributions.Results[0].(result.Post)
	if !ok || post.Callout.ID != "c1" || post.Space.ID != scopeID {
		t.Errorf("ancestors not attached: %+v", resp.Contributions.Results[0])
	}
}

func TestSearch_AnonymousIsPublicOnly(t *testing.T) {
	ents := newMockEntities()
	ents.spaces["s1"] = entity.Space{ID: "s1"}
	ex := &mockExtractor{raws: []result.Raw{raw("s1", 1, result.TypeSpace, "s1")}}
	svc := newTestService(t, ents, ex)

	resp, err := svc.Search(context.Background(), actor.Anonymous(), Input{Terms: []string{"alpha"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ex.publicOnly {
		t.Error("anonymous search must be public only")
	}
	if len(resp.Spaces.Results) != 1 {
		t.Errorf("spaces = %v", resultIDs(resp.Spaces))
	}

	if _, err := svc.Search(context.Background(), member(), Input{Terms: []string{"alpha"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.publicOnly {
		t.Error("authenticated search must not be public only")
	}
}

func TestSearch_DefaultFiltersBoundPageSize(t *testing.T) {
	ents := newMockEntities()
	var raws []result.Raw
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		ents.spaces[id] = entity.Space{ID: id}
		raws = append(raws, raw(id, 1, result.TypeSpace, id))
	}
	svc := newTestService(t, ents, &mockExtractor{raws: raws})

	resp, err := svc.Search(context.Background(), member(), Input{Terms: []string{"alpha"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(resp.Spaces.Results); n != request.DefaultPageSize {
		t.Errorf("spaces = %d, want %d", n, request.DefaultPageSize)
	}
}

func TestSearch_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"no terms", Input{}},
		{"too many terms", Input{Terms: []string{"aa", "bb", "cc", "dd", "ee", "ff"}}},
		{"short term", Input{Terms: []string{"a"}}},
		{"bad scope", Input{Terms: []string{"alpha"}, ScopeSpaceID: "not-a-uuid"}},
		{"unknown category", Input{
			Terms:   []string{"alpha"},
			Filters: []request.CategoryFilter{{Category: "templates"}},
		}},
		{"size too large", Input{Terms: []string{"alpha"}, Filters: spacesOnly(51)}},
		{"malformed cursor", Input{
			Terms:   []string{"alpha"},
			Filters: []request.CategoryFilter{{Category: category.Spaces, Cursor: "%%%"}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ex := &mockExtractor{}
			svc := newTestService(t, newMockEntities(), ex)
			_, err := svc.Search(context.Background(), member(), tc.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if ex.calls != 0 {
				t.Error("extractor must not run on invalid input")
			}
		})
	}
}

func TestSearch_MaxPageSizeOption(t *testing.T) {
	svc := New(&mockExtractor{}, newMockEntities(), nil, WithMaxPageSize(5))
	_, err := svc.Search(context.Background(), member(), Input{
		Terms: []string{"alpha"}, Filters: spacesOnly(6),
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearch_UnknownScopeIsNotFound(t *testing.T) {
	ex := &mockExtractor{}
	svc := newTestService(t, newMockEntities(), ex)

	_, err := svc.Search(context.Background(), member(), Input{
		Terms: []string{"alpha"}, ScopeSpaceID: scopeID,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ex.calls != 0 {
		t.Error("extractor must not run for an unknown scope")
	}
}

func TestSearch_ExtractorErrorPropagates(t *testing.T) {
	boom := errors.New("engine down")
	svc := newTestService(t, newMockEntities(), &mockExtractor{err: boom})

	_, err := svc.Search(context.Background(), member(), Input{Terms: []string{"alpha"}})
	if !errors.Is(err, boom) {
		t.Errorf("expected engine error, got %v", err)
	}
}

func TestSearch_BranchErrorFailsRequest(t *testing.T) {
	boom := errors.New("db gone")
	ents := newMockEntities()
	ents.err = boom
	ex := &mockExtractor{raws: []result.Raw{
		raw("s1", 1, result.TypeSpace, "s1"),
		raw("u1", 1, result.TypeUser, "u1"),
	}}
	svc := newTestService(t, ents, ex)

	resp, err := svc.Search(context.Background(), member(), Input{Terms: []string{"alpha"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(resp.Spaces.Results) != 0 || len(resp.Contributors.Results) != 0 {
		t.Error("no partial response on failure")
	}
}

func TestSearch_EmptyHits(t *testing.T) {
	svc := newTestService(t, newMockEntities(), &mockExtractor{})

	resp, err := svc.Search(context.Background(), member(), Input{Terms: []string{"alpha"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, o := range result.Outputs() {
		set := resp.Set(o)
		if len(set.Results) != 0 || set.Cursor != "" || set.Total != result.TotalNotComputed {
			t.Errorf("%s = %+v", o, set)
		}
	}
}
