package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	multiSearchFn func(ctx context.Context, queries []db.TextQuery) ([]db.MultiSearchItem, error)
	calls         int
}

func (m *mockStore) MultiSearch(ctx context.Context, queries []db.TextQuery) ([]db.MultiSearchItem, error) {
	m.calls++
	if m.multiSearchFn != nil {
		return m.multiSearchFn(ctx, queries)
	}
	items := make([]db.MultiSearchItem, len(queries))
	for i := range items {
		items[i] = db.MultiSearchItem{Result: &db.SearchResult{}}
	}
	return items, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, NewRouter(""), Config{})
	return repo, ms
}

func mustRequest(t *testing.T, terms []string, scope string, filters ...request.CategoryFilter) request.Request {
	t.Helper()
	req, err := request.New(terms, nil, scope, filters, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func only(c category.Category, size int) request.CategoryFilter {
	return request.CategoryFilter{Category: c, Size: size}
}

func hits(entries ...db.SearchEntry) db.MultiSearchItem {
	return db.MultiSearchItem{Result: &db.SearchResult{Total: len(entries), Entries: entries}}
}
