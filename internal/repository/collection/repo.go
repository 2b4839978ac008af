package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/repository/search"
)

// store is the consumer interface for collection index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// router lists the collections searches are routed to.
type router interface {
	Indexes() []search.Index
}

// State is the outcome of ensuring one collection index.
type State string

// Ensure outcomes.
const (
	StateCreated State = "created"
	StateExists  State = "exists"
)

// Status reports what Ensure did for one collection.
type Status struct {
	Index string
	State State
}

// Repo manages the search-engine indexes behind every routed collection.
type Repo struct {
	store  store
	router router
}

// New creates a collection repository.
func New(s store, r router) *Repo {
	return &Repo{store: s, router: r}
}

// Ensure creates every missing collection index. Existing indexes are left untouched.
func (r *Repo) Ensure(ctx context.Context) ([]Status, error) {
	indexes := r.router.Indexes()
	out := make([]Status, 0, len(indexes))

	for _, idx := range indexes {
		exists, err := r.store.IndexExists(ctx, idx.Name)
		if err != nil {
			return out, fmt.Errorf("check index %s: %w", idx.Name, err)
		}
		if exists {
			out = append(out, Status{Index: idx.Name, State: StateExists})
			continue
		}

		def, err := buildIndex(idx)
		if err != nil {
			return out, fmt.Errorf("build index %s: %w", idx.Name, err)
		}

		// FT.CREATE may race with another ensure; a concurrent create is not an error
		if err := r.store.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				out = append(out, Status{Index: idx.Name, State: StateExists})
				continue
			}
			return out, fmt.Errorf("create index %s: %w", idx.Name, err)
		}
		out = append(out, Status{Index: idx.Name, State: StateCreated})
	}

	return out, nil
}

// Drop removes every collection index. Indexed documents are kept.
// Missing indexes are skipped.
func (r *Repo) Drop(ctx context.Context) ([]string, error) {
	var dropped []string
	for _, idx := range r.router.Indexes() {
		if err := r.store.DropIndex(ctx, idx.Name); err != nil {
			if errors.Is(err, db.ErrIndexNotFound) {
				continue
			}
			return dropped, fmt.Errorf("drop index %s: %w", idx.Name, err)
		}
		dropped = append(dropped, idx.Name)
	}
	return dropped, nil
}
