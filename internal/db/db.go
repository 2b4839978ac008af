package db

import (
	"context"
	"time"
)

// Store is the search-engine facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	IndexManager
	MultiSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// MultiSearcher runs several text queries in one round trip.
type MultiSearcher interface {
	// MultiSearch returns one item per query, in query order.
	// A per-item Err isolates that query; the returned error is reserved for
	// failures of the whole round trip.
	MultiSearch(ctx context.Context, queries []TextQuery) ([]MultiSearchItem, error)
}
