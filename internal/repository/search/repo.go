package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/collabsearch/internal/logger"
	"github.com/kailas-cloud/collabsearch/internal/metrics"
)

// Extraction defaults.
const (
	DefaultMaxResults     = 25
	DefaultSizeMultiplier = 2
	// MaxFetchWindow caps the hits one sub-query asks for however deep a
	// cursor resumes.
	MaxFetchWindow = 1000
)

// store is the consumer interface for search operations (ISP).
type store interface {
	MultiSearch(ctx context.Context, queries []db.TextQuery) ([]db.MultiSearchItem, error)
}

// Config tunes how many hits each sub-query asks for.
type Config struct {
	// MaxResults is split evenly across the requested categories.
	MaxResults int
	// SizeMultiplier over-fetches to make up for hits dropped during resolution.
	SizeMultiplier int
}

// Repo implements usecase/search.Extractor.
type Repo struct {
	store      store
	router     *Router
	maxResults int
	multiplier int
}

// New creates a search repository. A nil store yields a repository whose every
// search fails with domain.ErrSearchEngineNotConfigured.
func New(s store, router *Router, cfg Config) *Repo {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.SizeMultiplier <= 0 {
		cfg.SizeMultiplier = DefaultSizeMultiplier
	}
	return &Repo{
		store:      s,
		router:     router,
		maxResults: cfg.MaxResults,
		multiplier: cfg.SizeMultiplier,
	}
}

// Search runs one multi-search over the routed collections and returns the
// normalized hits. A failing sub-query is logged and dropped.
func (r *Repo) Search(ctx context.Context, req request.Request, publicOnly bool) ([]result.Raw, error) {
	if r.store == nil {
		return nil, domain.ErrSearchEngineNotConfigured
	}

	indexes := r.router.Route(req.Filters(), publicOnly)
	if len(indexes) == 0 {
		return nil, nil
	}

	q, err := BuildQuery(req.Terms(), req.TagsetNames(), req.ScopeSpaceID())
	if err != nil {
		return nil, err
	}

	queries := make([]db.TextQuery, len(indexes))
	for i, idx := range indexes {
		queries[i] = q.For(idx.Name, r.size(req, idx))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	items, err := r.store.MultiSearch(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("multi search: %w", err)
	}

	log := logger.FromContext(ctx)
	var out []result.Raw
	for i, item := range items {
		if i >= len(indexes) {
			break
		}
		idx := indexes[i]
		if item.Err != nil {
			log.Error("search sub-query failed",
				zap.String("index", idx.Name),
				zap.Error(item.Err),
			)
			metrics.SearchSubqueryErrorsTotal.WithLabelValues(idx.Name).Inc()
			continue
		}
		out = append(out, toRaw(log, idx, item.Result)...)
	}
	return out, nil
}

// size is the per-collection hit cap. The configured maximum is shared across
// the requested categories; a larger page size for the category wins. A
// resumed category also fetches past the items its cursor already served,
// since the engine always ranks from the top.
func (r *Repo) size(req request.Request, idx Index) int {
	filters := req.Filters()
	n := len(filters)
	if n == 0 {
		n = 1
	}
	size := r.maxResults / n
	if size < 1 {
		size = 1
	}
	served := 0
	if f, ok := req.Filter(idx.Category); ok {
		size = max(size, f.Size)
		served = f.Served()
	}
	return min((served+size)*r.multiplier, MaxFetchWindow)
}

func toRaw(log *zap.Logger, idx Index, sr *db.SearchResult) []result.Raw {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]result.Raw, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		typ := idx.Type
		if v, ok := e.Fields[FieldType]; ok {
			if t := result.Type(v); t.IsValid() {
				typ = t
			} else {
				log.Warn("search hit with unknown type",
					zap.String("index", idx.Name),
					zap.String("doc", e.Key),
					zap.String("type", v),
				)
			}
		}

		entityID := e.Fields[FieldID]
		if entityID == "" {
			log.Warn("search hit without entity id",
				zap.String("index", idx.Name),
				zap.String("doc", e.Key),
			)
		}

		out = append(out, result.NewRaw(e.Key, e.Score, typ, entityID))
	}
	return out
}
