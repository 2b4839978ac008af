package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/collabsearch/internal/logger"
	"github.com/kailas-cloud/collabsearch/internal/metrics"
)

// Search modes, decided by caller identity.
const (
	modePublic  = "public"
	modePrivate = "private"
)

// Input is an unvalidated search request.
type Input struct {
	Terms        []string
	TagsetNames  []string
	ScopeSpaceID string
	Filters      []request.CategoryFilter
}

// Service runs the search pipeline: validate, extract, resolve, rank.
type Service struct {
	extractor   Extractor
	spaces      SpaceReader
	resolver    *Resolver
	maxPageSize int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxPageSize bounds the page size a category filter may ask for.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// New creates a search service.
func New(extractor Extractor, entities Entities, authz Authorizer, opts ...Option) *Service {
	s := &Service{
		extractor:   extractor,
		spaces:      entities,
		resolver:    NewResolver(entities, authz),
		maxPageSize: request.MaxPageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search runs one search for who. Anonymous callers only see public collections.
func (s *Service) Search(ctx context.Context, who actor.Actor, in Input) (result.Response, error) {
	start := time.Now()
	mode := modePrivate
	publicOnly := !who.IsAuthenticated()
	if publicOnly {
		mode = modePublic
	}
	ctx = logger.With(ctx, zap.String("mode", mode))

	resp, err := s.search(ctx, who, in, publicOnly)

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			status = "rejected"
		}
	}
	metrics.SearchRequestsTotal.WithLabelValues(mode, status).Inc()
	metrics.SearchDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())

	return resp, err
}

func (s *Service) search(ctx context.Context, who actor.Actor, in Input, publicOnly bool) (result.Response, error) {
	req, err := request.New(in.Terms, in.TagsetNames, in.ScopeSpaceID, in.Filters, s.maxPageSize)
	if err != nil {
		return result.Response{}, err //nolint:wrapcheck // validation errors are returned as is
	}

	if scope := req.ScopeSpaceID(); scope != "" {
		if _, err := s.spaces.SpaceByID(ctx, scope); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return result.Response{}, fmt.Errorf("scope space %s: %w", scope, domain.ErrNotFound)
			}
			return result.Response{}, fmt.Errorf("load scope space: %w", err)
		}
	}

	stage := time.Now()
	raws, err := s.extractor.Search(ctx, req, publicOnly)
	if err != nil {
		return result.Response{}, fmt.Errorf("extract: %w", err)
	}
	metrics.SearchDuration.WithLabelValues("extract").Observe(time.Since(stage).Seconds())

	stage = time.Now()
	resolved, err := s.resolver.Resolve(ctx, who, req.ScopeSpaceID(), raws)
	if err != nil {
		return result.Response{}, fmt.Errorf("resolve: %w", err)
	}
	metrics.SearchDuration.WithLabelValues("resolve").Observe(time.Since(stage).Seconds())

	resp := rank(req, resolved)

	fields := []zap.Field{
		zap.Int("terms", len(req.Terms())),
		zap.Bool("public_only", publicOnly),
		zap.Bool("scoped", req.ScopeSpaceID() != ""),
		zap.Int("hits", len(raws)),
		zap.Int("resolved", len(resolved)),
	}
	for _, o := range result.Outputs() {
		n := len(resp.Set(o).Results)
		metrics.SearchResultsReturned.WithLabelValues(string(o)).Observe(float64(n))
		fields = append(fields, zap.Int(string(o), n))
	}
	logger.FromContext(ctx).Info("search completed", fields...)

	return resp, nil
}
