package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/collabsearch/internal/logger"
	"github.com/kailas-cloud/collabsearch/internal/transport/api"
	healthuc "github.com/kailas-cloud/collabsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/collabsearch/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

type searcher interface {
	Search(ctx context.Context, who actor.Actor, in searchuc.Input) (result.Response, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements api.ServerInterface.
type Server struct {
	search        searcher
	health        healthChecker
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search searcher, health healthChecker) *Server {
	s := &Server{
		search: search,
		health: health,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, api.ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, api.ErrorResponseCodeUnauthenticated),
	}
	return s
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req api.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.runSearch(w, r, inputFromRequest(req))
}

// SearchGet handles GET /v1/search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request, params api.SearchParams) {
	s.runSearch(w, r, inputFromParams(params))
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, in searchuc.Input) {
	resp, err := s.search.Search(r.Context(), actor.FromContext(r.Context()), in)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResponseToAPI(resp))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// InvalidParamHandler answers query parameters that failed to bind.
func InvalidParamHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *api.InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid query parameter " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation errors name the offending field.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrUnauthenticated,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Info("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}

// --- request conversion ---

func inputFromRequest(req api.SearchRequest) searchuc.Input {
	in := searchuc.Input{
		Terms:        req.Terms,
		TagsetNames:  req.TagsetNames,
		ScopeSpaceID: deref(req.ScopeSpaceID),
	}
	for _, f := range req.Filters {
		cf := request.CategoryFilter{
			Category: category.Category(f.Category),
			Cursor:   deref(f.Cursor),
			Size:     deref(f.Size),
		}
		for _, t := range f.Types {
			cf.Types = append(cf.Types, result.Type(t))
		}
		in.Filters = append(in.Filters, cf)
	}
	return in
}

// inputFromParams maps GET parameters. Every named category gets the same size.
func inputFromParams(p api.SearchParams) searchuc.Input {
	in := searchuc.Input{
		Terms:        p.Terms,
		ScopeSpaceID: deref(p.ScopeSpaceID),
	}
	if p.TagsetNames != nil {
		in.TagsetNames = *p.TagsetNames
	}
	if p.Category != nil {
		for _, c := range *p.Category {
			in.Filters = append(in.Filters, request.CategoryFilter{
				Category: category.Category(c),
				Size:     deref(p.Size),
			})
		}
	}
	return in
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// --- response conversion ---

// ResponseToAPI converts a ranked search response to its wire form.
func ResponseToAPI(resp result.Response) api.SearchResponse {
	return api.SearchResponse{
		Contributors:       setToAPI(resp.Contributors),
		Contributions:      setToAPI(resp.Contributions),
		Framings:           setToAPI(resp.Framings),
		Spaces:             setToAPI(resp.Spaces),
		CollaborationTools: setToAPI(resp.CollaborationTools),
	}
}

func setToAPI(set result.CategorySet) api.ResultSet {
	out := api.ResultSet{
		Results: make([]api.SearchResult, 0, len(set.Results)),
		Total:   set.Total,
	}
	if set.Cursor != "" {
		c := set.Cursor
		out.Cursor = &c
	}
	for _, r := range set.Results {
		out.Results = append(out.Results, resultToAPI(r))
	}
	return out
}

func resultToAPI(r result.Resolved) api.SearchResult {
	raw := r.Raw()
	terms := raw.Terms()
	if terms == nil {
		terms = []string{}
	}
	out := api.SearchResult{
		ID:    raw.ID(),
		Type:  string(raw.Type()),
		Score: raw.Score(),
		Terms: terms,
	}

	switch v := r.(type) {
	case result.Space:
		out.Entity = v.Space
		if v.Parent != nil {
			out.ParentSpace = spaceRef(*v.Parent)
		}
	case result.User:
		out.Entity = v.User
	case result.Organization:
		out.Entity = v.Organization
	case result.Post:
		out.Entity = v.Post
		out.Callout = calloutRef(v.Callout)
		out.Space = spaceRef(v.Space)
	case result.Whiteboard:
		out.Entity = v.Whiteboard
		out.Callout = calloutRef(v.Callout)
		out.Space = spaceRef(v.Space)
		out.IsContribution = &v.IsContribution
	case result.Memo:
		out.Entity = v.Memo
		out.Callout = calloutRef(v.Callout)
		out.Space = spaceRef(v.Space)
		out.IsContribution = &v.IsContribution
	case result.Callout:
		out.Entity = v.Callout
		out.Space = spaceRef(v.Space)
	}
	return out
}

func spaceRef(s entity.Space) *api.SpaceRef {
	return &api.SpaceRef{ID: s.ID, NameID: s.NameID, Level: int(s.Level)}
}

func calloutRef(c entity.Callout) *api.CalloutRef {
	return &api.CalloutRef{ID: c.ID, NameID: c.NameID}
}
