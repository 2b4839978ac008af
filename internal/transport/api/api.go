// Package api holds the HTTP wire types of the search API and the chi
// routing that binds request parameters onto them.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeUnauthenticated  ErrorResponseCode = "unauthenticated"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// CategoryFilter selects one result category.
type CategoryFilter struct {
	Category string   `json:"category"`
	Cursor   *string  `json:"cursor,omitempty"`
	Size     *int     `json:"size,omitempty"`
	Types    []string `json:"types,omitempty"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Terms        []string         `json:"terms"`
	TagsetNames  []string         `json:"tagsetNames,omitempty"`
	ScopeSpaceID *string          `json:"scopeSpaceId,omitempty"`
	Filters      []CategoryFilter `json:"filters,omitempty"`
}

// SearchParams are the query parameters of GET /v1/search.
type SearchParams struct {
	Terms        []string  `form:"terms" json:"terms"`
	TagsetNames  *[]string `form:"tagsetNames,omitempty" json:"tagsetNames,omitempty"`
	ScopeSpaceID *string   `form:"scopeSpaceId,omitempty" json:"scopeSpaceId,omitempty"`
	Category     *[]string `form:"category,omitempty" json:"category,omitempty"`
	Size         *int      `form:"size,omitempty" json:"size,omitempty"`
}

// SpaceRef is the owning space attached to content and callout results.
type SpaceRef struct {
	ID     string `json:"id"`
	NameID string `json:"nameID"`
	Level  int    `json:"level"`
}

// CalloutRef is the owning callout attached to content results.
type CalloutRef struct {
	ID     string `json:"id"`
	NameID string `json:"nameID"`
}

// SearchResult is one resolved hit.
type SearchResult struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	Score          float64     `json:"score"`
	Terms          []string    `json:"terms"`
	Entity         any         `json:"entity"`
	Space          *SpaceRef   `json:"space,omitempty"`
	ParentSpace    *SpaceRef   `json:"parentSpace,omitempty"`
	Callout        *CalloutRef `json:"callout,omitempty"`
	IsContribution *bool       `json:"isContribution,omitempty"`
}

// ResultSet is one ranked page of a category.
type ResultSet struct {
	Results []SearchResult `json:"results"`
	Cursor  *string        `json:"cursor,omitempty"`
	Total   int            `json:"total"`
}

// SearchResponse holds one page per output category.
type SearchResponse struct {
	Contributors       ResultSet `json:"contributors"`
	Contributions      ResultSet `json:"contributions"`
	Framings           ResultSet `json:"framings"`
	Spaces             ResultSet `json:"spaces"`
	CollaborationTools ResultSet `json:"collaborationTools"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// Search handles POST /v1/search.
	Search(w http.ResponseWriter, r *http.Request)
	// SearchGet handles GET /v1/search.
	SearchGet(w http.ResponseWriter, r *http.Request, params SearchParams)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// MiddlewareFunc wraps a single route handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds parameters and dispatches to the handlers.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, m := range siw.HandlerMiddlewares {
		h = m(h)
	}
	return h
}

// Search dispatches POST /v1/search.
func (siw *ServerInterfaceWrapper) Search(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Search)).ServeHTTP(w, r)
}

// SearchGet binds the query parameters and dispatches GET /v1/search.
func (siw *ServerInterfaceWrapper) SearchGet(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "terms", query, &params.Terms); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "terms", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "tagsetNames", query, &params.TagsetNames); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tagsetNames", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "scopeSpaceId", query, &params.ScopeSpaceID); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "scopeSpaceId", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", query, &params.Category); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "category", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", query, &params.Size); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "size", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SearchGet(w, r, params)
	})).ServeHTTP(w, r)
}

// HealthCheck dispatches GET /health.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.HealthCheck)).ServeHTTP(w, r)
}

// Metrics dispatches GET /metrics.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Metrics)).ServeHTTP(w, r)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on a new chi router.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts si on options.BaseRouter, creating one when nil.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/v1/search", wrapper.Search)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/v1/search", wrapper.SearchGet)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})

	return r
}
