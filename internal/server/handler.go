package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-collection-cache/collectioncache"
	"github.com/goliatone/go-collection-cache/internal/demo"
	"github.com/goliatone/go-collection-cache/pkg/logging"
)

// Handler serves the demo collections of companies through the proxy.
type Handler struct {
	proxy *collectioncache.Proxy
}

// NewHandler returns a Handler over proxy.
func NewHandler(proxy *collectioncache.Proxy) *Handler {
	return &Handler{proxy: proxy}
}

// CollectionResponse is the body of a collection read.
type CollectionResponse struct {
	Collection   string `json:"collection"`
	Records      any    `json:"records,omitempty"`
	Value        any    `json:"value,omitempty"`
	Page         int    `json:"page,omitempty"`
	PerPage      int    `json:"per_page,omitempty"`
	TotalEntries *int   `json:"total_entries,omitempty"`
	TotalPages   *int   `json:"total_pages,omitempty"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ClassCollection handles GET /api/v1/collections/{name}.
func (h *Handler) ClassCollection(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, collectioncache.Class(demo.CompanyType))
}

// InstanceCollection handles GET /api/v1/companies/{id}/collections/{name}.
func (h *Handler) InstanceCollection(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, errors.New(errors.CodeInvalidInput, "company id must be a positive integer"))
		return
	}
	h.collection(w, r, &demo.Company{ID: id})
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request, subject collectioncache.Subject) {
	name := chi.URLParam(r, "name")
	opts, err := parseOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.proxy.Lookup(r.Context(), subject, name, opts, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render(name, result))
}

// ClearAll handles DELETE /api/v1/cache.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.clear(w, r, h.proxy.ClearCaches(r.Context()))
}

// ClearClass handles DELETE /api/v1/cache/class.
func (h *Handler) ClearClass(w http.ResponseWriter, r *http.Request) {
	h.clear(w, r, h.proxy.ClearClassCaches(r.Context(), collectioncache.Class(demo.CompanyType)))
}

// ClearInstances handles DELETE /api/v1/cache/instances.
func (h *Handler) ClearInstances(w http.ResponseWriter, r *http.Request) {
	h.clear(w, r, h.proxy.ClearInstanceCaches(r.Context(), collectioncache.Class(demo.CompanyType)))
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func render(name string, result any) CollectionResponse {
	resp := CollectionResponse{Collection: name}
	switch v := result.(type) {
	case []collectioncache.Record:
		resp.Records = v
	case *collectioncache.Page:
		total, pages := v.TotalEntries, v.TotalPages()
		resp.Records = v.Records
		resp.Page = v.CurrentPage
		resp.PerPage = v.PerPage
		resp.TotalEntries = &total
		resp.TotalPages = &pages
	default:
		resp.Value = v
	}
	// an empty collection is still a list
	if records, ok := resp.Records.([]collectioncache.Record); ok && len(records) == 0 {
		resp.Records = []any{}
	}
	return resp
}

// parseOptions reads page, per_page, limit, offset, order, force and
// expires_in from the query string.
func parseOptions(r *http.Request) (collectioncache.Options, error) {
	var opts collectioncache.Options
	query := r.URL.Query()

	ints := []struct {
		name string
		dest **int
	}{
		{"page", &opts.Page},
		{"per_page", &opts.PerPage},
		{"total_entries", &opts.TotalEntries},
		{"limit", &opts.Limit},
		{"offset", &opts.Offset},
	}
	for _, param := range ints {
		raw := query.Get(param.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.WithContext(
				errors.Wrapf(err, errors.CodeInvalidInput, "%s must be an integer", param.name),
				"param", param.name)
		}
		*param.dest = collectioncache.Int(n)
	}

	if raw := query.Get("order"); raw != "" {
		opts.Order = strings.Split(raw, ",")
	}
	if raw := query.Get("force"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.Wrap(err, errors.CodeInvalidInput, "force must be a boolean")
		}
		opts.Force = force
	}
	if raw := query.Get("expires_in"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return opts, errors.Wrap(err, errors.CodeInvalidInput, "expires_in must be a duration")
		}
		opts.ExpiresIn = collectioncache.Duration(d)
	}
	return opts, nil
}

func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeInvalidConfig:
		// no blueprint or resolver for the requested name
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.Error(*zerolog.Ctx(r.Context()), err).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Code:      string(errors.GetCode(err)),
		RequestID: GetRequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
