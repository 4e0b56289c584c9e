// Package chi exposes table sessions over HTTP.
package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/domain"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/export"
	"github.com/kailas-cloud/resultgrid/internal/logger"
	"github.com/kailas-cloud/resultgrid/internal/metrics"
	healthuc "github.com/kailas-cloud/resultgrid/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/resultgrid/internal/usecase/session"
	"github.com/kailas-cloud/resultgrid/internal/usecase/table"
)

const maxIngestBytes = 16 << 20

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeSessionNotFound   = "session_not_found"
	CodeRowNotFound       = "row_not_found"
	CodeDashboardNotFound = "dashboard_not_found"
	CodeQueryUnavailable  = "query_unavailable"
	CodeInternalError     = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the table API.
type Server struct {
	sessions      *sessionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(sessions *sessionuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		sessions: sessions,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrRowNotFound, http.StatusNotFound, CodeRowNotFound),
		sentinelHandler(domain.ErrDashboardNotFound, http.StatusNotFound, CodeDashboardNotFound),
		sentinelHandler(domain.ErrInvalidDescriptor, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrQueryUnavailable, http.StatusServiceUnavailable, CodeQueryUnavailable),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/hits", s.IngestHits)

	r.Route("/tables", func(r chi.Router) {
		r.Post("/", s.CreateTable)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.sessionScope)
			r.Get("/", s.GetTable)
			r.Delete("/", s.DeleteTable)
			r.Put("/search", s.SetSearch)
			r.Put("/columns", s.SelectColumns)
			r.Post("/reset", s.ResetTable)
			r.Post("/sort", s.ToggleSort)
			r.Delete("/sort", s.ClearSort)
			r.Post("/refresh", s.RefreshTable)
			r.Post("/rows/{key}/activate", s.ActivateRow)
			r.Get("/export.xlsx", s.ExportTable)
		})
	})
}

// sessionScope tags the request logger with the table session id.
func (s *Server) sessionScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithFields(r.Context(), s.logger, zap.String("session_id", chi.URLParam(r, "id")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CreateTableRequest is the body of POST /tables.
type CreateTableRequest struct {
	Dashboard string `json:"dashboard"`
	Studio    bool   `json:"studio"`
	Delegated bool   `json:"delegated"`
	PageSize  int    `json:"page_size"`
}

// CreateTableResponse is the reply of POST /tables.
type CreateTableResponse struct {
	ID   string     `json:"id"`
	View table.View `json:"view"`
}

// SearchRequest is the body of PUT /tables/{id}/search.
type SearchRequest struct {
	Text string `json:"text"`
}

// ColumnsRequest is the body of PUT /tables/{id}/columns.
type ColumnsRequest struct {
	Titles []string `json:"titles"`
}

// SortRequest is the body of POST /tables/{id}/sort.
type SortRequest struct {
	Key   string `json:"key"`
	Multi bool   `json:"multi"`
}

// CreateTable handles POST /tables.
func (s *Server) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PageSize < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "page_size must not be negative")
		return
	}

	id, view, err := s.sessions.Create(r.Context(), sessionuc.CreateRequest{
		Dashboard: req.Dashboard,
		Studio:    req.Studio,
		Delegated: req.Delegated,
		PageSize:  req.PageSize,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/tables/"+id)
	writeJSON(w, http.StatusCreated, CreateTableResponse{ID: id, View: view})
}

// GetTable handles GET /tables/{id}.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	view, err := s.sessions.View(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteTable handles DELETE /tables/{id}.
func (s *Server) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSearch handles PUT /tables/{id}/search.
func (s *Server) SetSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.sessions.SetSearch(id, req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SelectColumns handles PUT /tables/{id}/columns.
func (s *Server) SelectColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req ColumnsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := s.sessions.SelectColumns(id, req.Titles)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ResetTable handles POST /tables/{id}/reset.
func (s *Server) ResetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	view, err := s.sessions.Reset(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ToggleSort handles POST /tables/{id}/sort.
func (s *Server) ToggleSort(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req SortRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "key is required")
		return
	}
	view, err := s.sessions.ToggleSort(r.Context(), id, req.Key, req.Multi)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClearSort handles DELETE /tables/{id}/sort.
func (s *Server) ClearSort(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	view, err := s.sessions.ClearSort(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RefreshTable handles POST /tables/{id}/refresh?page=&page_size=.
func (s *Server) RefreshTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	var page, pageSize *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid page: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page_size", r.URL.Query(), &pageSize); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid page_size: "+err.Error())
		return
	}
	if (page != nil && *page < 1) || (pageSize != nil && *pageSize < 1) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "page and page_size must be positive")
		return
	}

	view, err := s.sessions.Refresh(r.Context(), id, derefInt(page), derefInt(pageSize))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ActivateRow handles POST /tables/{id}/rows/{key}/activate.
func (s *Server) ActivateRow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	key, ok := pathParam(w, r, "key")
	if !ok {
		return
	}
	rec, err := s.sessions.Activate(id, key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ExportTable handles GET /tables/{id}/export.xlsx.
func (s *Server) ExportTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	view, err := s.sessions.View(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.XLSX(&buf, view); err != nil {
		metrics.ExportsTotal.WithLabelValues("xlsx", "error").Inc()
		s.handleDomainError(w, r, fmt.Errorf("export %s: %w", id, err))
		return
	}
	metrics.ExportsTotal.WithLabelValues("xlsx", "ok").Inc()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="table-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// IngestHits handles POST /hits. The body is a search response or a JSON
// array of _source objects.
func (s *Server) IngestHits(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIngestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	page, err := hit.DecodeResponse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	n, err := s.sessions.Ingest(r.Context(), page.Hits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid %s: %v", name, err))
		return "", false
	}
	return v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrRowNotFound,
		domain.ErrDashboardNotFound,
		domain.ErrInvalidDescriptor,
		domain.ErrQueryUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContextOr(r.Context(), s.logger)
	l.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	l.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
