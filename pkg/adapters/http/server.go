package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/pkg/labeled"
	"github.com/aretw0/arrayschema/pkg/observability"
	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize caps schema and container documents.
const maxBodySize = 4 << 20

// Registry is the part of registry.Registry the server uses.
type Registry interface {
	Put(ctx context.Context, name string, data []byte) (ports.Document, error)
	Create(ctx context.Context, name string, data []byte) (ports.Document, error)
	Get(ctx context.Context, name string) (ports.Document, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Compile(ctx context.Context, name string) (schema.Validator, error)
	ValidateDocument(ctx context.Context, name string, data []byte) error
}

var _ Registry = (*registry.Registry)(nil)

// Server serves the registry over HTTP.
type Server struct {
	Registry Registry
	Streams  *StreamManager
	logger   *slog.Logger
	metrics  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler sets the handler served at /metrics.
// Defaults to promhttp.Handler().
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithStreams shares a StreamManager, typically the one whose Hooks were
// given to the registry.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a Server over reg.
func NewServer(reg Registry, opts ...Option) *Server {
	s := &Server{
		Registry: reg,
		Streams:  NewStreamManager(),
		logger:   slog.Default(),
		metrics:  promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for reg.
func NewHandler(reg Registry, opts ...Option) http.Handler {
	return NewServer(reg, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/document-schemas/{kind}", s.GetDocumentSchema)

	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.ListSchemas)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetSchema)
			r.Put("/", s.PutSchema)
			r.Delete("/", s.DeleteSchema)
			r.Post("/validate", s.Validate)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SchemaResponse describes a stored schema.
type SchemaResponse struct {
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// ValidateResponse is the result of POST /schemas/{name}/validate.
type ValidateResponse struct {
	Valid bool     `json:"valid"`
	Error string   `json:"error,omitempty"`
	Facet string   `json:"facet,omitempty"`
	Path  []string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusOf maps registry errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ports.ErrSchemaNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrSchemaExists):
		return http.StatusConflict
	case errors.Is(err, schema.ErrInvalidSchema),
		errors.Is(err, ports.ErrInvalidName),
		errors.Is(err, labeled.ErrInvalidDocument),
		errors.Is(err, labeled.ErrDimsMismatch):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrNotImplemented):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	} else {
		s.logger.Warn(op+" rejected", "error", err, "status", status)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", labeled.ErrInvalidDocument, err)
	}
	return data, nil
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "arrayschema-http",
		"version":     strings.TrimSpace(arrayschema.Version),
		"api_version": apiVersion,
	})
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.Registry.List(r.Context())
	if err != nil {
		s.fail(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"schemas": names})
}

// GetSchema handles GET /schemas/{name}.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.Registry.Get(r.Context(), name)
	if err != nil {
		s.fail(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, SchemaResponse{Name: name, Kind: string(doc.Kind), Schema: doc.Schema})
}

// PutSchema handles PUT /schemas/{name}. With "If-None-Match: *" an
// existing schema is not replaced and the request fails with 409.
func (s *Server) PutSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, "put", err)
		return
	}

	put := s.Registry.Put
	if r.Header.Get("If-None-Match") == "*" {
		put = s.Registry.Create
	}
	doc, err := put(r.Context(), name, data)
	if err != nil {
		s.fail(w, r, "put", err)
		return
	}
	writeJSON(w, http.StatusOK, SchemaResponse{Name: name, Kind: string(doc.Kind)})
}

// DeleteSchema handles DELETE /schemas/{name}.
func (s *Server) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := s.Registry.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /schemas/{name}/validate. The body is a JSON or
// YAML container document. Conforming containers get 200; validation
// failures, including failing checks, get 422.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, "validate", err)
		return
	}

	// Surface lookup failures before validating, so that any other error
	// from ValidateDocument is a failing check.
	if _, err := s.Registry.Compile(r.Context(), name); err != nil {
		s.fail(w, r, "validate", err)
		return
	}

	err = s.Registry.ValidateDocument(r.Context(), name, data)
	if err == nil {
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
		return
	}

	var se *schema.SchemaError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
			Error: err.Error(),
			Facet: se.Facet,
			Path:  se.Path,
		})
		return
	}
	if statusOf(err) == http.StatusInternalServerError {
		writeJSON(w, http.StatusUnprocessableEntity, ValidateResponse{Error: err.Error()})
		return
	}
	s.fail(w, r, "validate", err)
}

// GetDocumentSchema handles GET /document-schemas/{kind}, returning the
// JSON-Schema companion of a serialized schema kind.
func (s *Server) GetDocumentSchema(w http.ResponseWriter, r *http.Request) {
	doc, err := schema.DocumentSchema(schema.DocumentKind(chi.URLParam(r, "kind")))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Hooks returns observability hooks that publish finished validations to
// the event stream.
func (s *Server) Hooks() observability.Hooks {
	return s.Streams.Hooks()
}
