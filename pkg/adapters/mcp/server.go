package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	schemasURI        = "arrayschema://schemas"
	schemaURITemplate = "arrayschema://schemas/{name}"
)

// ValidateArgs are the arguments of the validate_container tool.
type ValidateArgs struct {
	Schema    string `json:"schema"`
	Container string `json:"container"`
}

// ValidateResult aligns with the HTTP ValidateResponse.
type ValidateResult struct {
	Valid bool     `json:"valid" jsonschema_description:"Whether the container conforms to the schema"`
	Error string   `json:"error,omitempty" jsonschema_description:"The first violation found"`
	Facet string   `json:"facet,omitempty" jsonschema_description:"The schema facet that rejected the container"`
	Path  []string `json:"path,omitempty" jsonschema_description:"Member, coordinate or attribute holding the violation"`
}

// CheckArgs are the arguments of the check_schema tool.
type CheckArgs struct {
	Document string `json:"document"`
}

// CheckResult reports whether a schema document is well-formed.
type CheckResult struct {
	Valid       bool   `json:"valid" jsonschema_description:"Whether the document is a well-formed schema"`
	Kind        string `json:"kind,omitempty" jsonschema_description:"array or table"`
	Description string `json:"description,omitempty" jsonschema_description:"One-line summary of the schema"`
	Error       string `json:"error,omitempty" jsonschema_description:"Why the document was rejected"`
}

// Registry is the part of registry.Registry the MCP server uses.
type Registry interface {
	Put(ctx context.Context, name string, data []byte) (ports.Document, error)
	Get(ctx context.Context, name string) (ports.Document, error)
	List(ctx context.Context) ([]string, error)
	ValidateDocument(ctx context.Context, name string, data []byte) error
}

var _ Registry = (*registry.Registry)(nil)

// Server exposes a schema registry as an MCP Server.
type Server struct {
	registry  Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(reg Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry:  reg,
		logger:    logger,
		mcpServer: server.NewMCPServer("arrayschema-mcp", strings.TrimSpace(arrayschema.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate_container
	validateTool := mcp.NewTool("validate_container",
		mcp.WithDescription("Validate a labeled array or table, given as a JSON or YAML container document, against a stored schema."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Name of the stored schema")),
		mcp.WithString("container", mcp.Required(), mcp.Description("Container document: dtype, dims, shape, chunks, attrs, coords, array_type; or data_vars for a table")),
		mcp.WithOutputSchema[ValidateResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: check_schema
	checkTool := mcp.NewTool("check_schema",
		mcp.WithDescription("Check that a JSON or YAML schema document is well-formed without storing it."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Schema document, bare or as {kind, schema}")),
		mcp.WithOutputSchema[CheckResult](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))

	// TOOL: list_schemas
	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the names of stored schemas."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.registry.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: get_schema
	s.mcpServer.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Get a stored schema document."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the stored schema")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := s.schemaJSON(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	})

	// TOOL: put_schema
	s.mcpServer.AddTool(mcp.NewTool("put_schema",
		mcp.WithDescription("Store a schema document under a name, replacing any previous one."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name to store the schema under")),
		mcp.WithString("document", mcp.Required(), mcp.Description("Schema document, bare or as {kind, schema}")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		document, err := request.RequireString("document")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		doc, err := s.registry.Put(ctx, name, []byte(document))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("put failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("stored %s schema %s", doc.Kind, name)), nil
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidateResult, error) {
	err := s.registry.ValidateDocument(ctx, args.Schema, []byte(args.Container))
	if err == nil {
		return ValidateResult{Valid: true}, nil
	}

	var se *schema.SchemaError
	if errors.As(err, &se) {
		return ValidateResult{Error: err.Error(), Facet: se.Facet, Path: se.Path}, nil
	}
	s.logger.Warn("MCP Validate: failed", "schema", args.Schema, "error", err)
	return ValidateResult{}, fmt.Errorf("validate failed: %w", err)
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args CheckArgs) (CheckResult, error) {
	doc, err := registry.ParseDocument([]byte(args.Document))
	if err != nil {
		return CheckResult{Error: err.Error()}, nil
	}
	v, err := doc.Decode()
	if err != nil {
		return CheckResult{Kind: string(doc.Kind), Error: err.Error()}, nil
	}
	return CheckResult{Valid: true, Kind: string(doc.Kind), Description: schema.Describe(v)}, nil
}

func (s *Server) schemaJSON(ctx context.Context, name string) (string, error) {
	doc, err := s.registry.Get(ctx, name)
	if err != nil {
		return "", err
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

func (s *Server) registerResources() {
	// EXPOSE: arrayschema://schemas
	s.mcpServer.AddResource(mcp.NewResource(schemasURI, "Stored Schemas",
		mcp.WithResourceDescription("Names of the schemas in the registry"),
		mcp.WithMIMEType("application/json"),
	), s.readSchemas)

	// EXPOSE: arrayschema://schemas/{name}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(schemaURITemplate, "Stored Schema",
		mcp.WithTemplateDescription("A stored schema document"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readSchema)
}

func (s *Server) readSchemas(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	jsonBytes, _ := json.Marshal(names)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemasURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readSchema(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name := strings.TrimPrefix(uri, schemasURI+"/")
	text, err := s.schemaJSON(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}
