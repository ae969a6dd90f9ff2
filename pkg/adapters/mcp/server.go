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

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/internal/sanitize"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/aretw0/recipient/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing the open screens.
const SessionsURI = "recipient://sessions"

// ScreenResponse is the result of every screen tool.
type ScreenResponse struct {
	SessionID string           `json:"session_id" jsonschema_description:"The screen session to pass to later calls"`
	State     *domain.State    `json:"state" jsonschema_description:"The workflow state after the call"`
	View      presenter.Screen `json:"view" jsonschema_description:"The rendered edit screen"`
}

type openArgs struct {
	RecipientID string `json:"recipient_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type changeArgs struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// Server exposes recipient edit screens as MCP tools.
// Every tool waits for the backend round-trip before answering.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("recipient-mcp", strings.TrimSpace(recipient.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
	s.mcpServer.AddTool(mcp.NewTool("open_screen",
		mcp.WithDescription("Open an edit screen for a recipient and load it."),
		mcp.WithString("recipient_id", mcp.Required(), mcp.Description("The recipient to edit")),
		mcp.WithOutputSchema[ScreenResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("render_screen",
		mcp.WithDescription("Render the current state of an open screen."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Screen session id")),
		mcp.WithOutputSchema[ScreenResponse](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("fetch",
		mcp.WithDescription("Reload the recipient from the backend."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Screen session id")),
		mcp.WithOutputSchema[ScreenResponse](),
	), mcp.NewStructuredToolHandler(s.handleFetch))

	s.mcpServer.AddTool(mcp.NewTool("change",
		mcp.WithDescription("Edit one field and re-validate it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Screen session id")),
		mcp.WithString("field", mcp.Required(),
			mcp.Enum(fieldNames()...),
			mcp.Description("The field to edit")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The new text of the field")),
		mcp.WithOutputSchema[ScreenResponse](),
	), mcp.NewStructuredToolHandler(s.handleChange))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Save the edited recipient. Fails while the form has errors."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Screen session id")),
		mcp.WithOutputSchema[ScreenResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("close_alert",
		mcp.WithDescription("Dismiss the pending alert."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Screen session id")),
		mcp.WithOutputSchema[ScreenResponse](),
	), mcp.NewStructuredToolHandler(s.handleCloseAlert))

	s.mcpServer.AddTool(mcp.NewTool("close_screen",
		mcp.WithDescription("Close an edit screen."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Screen session id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sid := request.GetString("session_id", "")
		if err := s.sessions.Close(sid); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("closed " + sid), nil
	})
}

func fieldNames() []string {
	names := make([]string, 0, len(domain.Fields))
	for _, f := range domain.Fields {
		names = append(names, string(f))
	}
	return names
}

func (s *Server) handleOpen(ctx context.Context, _ mcp.CallToolRequest, args openArgs) (ScreenResponse, error) {
	sid, screen, err := s.sessions.Open(ctx, args.RecipientID)
	if err != nil {
		return ScreenResponse{}, fmt.Errorf("open failed: %w", err)
	}
	screen.Wait()
	return respond(sid, screen), nil
}

func (s *Server) handleRender(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ScreenResponse, error) {
	return s.run(ctx, args.SessionID, func(context.Context, *recipient.Screen) error { return nil })
}

func (s *Server) handleFetch(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ScreenResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, screen *recipient.Screen) error {
		screen.Fetch(ctx)
		return nil
	})
}

func (s *Server) handleChange(ctx context.Context, _ mcp.CallToolRequest, args changeArgs) (ScreenResponse, error) {
	field, err := domain.ParseField(args.Field)
	if err != nil {
		return ScreenResponse{}, err
	}
	value, err := sanitize.Value(args.Value)
	if err != nil {
		s.logger.Warn("MCP change: input rejected", "error", err, "size", len(args.Value))
		return ScreenResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.run(ctx, args.SessionID, func(_ context.Context, screen *recipient.Screen) error {
		return screen.Change(field, value)
	})
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ScreenResponse, error) {
	return s.run(ctx, args.SessionID, func(ctx context.Context, screen *recipient.Screen) error {
		return screen.Submit(ctx)
	})
}

func (s *Server) handleCloseAlert(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ScreenResponse, error) {
	return s.run(ctx, args.SessionID, func(_ context.Context, screen *recipient.Screen) error {
		screen.CloseAlert()
		return nil
	})
}

func (s *Server) run(ctx context.Context, sid string, op func(context.Context, *recipient.Screen) error) (ScreenResponse, error) {
	var resp ScreenResponse
	err := s.sessions.WithLock(ctx, sid, func(ctx context.Context, screen *recipient.Screen) error {
		if err := op(ctx, screen); err != nil {
			return err
		}
		screen.Wait()
		resp = respond(sid, screen)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return ScreenResponse{}, fmt.Errorf("unknown session %q: %w", sid, err)
		}
		return ScreenResponse{}, err
	}
	return resp, nil
}

func respond(sid string, screen *recipient.Screen) ScreenResponse {
	state := screen.State()
	return ScreenResponse{SessionID: sid, State: state, View: presenter.Present(state)}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Open recipient screens",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.sessions.List())
		if err != nil {
			return nil, fmt.Errorf("encode sessions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
