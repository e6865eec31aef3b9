package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	"github.com/desertthunder/spotify-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// SSEEndpoint accepts stream-open requests; one session per connection.
	SSEEndpoint = "/sse"
	// MessageEndpoint accepts messages posted out-of-band, addressed to an
	// open session via the sessionId query parameter.
	MessageEndpoint = "/messages"
)

// ShutdownTimeout bounds a graceful stop, session close included.
const ShutdownTimeout = 10 * time.Second

// StreamServerOpts contains configuration options for creating a [StreamServer].
type StreamServerOpts struct {
	Name       string
	Version    string
	Addr       string
	Dispatcher *tools.Dispatcher
	Logger     *log.Logger
}

// StreamServer hosts the MCP session transport over SSE, with the tool
// registry dispatching calls onto the Spotify backend.
//
// Sessions are independent cooperative tasks; the only state they share is the
// immutable dispatch table and the backend handle.
type StreamServer struct {
	mcp    *server.MCPServer
	sse    *server.SSEServer
	srv    *http.Server
	logger *log.Logger
}

// NewStreamServer wires the dispatcher's tools into an MCP server and mounts
// its SSE and message endpoints on a [BasicRouter] with request logging.
func NewStreamServer(opts StreamServerOpts) *StreamServer {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	mcpServer := server.NewMCPServer(opts.Name, opts.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	opts.Dispatcher.Register(mcpServer)

	sse := server.NewSSEServer(mcpServer,
		server.WithSSEEndpoint(SSEEndpoint),
		server.WithMessageEndpoint(MessageEndpoint),
		server.WithKeepAlive(true),
	)

	router := NewBasicRouter()
	router.Use(Logging(opts.Logger))
	router.Handle(http.MethodGet, SSEEndpoint, sse.SSEHandler())
	router.Handle(http.MethodPost, MessageEndpoint, sse.MessageHandler())

	return &StreamServer{
		mcp:    mcpServer,
		sse:    sse,
		srv:    &http.Server{Addr: opts.Addr, Handler: router},
		logger: opts.Logger,
	}
}

// Handler returns the server's root [http.Handler] (used by httptest).
func (s *StreamServer) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe starts serving and blocks until the listener fails or
// Shutdown is called.
func (s *StreamServer) ListenAndServe() error {
	s.logger.Info("stream server listening", "addr", s.srv.Addr, "sse", SSEEndpoint, "messages", MessageEndpoint)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	return nil
}

// Shutdown closes every open session and stops the HTTP server.
//
// Pending reads and writes on session streams are released before the HTTP
// server drains.
func (s *StreamServer) Shutdown(ctx context.Context) error {
	s.logger.Info("stream server shutting down")

	if err := s.sse.Shutdown(ctx); err != nil {
		s.logger.Warn("sse shutdown error", "error", err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout/2)
	defer cancel()
	if err := s.srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	return nil
}
