// Package session implements the client side of the SSE session transport.
//
// A [Session] owns exactly one outbound stream. Connect opens the stream and
// performs the one-time initialize handshake; every successful Connect must be
// paired with exactly one Close on all exit paths. Closing the session cancels
// any outstanding call, which surfaces as [shared.ErrSessionClosed] rather
// than hanging.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultCallTimeout bounds the wait for a tool result correlated to one call.
const DefaultCallTimeout = 30 * time.Second

// Result is the outcome of one tool call: the text payload the server-side
// dispatcher produced, plus its success/error flag.
type Result struct {
	Text    string
	IsError bool
}

// Session is one live client connection to a stream server.
type Session struct {
	client      *mcpclient.Client
	logger      *log.Logger
	callTimeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// Opts contains configuration options for establishing a [Session].
type Opts struct {
	Logger      *log.Logger
	ClientName  string
	Version     string
	CallTimeout time.Duration
}

// Connect opens the SSE stream at url and performs the initialize handshake,
// blocking until the handshake acknowledgment arrives.
//
// On any failure the partially opened stream is released before returning.
func Connect(ctx context.Context, url string, opts Opts) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.ClientName == "" {
		opts.ClientName = "spotify-mcp"
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}

	cli, err := mcpclient.NewSSEMCPClient(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create stream client: %v", shared.ErrTransport, err)
	}

	if err := cli.Start(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("%w: failed to open stream to %s: %v", shared.ErrTransport, url, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    opts.ClientName,
		Version: opts.Version,
	}

	if _, err := cli.Initialize(ctx, initReq); err != nil {
		cli.Close()
		return nil, fmt.Errorf("%w: handshake failed: %v", shared.ErrTransport, err)
	}

	opts.Logger.Info("session established", "url", url)

	return &Session{
		client:      cli,
		logger:      opts.Logger,
		callTimeout: opts.CallTimeout,
		closed:      make(chan struct{}),
	}, nil
}

// ListTools queries the server for its registered tool descriptors.
func (s *Session) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if s.isClosed() {
		return nil, shared.ErrSessionClosed
	}

	result, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: list tools: %v", shared.ErrCallFailed, err)
	}

	return result.Tools, nil
}

// CallTool sends one tool call and blocks until the matching result arrives
// or the bounded wait expires.
//
// A dispatch failure reported by the server is NOT an error here; it comes
// back as a [Result] with IsError set, so callers can fold it into a
// conversation. The returned error covers transport-level failures only.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	if s.isClosed() {
		return nil, shared.ErrSessionClosed
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	s.logger.Debug("calling tool", "tool", name)

	result, err := s.client.CallTool(callCtx, req)
	if err != nil {
		switch {
		case s.isClosed():
			return nil, fmt.Errorf("%w: call %s interrupted", shared.ErrSessionClosed, name)
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: no result for %s within %s", shared.ErrTimeout, name, s.callTimeout)
		}
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCallFailed, name, err)
	}

	return &Result{Text: extractText(result), IsError: result.IsError}, nil
}

// Close releases the handshake context and the underlying stream. Safe to
// call more than once; only the first call takes effect.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.logger.Debug("closing session")
		err = s.client.Close()
	})
	return err
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// extractText flattens a tool result's content blocks into one text payload.
func extractText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if data, err := json.Marshal(v); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}
