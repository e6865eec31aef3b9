package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotify-mcp/internal/server"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	itesting "github.com/desertthunder/spotify-mcp/internal/testing"
	"github.com/desertthunder/spotify-mcp/internal/tools"
)

// startServer runs a stream server over httptest and returns its SSE URL.
func startServer(t *testing.T, backend tools.Backend) string {
	t.Helper()

	dispatcher := tools.NewDispatcher(backend, nil)
	streamServer := server.NewStreamServer(server.StreamServerOpts{
		Name:       "test-server",
		Version:    "0.0.1",
		Addr:       "127.0.0.1:0",
		Dispatcher: dispatcher,
	})

	ts := httptest.NewServer(streamServer.Handler())
	t.Cleanup(ts.Close)

	return ts.URL + server.SSEEndpoint
}

func TestConnect(t *testing.T) {
	t.Run("handshake succeeds against live server", func(t *testing.T) {
		url := startServer(t, &itesting.MockBackend{})

		sess, err := Connect(context.Background(), url, Opts{})
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer sess.Close()
	})

	t.Run("unreachable server is a transport error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err := Connect(ctx, "http://127.0.0.1:1/sse", Opts{})
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("Expected ErrTransport, got %v", err)
		}
	})
}

func TestListTools(t *testing.T) {
	url := startServer(t, &itesting.MockBackend{})

	sess, err := Connect(context.Background(), url, Opts{})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer sess.Close()

	descriptors, err := sess.ListTools(context.Background())
	if err != nil {
		t.Fatalf("Failed to list tools: %v", err)
	}

	if len(descriptors) != 5 {
		t.Fatalf("Expected 5 tools, got %d", len(descriptors))
	}

	seen := map[string]bool{}
	for _, tool := range descriptors {
		seen[tool.Name] = true
	}
	for _, name := range []string{"playback", "search", "queue", "get_info", "playlist"} {
		if !seen[name] {
			t.Errorf("Expected tool %q in listing", name)
		}
	}
}

func TestCallTool(t *testing.T) {
	t.Run("round trip preserves payload", func(t *testing.T) {
		url := startServer(t, &itesting.MockBackend{})

		sess, err := Connect(context.Background(), url, Opts{})
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer sess.Close()

		result, err := sess.CallTool(context.Background(), "playback", map[string]any{"action": "get"})
		if err != nil {
			t.Fatalf("Call failed: %v", err)
		}
		if result.IsError {
			t.Errorf("Expected success, got error %q", result.Text)
		}
		if result.Text != "No track playing." {
			t.Errorf("Expected dispatcher payload byte for byte, got %q", result.Text)
		}
	})

	t.Run("dispatch failure is a result not an error", func(t *testing.T) {
		url := startServer(t, &itesting.MockBackend{})

		sess, err := Connect(context.Background(), url, Opts{})
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer sess.Close()

		result, err := sess.CallTool(context.Background(), "playback", map[string]any{"action": "rewind"})
		if err != nil {
			t.Fatalf("Expected dispatch failure as result, got transport error %v", err)
		}
		if !result.IsError {
			t.Error("Expected error flag set")
		}
		if !strings.Contains(result.Text, "unknown operation") {
			t.Errorf("Expected dispatcher error text, got %q", result.Text)
		}
	})

	t.Run("call after close fails fast", func(t *testing.T) {
		url := startServer(t, &itesting.MockBackend{})

		sess, err := Connect(context.Background(), url, Opts{})
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}

		if err := sess.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if _, err := sess.CallTool(context.Background(), "playback", map[string]any{"action": "get"}); !errors.Is(err, shared.ErrSessionClosed) {
			t.Errorf("Expected ErrSessionClosed, got %v", err)
		}
		if _, err := sess.ListTools(context.Background()); !errors.Is(err, shared.ErrSessionClosed) {
			t.Errorf("Expected ErrSessionClosed, got %v", err)
		}
	})
}

func TestCloseWithCallOutstanding(t *testing.T) {
	backend := itesting.NewSlowBackend()
	url := startServer(t, backend)

	sess, err := Connect(context.Background(), url, Opts{})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer close(backend.Release)

	errCh := make(chan error, 1)
	go func() {
		_, err := sess.CallTool(context.Background(), "playback", map[string]any{"action": "get"})
		errCh <- err
	}()

	select {
	case <-backend.Started:
	case <-time.After(5 * time.Second):
		t.Fatal("Call never reached the backend")
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, shared.ErrSessionClosed) {
			t.Errorf("Expected ErrSessionClosed for the outstanding call, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Outstanding call hung after close")
	}
}

func TestCloseIdempotent(t *testing.T) {
	url := startServer(t, &itesting.MockBackend{})

	sess, err := Connect(context.Background(), url, Opts{})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Errorf("Second close should be a no-op, got %v", err)
	}
}

func TestSelfTest(t *testing.T) {
	backend := &itesting.MockBackend{}
	url := startServer(t, backend)

	sess, err := Connect(context.Background(), url, Opts{})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer sess.Close()

	var out strings.Builder
	if err := sess.SelfTest(context.Background(), &out); err != nil {
		t.Fatalf("Self-test aborted: %v", err)
	}

	report := out.String()
	if !strings.Contains(report, "All 7 self-test calls succeeded.") {
		t.Errorf("Expected all calls to succeed, got report:\n%s", report)
	}
	if len(backend.Calls) != 7 {
		t.Errorf("Expected 7 backend operations, got %v", backend.Calls)
	}
}
