package session

import (
	"context"
	"fmt"
	"io"
)

// selfTestCase is one step of the fixed verification sequence.
type selfTestCase struct {
	label string
	tool  string
	args  map[string]any
}

// selfTestSequence exercises every tool family against a live server.
var selfTestSequence = []selfTestCase{
	{"current track", "playback", map[string]any{"action": "get"}},
	{"pause playback", "playback", map[string]any{"action": "pause"}},
	{"resume playback", "playback", map[string]any{"action": "start"}},
	{"track search", "search", map[string]any{"query": "Bohemian Rhapsody", "qtype": "track", "limit": 5}},
	{"queue contents", "queue", map[string]any{"action": "get"}},
	{"item lookup", "get_info", map[string]any{"item_uri": "spotify:track:3z8h0TU7ReDPLIbEnYhWZb"}},
	{"playlist listing", "playlist", map[string]any{"action": "get"}},
}

const previewLimit = 200

// SelfTest runs the fixed tool sequence over the session, writing each
// result (truncated) to out. Dispatch errors are reported and the sequence
// continues; only a transport failure aborts the run.
func (s *Session) SelfTest(ctx context.Context, out io.Writer) error {
	fmt.Fprintf(out, "Running self-test (%d tool calls)\n\n", len(selfTestSequence))

	failures := 0
	for i, tc := range selfTestSequence {
		fmt.Fprintf(out, "%d. %s: %s %v\n", i+1, tc.label, tc.tool, tc.args)

		result, err := s.CallTool(ctx, tc.tool, tc.args)
		if err != nil {
			return fmt.Errorf("self-test aborted at %q: %w", tc.label, err)
		}

		if result.IsError {
			failures++
			fmt.Fprintf(out, "   ✗ %s\n\n", preview(result.Text))
			continue
		}

		fmt.Fprintf(out, "   ✓ %s\n\n", preview(result.Text))
	}

	if failures > 0 {
		fmt.Fprintf(out, "Self-test finished with %d failing call(s) of %d.\n", failures, len(selfTestSequence))
	} else {
		fmt.Fprintf(out, "All %d self-test calls succeeded.\n", len(selfTestSequence))
	}

	return nil
}

func preview(text string) string {
	if len(text) > previewLimit {
		return text[:previewLimit] + "..."
	}
	return text
}
