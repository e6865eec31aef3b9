package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-mcp/internal/session"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultMaxTurns bounds generate/dispatch rounds per query. The protocol
// itself imposes no cap, but an unbounded loop is at the mercy of the model.
const DefaultMaxTurns = 10

// ToolCaller is the slice of the client session the loop needs. Satisfied by
// [session.Session]; tests substitute a scripted double.
type ToolCaller interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*session.Result, error)
}

// Agent runs the orchestration loop for one or more queries over a session.
type Agent struct {
	llm      CompletionService
	caller   ToolCaller
	logger   *log.Logger
	maxTurns int
}

// Opts contains configuration options for creating an [Agent].
type Opts struct {
	LLM      CompletionService
	Caller   ToolCaller
	Logger   *log.Logger
	MaxTurns int
}

// New creates an Agent. MaxTurns defaults to [DefaultMaxTurns]; zero or
// negative values fall back to the default.
func New(opts Opts) *Agent {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	return &Agent{
		llm:      opts.LLM,
		caller:   opts.Caller,
		logger:   opts.Logger,
		maxTurns: opts.MaxTurns,
	}
}

// Run executes the loop for a single user query and returns the concatenated
// assistant text from every generate step, in turn order.
//
// A completion-service failure terminates the run immediately. Tool failures
// do not: they are folded into the conversation as error-text tool turns so
// the model can react.
func (a *Agent) Run(ctx context.Context, query string) (string, error) {
	manifest, err := a.manifest(ctx)
	if err != nil {
		return "", err
	}

	conversation := []Message{{Role: RoleUser, Content: query}}
	var finalText []string

	for turn := 0; ; turn++ {
		if turn >= a.maxTurns {
			a.logger.Warn("turn cap reached", "max_turns", a.maxTurns)
			return strings.Join(finalText, "\n"), fmt.Errorf("conversation exceeded %d turns without terminating", a.maxTurns)
		}

		completion, err := a.llm.Complete(ctx, conversation, manifest)
		if err != nil {
			return "", fmt.Errorf("completion service failed: %w", err)
		}

		if completion.Content != "" {
			finalText = append(finalText, completion.Content)
		}

		if len(completion.ToolCalls) == 0 {
			a.logger.Debug("loop terminated", "turns", turn+1)
			return strings.Join(finalText, "\n"), nil
		}

		conversation = append(conversation, Message{
			Role:      RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		// Sequential, in the order the model listed them: later calls may
		// depend on context established by earlier ones.
		for _, tc := range completion.ToolCalls {
			conversation = append(conversation, Message{
				Role:       RoleTool,
				Content:    a.dispatch(ctx, tc),
				ToolCallID: tc.ID,
			})
		}
	}
}

// dispatch executes one requested tool call, always producing result text.
func (a *Agent) dispatch(ctx context.Context, tc ToolCall) string {
	args := map[string]any{}
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			a.logger.Warn("model produced malformed tool arguments", "tool", tc.Name, "error", err)
			return fmt.Sprintf("Error: arguments for %s are not a valid JSON object: %v", tc.Name, err)
		}
	}

	a.logger.Info("executing requested tool call", "tool", tc.Name)

	result, err := a.caller.CallTool(ctx, tc.Name, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	return result.Text
}

// manifest converts the server's tool descriptors into the callable-function
// manifest shape the completion service expects.
func (a *Agent) manifest(ctx context.Context) ([]ToolDef, error) {
	descriptors, err := a.caller.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	defs := make([]ToolDef, 0, len(descriptors))
	for _, t := range descriptors {
		defs = append(defs, ToolDef{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}

	return defs, nil
}
