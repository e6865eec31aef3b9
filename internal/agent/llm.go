package agent

import "context"

// Conversation turn roles. The completion service is stateless; the full turn
// sequence is resent on every call.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a single tool invocation requested by the model. Arguments is a
// JSON-encoded object string.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is a provider-agnostic conversation turn.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // set when Role == RoleAssistant and the model requested tools
	ToolCallID string     // set when Role == RoleTool, correlating with a ToolCall
}

// ToolDef describes one callable function offered to the model. Parameters is
// a JSON-schema object (any JSON-marshalable value).
type ToolDef struct {
	Name        string
	Description string
	Parameters  any
}

// Completion is the model's response to one generate step: optional free text
// plus zero or more requested tool calls.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// CompletionService abstracts the chat completion provider consumed by the
// orchestration loop.
type CompletionService interface {
	Complete(ctx context.Context, messages []Message, tools []ToolDef) (*Completion, error)
}
