package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-mcp/internal/shared"
)

const defaultMaxTokens = 1000

// OpenAIClient implements [CompletionService] against an OpenAI-compatible
// chat completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

// OpenAIOpts contains configuration options for creating an [OpenAIClient].
type OpenAIOpts struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewOpenAIClient creates a completion client for the configured endpoint and model.
func NewOpenAIClient(opts OpenAIOpts) (*OpenAIClient, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: llm base_url is required", shared.ErrInvalidConfig)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: llm model is required", shared.ErrInvalidConfig)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &OpenAIClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}, nil
}

// Wire types for the chat completions request/response.

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  any             `json:"parameters,omitempty"`
	Arguments   json.RawMessage `json:"arguments,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type completionRequest struct {
	Model     string        `json:"model"`
	Messages  []wireMessage `json:"messages"`
	Tools     []wireTool    `json:"tools,omitempty"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the full conversation plus tool manifest and returns the
// assistant's next turn.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, tools []ToolDef) (*Completion, error) {
	reqBody := completionRequest{
		Model:     c.model,
		Messages:  make([]wireMessage, 0, len(messages)),
		MaxTokens: defaultMaxTokens,
	}

	for _, m := range messages {
		wm := wireMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = tc.Arguments
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		reqBody.Messages = append(reqBody.Messages, wm)
	}

	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, wireTool{
			Type:     "function",
			Function: wireFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("completion request", "model", c.model, "turns", len(messages), "tools", len(tools))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: completion call: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading completion response: %v", shared.ErrAPIRequest, err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding completion response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%w: completion status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion response has no choices", shared.ErrAPIRequest)
	}

	msg := parsed.Choices[0].Message
	completion := &Completion{Content: msg.Content}
	for _, wtc := range msg.ToolCalls {
		id := wtc.ID
		if id == "" {
			id = shared.GenerateID()
		}
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        id,
			Name:      wtc.Function.Name,
			Arguments: wtc.Function.Arguments,
		})
	}

	return completion, nil
}
