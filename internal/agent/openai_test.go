package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/spotify-mcp/internal/shared"
)

func TestNewOpenAIClient(t *testing.T) {
	t.Run("requires base url", func(t *testing.T) {
		_, err := NewOpenAIClient(OpenAIOpts{Model: "gpt-4o-mini"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("requires model", func(t *testing.T) {
		_, err := NewOpenAIClient(OpenAIOpts{BaseURL: "https://api.openai.com/v1"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestComplete(t *testing.T) {
	t.Run("text completion", func(t *testing.T) {
		var captured completionRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Expected bearer auth, got %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Nothing is playing."}}]}`))
		}))
		defer ts.Close()

		client, err := NewOpenAIClient(OpenAIOpts{BaseURL: ts.URL, APIKey: "test-key", Model: "gpt-4o-mini"})
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		tools := []ToolDef{{Name: "playback", Description: "Manage Spotify playback"}}
		messages := []Message{{Role: RoleUser, Content: "what's playing?"}}

		completion, err := client.Complete(context.Background(), messages, tools)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if completion.Content != "Nothing is playing." {
			t.Errorf("Expected content, got %q", completion.Content)
		}
		if len(completion.ToolCalls) != 0 {
			t.Errorf("Expected no tool calls, got %v", completion.ToolCalls)
		}
		if captured.Model != "gpt-4o-mini" {
			t.Errorf("Expected model in request, got %q", captured.Model)
		}
		if len(captured.Tools) != 1 || captured.Tools[0].Function.Name != "playback" {
			t.Errorf("Expected tool manifest forwarded, got %+v", captured.Tools)
		}
	})

	t.Run("tool call completion", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"choices": [{"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_abc",
						"type": "function",
						"function": {"name": "search", "arguments": "{\"query\": \"queen\"}"}
					}]
				}}]
			}`))
		}))
		defer ts.Close()

		client, err := NewOpenAIClient(OpenAIOpts{BaseURL: ts.URL, Model: "gpt-4o-mini"})
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		completion, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "find queen"}}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(completion.ToolCalls) != 1 {
			t.Fatalf("Expected one tool call, got %d", len(completion.ToolCalls))
		}
		tc := completion.ToolCalls[0]
		if tc.ID != "call_abc" || tc.Name != "search" {
			t.Errorf("Expected call identity preserved, got %+v", tc)
		}
		if tc.Arguments != `{"query": "queen"}` {
			t.Errorf("Expected raw arguments string, got %q", tc.Arguments)
		}
	})

	t.Run("missing call id is synthesized", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"choices": [{"message": {
					"role": "assistant",
					"tool_calls": [{"type": "function", "function": {"name": "playback", "arguments": "{}"}}]
				}}]
			}`))
		}))
		defer ts.Close()

		client, _ := NewOpenAIClient(OpenAIOpts{BaseURL: ts.URL, Model: "gpt-4o-mini"})
		completion, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "pause"}}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if completion.ToolCalls[0].ID == "" {
			t.Error("Expected synthesized call ID")
		}
	})

	t.Run("api error surfaces message", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`))
		}))
		defer ts.Close()

		client, _ := NewOpenAIClient(OpenAIOpts{BaseURL: ts.URL, Model: "gpt-4o-mini"})
		_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("Expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer ts.Close()

		client, _ := NewOpenAIClient(OpenAIOpts{BaseURL: ts.URL, Model: "gpt-4o-mini"})
		if _, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil); err == nil {
			t.Error("Expected error for empty choices")
		}
	})

	t.Run("assistant turn with tool calls round trips", func(t *testing.T) {
		var captured completionRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			w.Write([]byte(`{"choices": [{"message": {"content": "done"}}]}`))
		}))
		defer ts.Close()

		client, _ := NewOpenAIClient(OpenAIOpts{BaseURL: ts.URL, Model: "gpt-4o-mini"})
		messages := []Message{
			{Role: RoleUser, Content: "find queen"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_1", Name: "search", Arguments: `{"query": "queen"}`}}},
			{Role: RoleTool, Content: `{"tracks": []}`, ToolCallID: "call_1"},
		}

		if _, err := client.Complete(context.Background(), messages, nil); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(captured.Messages) != 3 {
			t.Fatalf("Expected 3 wire messages, got %d", len(captured.Messages))
		}
		assistant := captured.Messages[1]
		if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Function.Name != "search" {
			t.Errorf("Expected assistant tool calls on the wire, got %+v", assistant)
		}
		if captured.Messages[2].ToolCallID != "call_1" {
			t.Errorf("Expected tool_call_id on tool turn, got %+v", captured.Messages[2])
		}
	})
}
