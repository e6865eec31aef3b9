// Package agent drives a multi-turn conversation between a chat completion
// service and the tool registry reached through a client session.
//
// # Orchestration Loop
//
// [Agent.Run] seeds the conversation with the user query, presents the
// server's tools as a callable-function manifest, and alternates between
// generation and dispatch. Tool calls requested in one round run sequentially
// in the order the model listed them; each result is appended as a tool turn.
// The loop terminates when a response carries no tool calls, returning the
// concatenated assistant text from every round.
//
// # Failure Policy
//
// A failing tool call becomes an error-text tool turn so the model can react;
// a failing completion call terminates the run. A configurable turn cap
// guards against a model that never stops requesting tools.
//
// # Completion Service
//
// [CompletionService] abstracts the model provider. [OpenAIClient] implements
// it against any OpenAI-compatible chat completions endpoint.
package agent
