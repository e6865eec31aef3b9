// Package tools defines the tool surface exposed over MCP and dispatches tool
// calls onto the Spotify backend.
//
// # Tool Families
//
// Five tools are registered: playback, search, queue, get_info and playlist.
// Multi-action tools take an "action" argument selecting the backend
// operation.
//
// # Dispatch Table
//
// Dispatch is a two-level lookup over a table built at construction time: the
// tool name selects a [ToolSpec], the action tag selects an [ActionSpec]
// binding a handler to a declarative argument rule (required names plus an
// at-least-one-of group). Validation runs before the handler, so the backend
// is never invoked with a required argument missing.
//
// # Results
//
// Every outcome is a textual result. Lookups serialize to indented JSON
// (deterministic for a fixed input); mutations return short confirmations.
// Backend and validation failures become error results - no fault from this
// package reaches the transport.
package tools
