// Package server provides HTTP routing, middleware, the SSE stream server and
// OAuth callback handling.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # Stream Server
//
// [StreamServer] hosts the MCP session transport over SSE. Each accepted
// stream-open request on /sse becomes one session; messages addressed to a
// session are posted to /messages with the session id as a query parameter.
// The protocol engine (mark3labs/mcp-go) enforces the one-time initialize
// handshake per session, correlates posted messages with the open stream, and
// rejects posts for unknown or expired sessions without touching other
// sessions. Closing the stream, from either endpoint, releases all pending
// reads and writes for that session.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization-code callback flow used
// by the auth command. It validates the state parameter (CSRF protection),
// exchanges the authorization code for tokens, and sends the result through a
// channel. It only processes one callback to prevent replay.
package server
