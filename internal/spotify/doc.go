// Package spotify implements an authenticated client for the Spotify Web API.
//
// # Authentication
//
// [Client] uses OAuth2 authorization-code flow with automatic token refresh.
// The [oauth2.Client] refreshes expired access tokens transparently using the
// refresh token; refreshed tokens are reported through an optional callback so
// callers can persist them.
//
// # Rate Limiting
//
// Every request passes through a [rate.Limiter] so bursts of tool calls stay
// under Spotify's API limits.
//
// # Error Handling
//
// The client uses typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrNoActiveDevice] : playback requested with no active device
//   - [shared.ErrAPIRequest] : HTTP request failed
//
// Response types are based on
// https://developer.spotify.com/documentation/web-api/reference/
package spotify
