package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-mcp/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// requestsPerSecond keeps tool-call bursts under Spotify's API limits.
const requestsPerSecond = 8

// Scopes are the OAuth2 scopes required for playback, queue and playlist operations.
var Scopes = []string{
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
}

// TokenCallback receives tokens issued by the OAuth2 refresh flow so callers can persist them.
type TokenCallback func(*oauth2.Token)

// Client performs authenticated calls against the Spotify Web API.
//
// Safe for concurrent use: the underlying [http.Client] is shareable and the
// token source is guarded by the oauth2 package's own locking.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	onToken    TokenCallback

	mu    sync.RWMutex
	token *oauth2.Token
}

// NewClient creates a Spotify client from OAuth2 credentials.
//
// Required keys: client_id, client_secret. redirect_uri defaults to
// http://localhost:8888/callback.
func NewClient(credentials map[string]string, logger *log.Logger) (*Client, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Client{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     logger,
	}, nil
}

// OAuthConfig returns the underlying OAuth2 configuration (used by the callback server).
func (c *Client) OAuthConfig() *oauth2.Config {
	return c.config
}

// AuthURL returns the authorization URL for the user-consent step of the flow.
func (c *Client) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OnToken registers a callback invoked whenever a new token is issued (initial
// authentication and every refresh). Safe to call concurrently with requests.
func (c *Client) OnToken(cb TokenCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onToken = cb
}

// Authenticate installs an OAuth2 token and builds the auto-refreshing HTTP client.
func (c *Client) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	src := c.config.TokenSource(ctx, token)
	c.httpClient = oauth2.NewClient(ctx, &notifyingSource{src: src, client: c, last: token.AccessToken})
	return nil
}

// notifyingSource wraps a [oauth2.TokenSource] and reports refreshed tokens
// through the client's callback so they can be persisted.
type notifyingSource struct {
	src    oauth2.TokenSource
	client *Client
	mu     sync.Mutex
	last   string
}

func (n *notifyingSource) Token() (*oauth2.Token, error) {
	token, err := n.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	n.mu.Lock()
	refreshed := token.AccessToken != n.last
	n.last = token.AccessToken
	n.mu.Unlock()

	if refreshed {
		n.client.logger.Info("spotify token refreshed")
		n.client.mu.Lock()
		n.client.token = token
		cb := n.client.onToken
		n.client.mu.Unlock()
		if cb != nil {
			cb(token)
		}
	}

	return token, nil
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// doRequest performs a rate-limited, authenticated HTTP request against the API.
//
// A nil result skips response decoding. A 204 response leaves result untouched.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	c.mu.RLock()
	authenticated := c.token != nil
	client := c.httpClient
	c.mu.RUnlock()

	if !authenticated {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, spotifyBaseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiStatusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiStatusError maps non-2xx responses to typed errors.
func (c *Client) apiStatusError(resp *http.Response) error {
	var parsed apiError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &parsed)
	msg := parsed.Error.Message

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusNotFound:
		if strings.Contains(strings.ToUpper(msg), "NO_ACTIVE_DEVICE") || strings.Contains(msg, "active device") {
			return shared.ErrNoActiveDevice
		}
	}

	if msg == "" {
		msg = string(data)
	}
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
}

// CurrentTrack retrieves the user's current playback state.
//
// Returns (nil, nil) when nothing is playing.
func (c *Client) CurrentTrack(ctx context.Context) (*Playback, error) {
	var playback Playback
	if err := c.doRequest(ctx, http.MethodGet, "/me/player/currently-playing", nil, &playback); err != nil {
		return nil, err
	}
	if playback.Item == nil {
		return nil, nil
	}
	return &playback, nil
}

// StartPlayback starts playing the given URI, or resumes the current playback
// when uri is empty. Track URIs play directly; album, artist and playlist URIs
// play as a context.
func (c *Client) StartPlayback(ctx context.Context, uri string) error {
	body := map[string]any{}
	if uri != "" {
		if kind, _, err := ParseURI(uri); err == nil && kind == "track" {
			body["uris"] = []string{uri}
		} else {
			body["context_uri"] = uri
		}
	}
	return c.doRequest(ctx, http.MethodPut, "/me/player/play", body, nil)
}

// PausePlayback pauses the current playback.
func (c *Client) PausePlayback(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil)
}

// SkipTrack skips forward n tracks (minimum 1).
func (c *Client) SkipTrack(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if err := c.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// Search queries the catalog. qtype is a comma-separated list of item types
// (track, album, artist, playlist); limit applies per type.
func (c *Client) Search(ctx context.Context, query, qtype string, limit int) (*SearchResults, error) {
	if qtype == "" {
		qtype = "track"
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", qtype)
	params.Set("limit", fmt.Sprintf("%d", limit))

	var results SearchResults
	if err := c.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// GetQueue retrieves the current playback queue.
func (c *Client) GetQueue(ctx context.Context) (*Queue, error) {
	var queue Queue
	if err := c.doRequest(ctx, http.MethodGet, "/me/player/queue", nil, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// AddToQueue appends a track to the playback queue. Accepts a bare track ID or
// a spotify:track: URI.
func (c *Client) AddToQueue(ctx context.Context, trackID string) error {
	params := url.Values{}
	params.Set("uri", TrackURI(trackID))
	return c.doRequest(ctx, http.MethodPost, "/me/player/queue?"+params.Encode(), nil, nil)
}

// GetInfo retrieves detailed information about a track, album, artist or
// playlist identified by a spotify:<type>:<id> URI.
func (c *Client) GetInfo(ctx context.Context, itemURI string) (any, error) {
	kind, id, err := ParseURI(itemURI)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "track":
		var track Track
		if err := c.doRequest(ctx, http.MethodGet, "/tracks/"+id, nil, &track); err != nil {
			return nil, err
		}
		return &track, nil
	case "album":
		var album Album
		if err := c.doRequest(ctx, http.MethodGet, "/albums/"+id, nil, &album); err != nil {
			return nil, err
		}
		return &album, nil
	case "artist":
		var artist Artist
		if err := c.doRequest(ctx, http.MethodGet, "/artists/"+id, nil, &artist); err != nil {
			return nil, err
		}
		return &artist, nil
	case "playlist":
		var playlist Playlist
		if err := c.doRequest(ctx, http.MethodGet, "/playlists/"+id, nil, &playlist); err != nil {
			return nil, err
		}
		return &playlist, nil
	}

	return nil, fmt.Errorf("%w: unsupported item type %q", shared.ErrInvalidArgument, kind)
}

// UserPlaylists retrieves all of the current user's playlists, following pagination.
func (c *Client) UserPlaylists(ctx context.Context) ([]SimplePlaylist, error) {
	var all []SimplePlaylist
	limit, offset := 50, 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)
		var page PaginatedPlaylists
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// PlaylistTracks retrieves the tracks of a playlist, following pagination.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error) {
	var all []PlaylistTrack
	limit, offset := 100, 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)
		var page PlaylistPage
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// AddPlaylistTracks appends tracks to a playlist.
func (c *Client) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}

	body := map[string]any{"uris": trackURIs(trackIDs)}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return c.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// RemovePlaylistTracks removes all occurrences of the given tracks from a playlist.
func (c *Client) RemovePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}

	tracks := make([]map[string]string, 0, len(trackIDs))
	for _, uri := range trackURIs(trackIDs) {
		tracks = append(tracks, map[string]string{"uri": uri})
	}

	body := map[string]any{"tracks": tracks}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return c.doRequest(ctx, http.MethodDelete, endpoint, body, nil)
}

// ChangePlaylistDetails updates a playlist's name and/or description.
func (c *Client) ChangePlaylistDetails(ctx context.Context, playlistID, name, description string) error {
	body := map[string]any{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: name or description required", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	return c.doRequest(ctx, http.MethodPut, endpoint, body, nil)
}

// ParseURI splits a spotify:<type>:<id> URI. A bare ID is treated as a track.
func ParseURI(uri string) (kind, id string, err error) {
	if uri == "" {
		return "", "", fmt.Errorf("%w: empty URI", shared.ErrInvalidArgument)
	}

	parts := strings.Split(uri, ":")
	switch {
	case len(parts) == 1:
		return "track", parts[0], nil
	case len(parts) == 3 && parts[0] == "spotify":
		return parts[1], parts[2], nil
	}

	return "", "", fmt.Errorf("%w: malformed URI %q", shared.ErrInvalidArgument, uri)
}

// TrackURI normalizes a bare track ID into a spotify:track: URI.
func TrackURI(id string) string {
	if strings.HasPrefix(id, "spotify:") {
		return id
	}
	return "spotify:track:" + id
}

func trackURIs(ids []string) []string {
	uris := make([]string, 0, len(ids))
	for _, id := range ids {
		uris = append(uris, TrackURI(id))
	}
	return uris
}
