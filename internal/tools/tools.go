package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/desertthunder/spotify-mcp/internal/shared"
	"github.com/desertthunder/spotify-mcp/internal/spotify"
)

// Backend is the set of music-service operations the dispatcher drives.
//
// [spotify.Client] is the production implementation; tests substitute a mock.
type Backend interface {
	CurrentTrack(ctx context.Context) (*spotify.Playback, error)
	StartPlayback(ctx context.Context, uri string) error
	PausePlayback(ctx context.Context) error
	SkipTrack(ctx context.Context, n int) error
	Search(ctx context.Context, query, qtype string, limit int) (*spotify.SearchResults, error)
	GetQueue(ctx context.Context) (*spotify.Queue, error)
	AddToQueue(ctx context.Context, trackID string) error
	GetInfo(ctx context.Context, itemURI string) (any, error)
	UserPlaylists(ctx context.Context) ([]spotify.SimplePlaylist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistTrack, error)
	AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
	RemovePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
	ChangePlaylistDetails(ctx context.Context, playlistID, name, description string) error
}

// Args is the string-keyed argument bag of one tool call.
type Args map[string]any

// String returns the named argument as a string, or def when absent.
func (a Args) String(key, def string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Int returns the named argument as an int, or def when absent or unparseable.
func (a Args) Int(key string, def int) int {
	v, ok := a[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return def
}

// Has reports whether the named argument is present and non-empty.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// StringList decodes the named argument into a list of strings.
//
// The value may arrive as a JSON-encoded array string (the usual form from a
// completion service) or as an actual array. Numeric elements are stringified.
// A string that is not valid JSON is a malformed-argument error, never a
// silent empty list.
func (a Args) StringList(key string) ([]string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingArgument, key)
	}

	var elems []any
	switch raw := v.(type) {
	case string:
		if err := json.Unmarshal([]byte(raw), &elems); err != nil {
			return nil, fmt.Errorf("%w: %s must be a valid JSON array", shared.ErrMalformedArgument, key)
		}
	case []any:
		elems = raw
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a JSON array", shared.ErrMalformedArgument, key)
	}

	list := make([]string, 0, len(elems))
	for _, e := range elems {
		switch item := e.(type) {
		case string:
			list = append(list, item)
		case float64:
			list = append(list, strconv.FormatFloat(item, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("%w: %s contains a non-scalar element", shared.ErrMalformedArgument, key)
		}
	}

	return list, nil
}
