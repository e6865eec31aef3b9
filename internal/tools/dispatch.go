package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-mcp/internal/shared"
)

// HandlerFunc executes one backend operation and renders its textual result.
//
// Arguments have already passed rule validation when a handler runs.
type HandlerFunc func(ctx context.Context, backend Backend, args Args) (string, error)

// ActionSpec binds an action tag to its argument rule and handler.
type ActionSpec struct {
	// Required lists argument names that must all be present.
	Required []string
	// AnyOf lists argument names of which at least one must be present.
	AnyOf   []string
	Handler HandlerFunc
}

// ToolSpec is one tool family: its descriptor metadata and its action table.
//
// Actionless tools hold a single entry under the empty action tag.
type ToolSpec struct {
	Description string
	Actions     map[string]ActionSpec
}

// Dispatcher routes tool calls to backend operations.
//
// Safe for concurrent use across sessions: the table is immutable after
// construction and the backend is stateless per call.
type Dispatcher struct {
	backend Backend
	logger  *log.Logger
	table   map[string]ToolSpec
}

// NewDispatcher builds the dispatch table over the given backend.
func NewDispatcher(backend Backend, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	d := &Dispatcher{backend: backend, logger: logger}
	d.table = map[string]ToolSpec{
		"playback": {
			Description: "Manage Spotify playback",
			Actions: map[string]ActionSpec{
				"get":   {Handler: playbackGet},
				"start": {Handler: playbackStart},
				"pause": {Handler: playbackPause},
				"skip":  {Handler: playbackSkip},
			},
		},
		"search": {
			Description: "Search the Spotify catalog",
			Actions: map[string]ActionSpec{
				"": {Required: []string{"query"}, Handler: searchCatalog},
			},
		},
		"queue": {
			Description: "Manage the playback queue",
			Actions: map[string]ActionSpec{
				"get": {Handler: queueGet},
				"add": {Required: []string{"track_id"}, Handler: queueAdd},
			},
		},
		"get_info": {
			Description: "Look up a Spotify item",
			Actions: map[string]ActionSpec{
				"": {Required: []string{"item_uri"}, Handler: itemInfo},
			},
		},
		"playlist": {
			Description: "Manage Spotify playlists",
			Actions: map[string]ActionSpec{
				"get":        {Handler: playlistList},
				"get_tracks": {Required: []string{"playlist_id"}, Handler: playlistTracks},
				"add_tracks": {
					Required: []string{"playlist_id", "track_ids"},
					Handler:  playlistAddTracks,
				},
				"remove_tracks": {
					Required: []string{"playlist_id", "track_ids"},
					Handler:  playlistRemoveTracks,
				},
				"change_details": {
					Required: []string{"playlist_id"},
					AnyOf:    []string{"name", "description"},
					Handler:  playlistChangeDetails,
				},
			},
		},
	}

	return d
}

// Dispatch validates and executes one tool call, returning a text payload and
// an error flag. Failures of any kind are reported through the text payload;
// Dispatch itself never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, tool string, args Args) (text string, isError bool) {
	spec, ok := d.table[tool]
	if !ok {
		err := fmt.Errorf("%w: %s. Supported tools are: %s", shared.ErrUnknownOperation, tool, strings.Join(d.ToolNames(), ", "))
		d.logger.Warn("tool call rejected", "tool", tool, "error", err)
		return fmt.Sprintf("Error: %v", err), true
	}

	tag := ""
	if _, multi := spec.Actions[""]; !multi {
		tag = args.String("action", "")
	}

	action, ok := spec.Actions[tag]
	if !ok {
		err := fmt.Errorf("%w: %s has no action %q. Supported actions are: %s", shared.ErrUnknownOperation, tool, tag, strings.Join(actionNames(spec), ", "))
		d.logger.Warn("tool call rejected", "tool", tool, "action", tag, "error", err)
		return fmt.Sprintf("Error: %v", err), true
	}

	if err := validate(action, args); err != nil {
		d.logger.Warn("tool call rejected", "tool", tool, "action", tag, "error", err)
		return fmt.Sprintf("Error: %v", err), true
	}

	d.logger.Info("dispatching tool call", "tool", tool, "action", tag)

	result, err := action.Handler(ctx, d.backend, args)
	if err != nil {
		d.logger.Error("tool call failed", "tool", tool, "action", tag, "error", err)
		return fmt.Sprintf("Error: %v", err), true
	}

	return result, false
}

// ToolNames returns the registered tool names in sorted order.
func (d *Dispatcher) ToolNames() []string {
	names := make([]string, 0, len(d.table))
	for name := range d.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate applies the declarative argument rule of one action.
func validate(action ActionSpec, args Args) error {
	var missing []string
	for _, name := range action.Required {
		if !args.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.Join(missing, ", "))
	}

	if len(action.AnyOf) > 0 {
		found := false
		for _, name := range action.AnyOf {
			if args.Has(name) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: at least one of %s", shared.ErrMissingArgument, strings.Join(action.AnyOf, ", "))
		}
	}

	return nil
}

func actionNames(spec ToolSpec) []string {
	names := make([]string, 0, len(spec.Actions))
	for name := range spec.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// asJSON renders a successful lookup result as indented JSON.
func asJSON(data any) (string, error) {
	out, err := shared.MarshalJSON(data, true)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result: %w", err)
	}
	return string(out), nil
}

func playbackGet(ctx context.Context, backend Backend, _ Args) (string, error) {
	playback, err := backend.CurrentTrack(ctx)
	if err != nil {
		return "", err
	}
	if playback == nil {
		return "No track playing.", nil
	}
	return asJSON(playback)
}

func playbackStart(ctx context.Context, backend Backend, args Args) (string, error) {
	if err := backend.StartPlayback(ctx, args.String("spotify_uri", "")); err != nil {
		return "", err
	}
	return "Playback starting.", nil
}

func playbackPause(ctx context.Context, backend Backend, _ Args) (string, error) {
	if err := backend.PausePlayback(ctx); err != nil {
		return "", err
	}
	return "Playback paused.", nil
}

func playbackSkip(ctx context.Context, backend Backend, args Args) (string, error) {
	if err := backend.SkipTrack(ctx, args.Int("num_skips", 1)); err != nil {
		return "", err
	}
	return "Skipped to next track.", nil
}

func searchCatalog(ctx context.Context, backend Backend, args Args) (string, error) {
	results, err := backend.Search(ctx, args.String("query", ""), args.String("qtype", "track"), args.Int("limit", 10))
	if err != nil {
		return "", err
	}
	return asJSON(results)
}

func queueGet(ctx context.Context, backend Backend, _ Args) (string, error) {
	queue, err := backend.GetQueue(ctx)
	if err != nil {
		return "", err
	}
	return asJSON(queue)
}

func queueAdd(ctx context.Context, backend Backend, args Args) (string, error) {
	if err := backend.AddToQueue(ctx, args.String("track_id", "")); err != nil {
		return "", err
	}
	return "Track added to queue.", nil
}

func itemInfo(ctx context.Context, backend Backend, args Args) (string, error) {
	info, err := backend.GetInfo(ctx, args.String("item_uri", ""))
	if err != nil {
		return "", err
	}
	return asJSON(info)
}

func playlistList(ctx context.Context, backend Backend, _ Args) (string, error) {
	playlists, err := backend.UserPlaylists(ctx)
	if err != nil {
		return "", err
	}
	return asJSON(playlists)
}

func playlistTracks(ctx context.Context, backend Backend, args Args) (string, error) {
	tracks, err := backend.PlaylistTracks(ctx, args.String("playlist_id", ""))
	if err != nil {
		return "", err
	}
	return asJSON(tracks)
}

func playlistAddTracks(ctx context.Context, backend Backend, args Args) (string, error) {
	trackIDs, err := args.StringList("track_ids")
	if err != nil {
		return "", err
	}
	if err := backend.AddPlaylistTracks(ctx, args.String("playlist_id", ""), trackIDs); err != nil {
		return "", err
	}
	return "Tracks added to playlist.", nil
}

func playlistRemoveTracks(ctx context.Context, backend Backend, args Args) (string, error) {
	trackIDs, err := args.StringList("track_ids")
	if err != nil {
		return "", err
	}
	if err := backend.RemovePlaylistTracks(ctx, args.String("playlist_id", ""), trackIDs); err != nil {
		return "", err
	}
	return "Tracks removed from playlist.", nil
}

func playlistChangeDetails(ctx context.Context, backend Backend, args Args) (string, error) {
	err := backend.ChangePlaylistDetails(ctx, args.String("playlist_id", ""), args.String("name", ""), args.String("description", ""))
	if err != nil {
		return "", err
	}
	return "Playlist details changed.", nil
}
