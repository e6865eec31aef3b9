package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Definitions returns the MCP descriptors for every registered tool.
//
// Descriptors are immutable and shared read-only across sessions.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("playback",
			mcp.WithDescription(`Manages the current playback with the following actions:
- get: Get information about user's current track.
- start: Starts playing new item or resumes current playback if called with no uri.
- pause: Pauses current playback.
- skip: Skips current track.`),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Action to perform: get, start, pause, skip."),
				mcp.Enum("get", "start", "pause", "skip"),
			),
			mcp.WithString("spotify_uri",
				mcp.Description("Spotify uri of item to play for 'start' action. If omitted, resumes current playback."),
			),
			mcp.WithNumber("num_skips",
				mcp.Description("Number of tracks to skip for 'skip' action."),
				mcp.DefaultNumber(1),
			),
		),
		mcp.NewTool("search",
			mcp.WithDescription("Search for tracks, albums, artists, or playlists on Spotify."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Query term."),
			),
			mcp.WithString("qtype",
				mcp.Description("Type of items to search for (track, album, artist, playlist, or comma-separated combination)."),
				mcp.DefaultString("track"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of items to return."),
				mcp.DefaultNumber(10),
			),
		),
		mcp.NewTool("queue",
			mcp.WithDescription("Manage the playback queue - get the queue or add tracks."),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Action to perform: add, get."),
				mcp.Enum("add", "get"),
			),
			mcp.WithString("track_id",
				mcp.Description("Track ID to add to queue, required for add action."),
			),
		),
		mcp.NewTool("get_info",
			mcp.WithDescription("Get detailed information about a Spotify item (track, album, artist, or playlist)."),
			mcp.WithString("item_uri",
				mcp.Required(),
				mcp.Description("URI of the item to get information about, e.g. spotify:track:6rqhFgbbKwnb9MLmUQDhG6."),
			),
		),
		mcp.NewTool("playlist",
			mcp.WithDescription(`Manage Spotify playlists.
- get: Get a list of user's playlists.
- get_tracks: Get tracks in a specific playlist.
- add_tracks: Add tracks to a specific playlist.
- remove_tracks: Remove tracks from a specific playlist.
- change_details: Change details of a specific playlist.`),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Action to perform: get, get_tracks, add_tracks, remove_tracks, change_details."),
				mcp.Enum("get", "get_tracks", "add_tracks", "remove_tracks", "change_details"),
			),
			mcp.WithString("playlist_id",
				mcp.Description("ID of the playlist to manage."),
			),
			mcp.WithString("track_ids",
				mcp.Description("JSON-encoded array of track IDs."),
			),
			mcp.WithString("name",
				mcp.Description("New name for the playlist."),
			),
			mcp.WithString("description",
				mcp.Description("New description for the playlist."),
			),
		),
	}
}

// Register adds every tool to the MCP server, routed through the dispatcher.
func (d *Dispatcher) Register(s *server.MCPServer) {
	for _, def := range Definitions() {
		name := def.Name
		s.AddTool(def, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			text, isError := d.Dispatch(ctx, name, Args(req.GetArguments()))
			if isError {
				return mcp.NewToolResultError(text), nil
			}
			return mcp.NewToolResultText(text), nil
		})
	}
}
