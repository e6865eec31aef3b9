package spotify

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// Track represents a Spotify track.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []Artist    `json:"artists"`
	Album       Album       `json:"album"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	ExternalIDs externalIDs `json:"external_ids"`
	Popularity  int         `json:"popularity"`
	URI         string      `json:"uri"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Owner identifies the user that owns a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist represents a full Spotify playlist with its tracks.
type Playlist struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Owner       Owner         `json:"owner"`
	Public      bool          `json:"public"`
	Tracks      PlaylistPage  `json:"tracks"`
	Images      []Image       `json:"images"`
	URI         string        `json:"uri"`
}

// PlaylistPage is a paginated page of tracks within a playlist.
type PlaylistPage struct {
	Total int             `json:"total"`
	Items []PlaylistTrack `json:"items"`
	Next  *string         `json:"next"`
}

// PlaylistTrack represents a track within a playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SimplePlaylist represents a simplified playlist object (used in lists).
type SimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
}

// PaginatedPlaylists represents a paginated response of playlists.
type PaginatedPlaylists struct {
	Items    []SimplePlaylist `json:"items"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
}

// Device represents a Spotify Connect playback device.
type Device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

// Playback represents the current playback state.
type Playback struct {
	Device     Device `json:"device"`
	IsPlaying  bool   `json:"is_playing"`
	ProgressMS int    `json:"progress_ms"`
	Item       *Track `json:"item"`
}

// Queue represents the playback queue: the current track plus upcoming tracks.
type Queue struct {
	CurrentlyPlaying *Track  `json:"currently_playing"`
	Queue            []Track `json:"queue"`
}

type trackPage struct {
	Items []Track `json:"items"`
	Total int     `json:"total"`
}

type albumPage struct {
	Items []Album `json:"items"`
	Total int     `json:"total"`
}

type artistPage struct {
	Items []Artist `json:"items"`
	Total int     `json:"total"`
}

type simplePlaylistPage struct {
	Items []SimplePlaylist `json:"items"`
	Total int              `json:"total"`
}

// SearchResults holds results for each requested item type.
//
// Only the sections matching the requested qtype are populated.
type SearchResults struct {
	Tracks    *trackPage          `json:"tracks,omitempty"`
	Albums    *albumPage          `json:"albums,omitempty"`
	Artists   *artistPage         `json:"artists,omitempty"`
	Playlists *simplePlaylistPage `json:"playlists,omitempty"`
}
