// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/desertthunder/spotify-mcp/internal/spotify"
)

// MockBackend is a test double for the dispatcher's backend interface.
//
// Each operation records its arguments and returns the corresponding
// configured value, so tests can assert both the call and the result path.
type MockBackend struct {
	Calls []string

	Playback  *spotify.Playback
	Results   *spotify.SearchResults
	Queue     *spotify.Queue
	Info      any
	Playlists []spotify.SimplePlaylist
	Tracks    []spotify.PlaylistTrack

	// Err, when set, is returned by every operation.
	Err error

	LastURI      string
	LastQuery    string
	LastQType    string
	LastLimit    int
	LastTrackIDs []string
	LastName     string
	LastDesc     string
	SkipCount    int
}

func (m *MockBackend) record(op string) { m.Calls = append(m.Calls, op) }

func (m *MockBackend) CurrentTrack(ctx context.Context) (*spotify.Playback, error) {
	m.record("current_track")
	return m.Playback, m.Err
}

func (m *MockBackend) StartPlayback(ctx context.Context, uri string) error {
	m.record("start_playback")
	m.LastURI = uri
	return m.Err
}

func (m *MockBackend) PausePlayback(ctx context.Context) error {
	m.record("pause_playback")
	return m.Err
}

func (m *MockBackend) SkipTrack(ctx context.Context, n int) error {
	m.record("skip_track")
	m.SkipCount = n
	return m.Err
}

func (m *MockBackend) Search(ctx context.Context, query, qtype string, limit int) (*spotify.SearchResults, error) {
	m.record("search")
	m.LastQuery, m.LastQType, m.LastLimit = query, qtype, limit
	return m.Results, m.Err
}

func (m *MockBackend) GetQueue(ctx context.Context) (*spotify.Queue, error) {
	m.record("get_queue")
	return m.Queue, m.Err
}

func (m *MockBackend) AddToQueue(ctx context.Context, trackID string) error {
	m.record("add_to_queue")
	m.LastURI = trackID
	return m.Err
}

func (m *MockBackend) GetInfo(ctx context.Context, itemURI string) (any, error) {
	m.record("get_info")
	m.LastURI = itemURI
	return m.Info, m.Err
}

func (m *MockBackend) UserPlaylists(ctx context.Context) ([]spotify.SimplePlaylist, error) {
	m.record("user_playlists")
	return m.Playlists, m.Err
}

func (m *MockBackend) PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistTrack, error) {
	m.record("playlist_tracks")
	m.LastURI = playlistID
	return m.Tracks, m.Err
}

func (m *MockBackend) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.record("add_playlist_tracks")
	m.LastURI, m.LastTrackIDs = playlistID, trackIDs
	return m.Err
}

func (m *MockBackend) RemovePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.record("remove_playlist_tracks")
	m.LastURI, m.LastTrackIDs = playlistID, trackIDs
	return m.Err
}

func (m *MockBackend) ChangePlaylistDetails(ctx context.Context, playlistID, name, description string) error {
	m.record("change_playlist_details")
	m.LastURI, m.LastName, m.LastDesc = playlistID, name, description
	return m.Err
}

// SlowBackend parks CurrentTrack until Release is closed, signalling Started
// once the call arrives. Used to hold a tool call in flight.
type SlowBackend struct {
	MockBackend
	Started chan struct{}
	Release chan struct{}
}

func NewSlowBackend() *SlowBackend {
	return &SlowBackend{
		Started: make(chan struct{}, 1),
		Release: make(chan struct{}),
	}
}

func (s *SlowBackend) CurrentTrack(ctx context.Context) (*spotify.Playback, error) {
	select {
	case s.Started <- struct{}{}:
	default:
	}

	select {
	case <-s.Release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return s.MockBackend.CurrentTrack(ctx)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to [http.RoundTripper] for per-request assertions.
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
