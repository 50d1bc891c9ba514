// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
)

// FakeTarget is an in-memory [services.Target].
//
// Songs and Videos are keyed by source title. Failure counters make the next N calls of the
// matching method fail with Err.
type FakeTarget struct {
	mu sync.Mutex

	Songs     map[string][]models.CandidateTrack
	Videos    map[string][]models.CandidateTrack
	Playlists map[string]*models.PlaylistExport
	Liked     []string
	Added     []string

	Err            error
	SearchErr      error
	AddFailures    int
	CreateFailures int
	DropAdds       bool // acknowledge adds without storing them
	AddHook        func(videoID string)

	Searches     int
	VideoQueries int
	AddCalls     int
	nextID       int
}

var _ services.Target = (*FakeTarget)(nil)

// NewFakeTarget returns an empty target.
func NewFakeTarget() *FakeTarget {
	return &FakeTarget{
		Songs:     map[string][]models.CandidateTrack{},
		Videos:    map[string][]models.CandidateTrack{},
		Playlists: map[string]*models.PlaylistExport{},
	}
}

func (f *FakeTarget) failure() error {
	if f.Err != nil {
		return f.Err
	}
	return &services.StatusError{Service: "fake", Status: http.StatusServiceUnavailable}
}

func (f *FakeTarget) Name() string { return "fake" }

func (f *FakeTarget) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (f *FakeTarget) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Playlist, 0, len(f.Playlists))
	for _, p := range f.Playlists {
		pl := p.Playlist
		pl.TrackCount = len(p.Tracks)
		out = append(out, pl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeTarget) Search(ctx context.Context, query string, filter services.SearchFilter) ([]models.CandidateTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	if filter == services.FilterVideos {
		return f.Videos[query], nil
	}
	return f.Songs[query], nil
}

func (f *FakeTarget) SearchCandidates(ctx context.Context, source models.SourceTrack) ([]models.CandidateTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches++
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	return f.Songs[source.Title], nil
}

func (f *FakeTarget) SearchVideos(ctx context.Context, source models.SourceTrack) ([]models.CandidateTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VideoQueries++
	return f.Videos[source.Title], nil
}

func (f *FakeTarget) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	pl := p.Playlist
	pl.TrackCount = len(p.Tracks)
	return &pl, nil
}

func (f *FakeTarget) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	cp := *p
	cp.Tracks = append([]models.CandidateTrack(nil), p.Tracks...)
	return &cp, nil
}

func (f *FakeTarget) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, _ := f.GetPlaylists(ctx)
	for _, pl := range playlists {
		if pl.Name == name {
			return &pl, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

func (f *FakeTarget) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateFailures > 0 {
		f.CreateFailures--
		return "", f.failure()
	}
	f.nextID++
	id := fmt.Sprintf("PL%d", f.nextID)
	f.Playlists[id] = &models.PlaylistExport{
		Playlist: models.Playlist{ID: id, Name: title, Description: description, Public: privacy == shared.PrivacyPublic},
	}
	return id, nil
}

// AddPlaylist registers an existing playlist.
func (f *FakeTarget) AddPlaylist(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Playlists[id] = &models.PlaylistExport{Playlist: models.Playlist{ID: id, Name: name}}
}

func (f *FakeTarget) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	if f.AddFailures > 0 {
		f.AddFailures--
		return f.failure()
	}
	p, ok := f.Playlists[playlistID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	for _, id := range videoIDs {
		f.Added = append(f.Added, id)
		if f.AddHook != nil {
			f.AddHook(id)
		}
		if !f.DropAdds && !p.Contains(id) {
			p.Tracks = append(p.Tracks, models.CandidateTrack{TargetID: id})
		}
	}
	return nil
}

func (f *FakeTarget) RateSong(ctx context.Context, videoID string, rating services.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	if f.AddFailures > 0 {
		f.AddFailures--
		return f.failure()
	}
	if rating == services.RatingLike {
		f.Liked = append(f.Liked, videoID)
	}
	return nil
}

// FakeSource is an in-memory [services.Source], safe for concurrent use.
type FakeSource struct {
	mu sync.Mutex

	Playlists []snapshot.Playlist
	Likes     []snapshot.Item
	Albums    []snapshot.SavedAlbum

	ListErr   error
	ExportErr map[string]error
	Exports   int
}

var _ services.Source = (*FakeSource)(nil)

func (f *FakeSource) Name() string { return "fake source" }

func (f *FakeSource) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (f *FakeSource) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Playlist, len(f.Playlists))
	for i, p := range f.Playlists {
		out[i] = models.Playlist{ID: p.ID, Name: p.Name, TrackCount: len(p.Tracks)}
	}
	return out, nil
}

func (f *FakeSource) ExportPlaylist(ctx context.Context, playlistID string) (*snapshot.Playlist, error) {
	f.mu.Lock()
	f.Exports++
	err := f.ExportErr[playlistID]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	for _, p := range f.Playlists {
		if p.ID == playlistID {
			cp := p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

func (f *FakeSource) LikedTracks(ctx context.Context) ([]snapshot.Item, error) {
	return f.Likes, nil
}

func (f *FakeSource) SavedAlbums(ctx context.Context) ([]snapshot.SavedAlbum, error) {
	return f.Albums, nil
}

// Item builds a snapshot entry.
func Item(title, artist, album string) snapshot.Item {
	t := &snapshot.Track{Name: title, Album: &snapshot.Album{Name: album}}
	if artist != "" {
		t.Artists = []snapshot.Artist{{Name: artist}}
	}
	return snapshot.Item{Track: t}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
