package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
)

const (
	// LikedSongsName is the playlist name under which liked songs are stored.
	LikedSongsName = "Liked Songs"
	// LikedSongsID is the ID given to the liked songs playlist by [ConvertLibrary].
	LikedSongsID = "liked_songs"
	// DefaultPath is the snapshot file name used when none is configured.
	DefaultPath = "playlists.json"
)

// Artist is a credited artist.
type Artist struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// AlbumTracks is the paged track list embedded in a saved album.
type AlbumTracks struct {
	Items []Track `json:"items"`
}

// Album is a Spotify album. Tracks is only populated for saved albums.
type Album struct {
	ID      string       `json:"id,omitempty"`
	Name    string       `json:"name"`
	Artists []Artist     `json:"artists,omitempty"`
	Tracks  *AlbumTracks `json:"tracks,omitempty"`
}

// Track is a Spotify track as stored in the snapshot.
type Track struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      *Album   `json:"album,omitempty"`
	DurationMS int      `json:"duration_ms,omitempty"`
	URI        string   `json:"uri,omitempty"`
}

// Item is one playlist entry. Track is nil for entries Spotify could not resolve
// (removed or local files).
type Item struct {
	AddedAt string `json:"added_at,omitempty"`
	Track   *Track `json:"track"`
}

// Playlist is a Spotify playlist with its entries.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tracks      []Item `json:"tracks"`
}

// SavedAlbum is an album from the user's library.
type SavedAlbum struct {
	AddedAt string `json:"added_at,omitempty"`
	Album   Album  `json:"album"`
}

// Snapshot is the root of playlists.json.
type Snapshot struct {
	Playlists []Playlist   `json:"playlists"`
	Albums    []SavedAlbum `json:"albums,omitempty"`
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSnapshot, err)
	}
	return &s, nil
}

// Load reads the snapshot at path.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode writes s to w as indented JSON without HTML escaping.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

// Save writes the snapshot to path, replacing any existing file.
func (s *Snapshot) Save(path string) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Find returns the playlist with the given ID. An empty ID selects the liked songs playlist.
func (s *Snapshot) Find(id string) (*Playlist, error) {
	for i := range s.Playlists {
		pl := &s.Playlists[i]
		if id == "" && pl.Name == LikedSongsName {
			return pl, nil
		}
		if id != "" && pl.ID == id {
			return pl, nil
		}
	}

	if id == "" {
		return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, LikedSongsName)
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
}

// Liked returns the liked songs playlist.
func (s *Snapshot) Liked() (*Playlist, error) {
	return s.Find("")
}

// Tracks converts the entries of pl into source tracks, reversing them when requested.
//
// Entries without a track are skipped and counted in the second return value.
func (s *Snapshot) Tracks(pl *Playlist, reverse bool) ([]models.SourceTrack, int) {
	return pl.SourceTracks(reverse)
}

// SourceTracks converts the playlist entries, see [Snapshot.Tracks].
func (p *Playlist) SourceTracks(reverse bool) ([]models.SourceTrack, int) {
	tracks := make([]models.SourceTrack, 0, len(p.Tracks))
	skipped := 0
	for _, item := range p.Tracks {
		if item.Track == nil {
			skipped++
			continue
		}
		tracks = append(tracks, item.Track.Source(""))
	}

	if reverse {
		slices.Reverse(tracks)
	}
	return tracks, skipped
}

// Source converts t. The album name falls back to album when t carries none.
func (t *Track) Source(album string) models.SourceTrack {
	src := models.SourceTrack{
		Title:    t.Name,
		Album:    album,
		Duration: t.DurationMS / 1000,
	}
	if len(t.Artists) > 0 {
		src.Artist = t.Artists[0].Name
	}
	if t.Album != nil && t.Album.Name != "" {
		src.Album = t.Album.Name
	}
	return src
}

// LikedAlbumTracks flattens every saved album into source tracks, in album order.
func (s *Snapshot) LikedAlbumTracks() []models.SourceTrack {
	var tracks []models.SourceTrack
	for _, saved := range s.Albums {
		album := saved.Album
		if album.Tracks == nil {
			continue
		}
		for _, t := range album.Tracks.Items {
			src := t.Source(album.Name)
			if src.Artist == "" && len(album.Artists) > 0 {
				src.Artist = album.Artists[0].Name
			}
			tracks = append(tracks, src)
		}
	}
	return tracks
}

// Summaries describes each playlist for listing.
func (s *Snapshot) Summaries() []models.Playlist {
	out := make([]models.Playlist, len(s.Playlists))
	for i, pl := range s.Playlists {
		out[i] = models.Playlist{
			ID:          pl.ID,
			Name:        pl.Name,
			Description: pl.Description,
			TrackCount:  len(pl.Tracks),
		}
	}
	return out
}

// SetLiked replaces the liked songs playlist, inserting it first when the snapshot has none.
func (s *Snapshot) SetLiked(pl Playlist) {
	pl.Name = LikedSongsName
	for i := range s.Playlists {
		if s.Playlists[i].Name == LikedSongsName {
			s.Playlists[i] = pl
			return
		}
	}
	s.Playlists = slices.Insert(s.Playlists, 0, pl)
}
