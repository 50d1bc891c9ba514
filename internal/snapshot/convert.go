package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/s2yt/internal/shared"
)

// libraryExport is the YourLibrary.json file from Spotify's privacy data download.
type libraryExport struct {
	Tracks []struct {
		Artist string `json:"artist"`
		Album  string `json:"album"`
		Track  string `json:"track"`
		URI    string `json:"uri"`
	} `json:"tracks"`
}

// playlistExport is the PlaylistN.json file from the same download.
type playlistExport struct {
	Playlists []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Items []struct {
			Track *struct {
				TrackName  string `json:"trackName"`
				ArtistName string `json:"artistName"`
				AlbumName  string `json:"albumName"`
				TrackURI   string `json:"trackUri"`
			} `json:"track"`
		} `json:"items"`
	} `json:"playlists"`
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
	}
	return nil
}

func newTrack(name, artist, album, uri string) *Track {
	return &Track{
		Name:    name,
		Artists: []Artist{{Name: artist}},
		Album:   &Album{Name: album},
		URI:     uri,
	}
}

// ConvertLibrary turns a YourLibrary.json export into the liked songs playlist of the
// snapshot at snapshotPath. A missing snapshot is created. Returns the number of tracks.
func ConvertLibrary(libraryPath, snapshotPath string) (int, error) {
	var lib libraryExport
	if err := readJSON(libraryPath, &lib); err != nil {
		return 0, err
	}

	liked := Playlist{ID: LikedSongsID, Name: LikedSongsName, Tracks: make([]Item, 0, len(lib.Tracks))}
	for _, t := range lib.Tracks {
		liked.Tracks = append(liked.Tracks, Item{Track: newTrack(t.Track, t.Artist, t.Album, t.URI)})
	}

	snap, err := Load(snapshotPath)
	if errors.Is(err, shared.ErrSnapshotNotFound) {
		snap = &Snapshot{}
	} else if err != nil {
		return 0, err
	}

	snap.SetLiked(liked)
	if err := snap.Save(snapshotPath); err != nil {
		return 0, err
	}
	return len(liked.Tracks), nil
}

// ConvertPlaylists turns a PlaylistN.json export into a snapshot written to snapshotPath,
// replacing its playlists. Returns the number of playlists.
func ConvertPlaylists(inputPath, snapshotPath string) (int, error) {
	var in playlistExport
	if err := readJSON(inputPath, &in); err != nil {
		return 0, err
	}

	snap := &Snapshot{Playlists: make([]Playlist, 0, len(in.Playlists))}
	for _, p := range in.Playlists {
		pl := Playlist{ID: p.ID, Name: p.Name, Tracks: []Item{}}
		for _, item := range p.Items {
			if item.Track == nil {
				continue
			}
			t := item.Track
			pl.Tracks = append(pl.Tracks, Item{Track: newTrack(t.TrackName, t.ArtistName, t.AlbumName, t.TrackURI)})
		}
		snap.Playlists = append(snap.Playlists, pl)
	}

	if err := snap.Save(snapshotPath); err != nil {
		return 0, err
	}
	return len(snap.Playlists), nil
}
