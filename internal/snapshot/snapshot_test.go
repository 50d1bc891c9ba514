package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "playlists": [
    {
      "id": "pl1",
      "name": "Road Trip",
      "tracks": [
        {"added_at": "2020-01-01T00:00:00Z", "track": {"id": "t1", "name": "Yesterday", "artists": [{"name": "The Beatles"}], "album": {"name": "Help!"}, "duration_ms": 125000}},
        {"track": null},
        {"track": {"id": "t2", "name": "Halo", "artists": [{"name": "Beyoncé"}, {"name": "Other"}], "album": {"name": "I Am... Sasha Fierce"}, "duration_ms": 261000}},
        {"track": {"id": "t3", "name": "Orphan", "artists": []}}
      ]
    },
    {
      "id": "liked",
      "name": "Liked Songs",
      "tracks": [
        {"track": {"name": "Hey Jude", "artists": [{"name": "The Beatles"}], "album": {"name": "Hey Jude"}}}
      ]
    }
  ],
  "albums": [
    {"album": {"name": "Abbey Road", "artists": [{"name": "The Beatles"}], "tracks": {"items": [
      {"name": "Come Together", "artists": [{"name": "The Beatles"}], "duration_ms": 259000},
      {"name": "Something", "artists": []}
    ]}}},
    {"album": {"name": "Empty"}}
  ]
}`

func load(t *testing.T) *Snapshot {
	t.Helper()
	s, err := Decode(strings.NewReader(fixture))
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, shared.ErrSnapshotNotFound)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

		_, err := Load(path)
		assert.ErrorIs(t, err, shared.ErrInvalidSnapshot)
	})

	t.Run("save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "playlists.json")
		require.NoError(t, load(t).Save(path))

		s, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, s.Playlists, 2)
		assert.Len(t, s.Albums, 2)
		assert.Nil(t, s.Playlists[0].Tracks[1].Track)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Beyoncé")
	})
}

func TestFind(t *testing.T) {
	s := load(t)

	pl, err := s.Find("pl1")
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", pl.Name)

	pl, err = s.Find("")
	require.NoError(t, err)
	assert.Equal(t, "liked", pl.ID)

	pl, err = s.Liked()
	require.NoError(t, err)
	assert.Equal(t, LikedSongsName, pl.Name)

	_, err = s.Find("missing")
	assert.ErrorIs(t, err, shared.ErrPlaylistNotFound)

	_, err = (&Snapshot{}).Liked()
	assert.ErrorIs(t, err, shared.ErrPlaylistNotFound)
}

func TestTracks(t *testing.T) {
	s := load(t)
	pl, err := s.Find("pl1")
	require.NoError(t, err)

	t.Run("in order", func(t *testing.T) {
		tracks, skipped := s.Tracks(pl, false)
		assert.Equal(t, 1, skipped)
		require.Len(t, tracks, 3)
		assert.Equal(t, models.SourceTrack{Title: "Yesterday", Artist: "The Beatles", Album: "Help!", Duration: 125}, tracks[0])
		assert.Equal(t, "Beyoncé", tracks[1].Artist)
		assert.Equal(t, models.SourceTrack{Title: "Orphan"}, tracks[2])
	})

	t.Run("reversed", func(t *testing.T) {
		tracks, _ := s.Tracks(pl, true)
		require.Len(t, tracks, 3)
		assert.Equal(t, "Orphan", tracks[0].Title)
		assert.Equal(t, "Yesterday", tracks[2].Title)
	})
}

func TestLikedAlbumTracks(t *testing.T) {
	tracks := load(t).LikedAlbumTracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, models.SourceTrack{Title: "Come Together", Artist: "The Beatles", Album: "Abbey Road", Duration: 259}, tracks[0])
	assert.Equal(t, "The Beatles", tracks[1].Artist, "falls back to album artist")
	assert.Equal(t, "Abbey Road", tracks[1].Album)
}

func TestSummaries(t *testing.T) {
	sums := load(t).Summaries()
	require.Len(t, sums, 2)
	assert.Equal(t, models.Playlist{ID: "pl1", Name: "Road Trip", TrackCount: 4}, sums[0])
}

func TestConvertLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "YourLibrary.json")
	out := filepath.Join(dir, "playlists.json")
	require.NoError(t, os.WriteFile(lib, []byte(`{"tracks":[
		{"artist":"The Beatles","album":"Help!","track":"Yesterday","uri":"spotify:track:1"},
		{"artist":"Queen","album":"A Night at the Opera","track":"Bohemian Rhapsody","uri":"spotify:track:2"}
	]}`), 0644))

	t.Run("creates snapshot", func(t *testing.T) {
		n, err := ConvertLibrary(lib, out)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		s, err := Load(out)
		require.NoError(t, err)
		liked, err := s.Liked()
		require.NoError(t, err)
		assert.Equal(t, LikedSongsID, liked.ID)

		tracks, _ := liked.SourceTracks(false)
		assert.Equal(t, models.SourceTrack{Title: "Yesterday", Artist: "The Beatles", Album: "Help!"}, tracks[0])
	})

	t.Run("replaces existing liked songs and keeps other playlists", func(t *testing.T) {
		require.NoError(t, load(t).Save(out))

		_, err := ConvertLibrary(lib, out)
		require.NoError(t, err)

		s, err := Load(out)
		require.NoError(t, err)
		require.Len(t, s.Playlists, 2)
		assert.Equal(t, "pl1", s.Playlists[0].ID)
		assert.Equal(t, LikedSongsID, s.Playlists[1].ID)
		assert.Len(t, s.Playlists[1].Tracks, 2)
	})

	t.Run("missing library", func(t *testing.T) {
		_, err := ConvertLibrary(filepath.Join(dir, "nope.json"), out)
		assert.Error(t, err)
	})
}

func TestConvertPlaylists(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "Playlist1.json")
	out := filepath.Join(dir, "playlists.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"playlists":[{"name":"Gym","items":[
		{"track":{"trackName":"Eye of the Tiger","artistName":"Survivor","albumName":"Eye of the Tiger","trackUri":"spotify:track:3"}},
		{"episode":{}}
	]}]}`), 0644))

	n, err := ConvertPlaylists(in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := Load(out)
	require.NoError(t, err)
	require.Len(t, s.Playlists[0].Tracks, 1)
	assert.Equal(t, "Survivor", s.Playlists[0].Tracks[0].Track.Artists[0].Name)

	_, err = ConvertPlaylists(filepath.Join(dir, "missing.json"), out)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0644))
	_, err = ConvertPlaylists(bad, out)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
