package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/s2yt/internal/matcher"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
)

// DiffResult compares a snapshot playlist with a YouTube Music playlist.
type DiffResult struct {
	Source        *snapshot.Playlist      `json:"-"`
	Dest          *models.PlaylistExport  `json:"-"`
	SourceName    string                  `json:"source"`
	DestName      string                  `json:"dest"`
	MatchedCount  int                     `json:"matched"`
	MissingInDest []models.SourceTrack    `json:"missing_in_dest"`
	ExtraInDest   []models.CandidateTrack `json:"extra_in_dest"`
}

// Diff compares the snapshot playlist spotifyID with the YouTube Music playlist ytPlaylistID.
//
// Tracks are keyed by normalized title and primary artist.
func (c *Copier) Diff(ctx context.Context, progress chan<- ProgressUpdate, snap *snapshot.Snapshot, spotifyID, ytPlaylistID string) (*DiffResult, error) {
	sendProgress(progress, fetchSourceUpdate(1, 2, "Spotify snapshot"))
	src, err := snap.Find(spotifyID)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, fetchDestUpdate(2, 2, c.target.Name()))
	dest, err := c.target.ExportPlaylist(ctx, ytPlaylistID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export destination playlist: %v", shared.ErrPlaylistNotFound, err)
	}

	sourceTracks, _ := src.SourceTracks(false)
	result := &DiffResult{Source: src, Dest: dest, SourceName: src.Name, DestName: dest.Playlist.Name}

	sendProgress(progress, compareUpdate(1, 2))
	destKeys := make(map[string]bool, len(dest.Tracks))
	for _, t := range dest.Tracks {
		destKeys[matcher.NormalizeTrackKey(t.Title, t.Artist)] = true
	}
	for _, t := range sourceTracks {
		if destKeys[matcher.NormalizeTrackKey(t.Title, t.Artist)] {
			result.MatchedCount++
		} else {
			result.MissingInDest = append(result.MissingInDest, t)
		}
	}

	sendProgress(progress, compareUpdate(2, 2))
	sourceKeys := make(map[string]bool, len(sourceTracks))
	for _, t := range sourceTracks {
		sourceKeys[matcher.NormalizeTrackKey(t.Title, t.Artist)] = true
	}
	for _, t := range dest.Tracks {
		if !sourceKeys[matcher.NormalizeTrackKey(t.Title, t.Artist)] {
			result.ExtraInDest = append(result.ExtraInDest, t)
		}
	}

	return result, nil
}
