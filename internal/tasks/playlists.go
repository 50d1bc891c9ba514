package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
)

// ResolvePlaylist turns a destination argument into a playlist ID.
//
// dest is a playlist ID, "+Name" to look a playlist up by title, or empty. When the name is not
// found, or dest is empty, a playlist called name (or fallback when name is blank) is created.
// In dry-run mode nothing is created and the returned ID may be empty.
func (c *Copier) ResolvePlaylist(ctx context.Context, progress chan<- ProgressUpdate, dest, fallback string) (string, error) {
	name := ""
	if strings.HasPrefix(dest, "+") {
		name = strings.TrimPrefix(dest, "+")
		pl, err := c.target.FindPlaylistByName(ctx, name)
		switch {
		case err == nil:
			c.logger.Info("looked up playlist", "name", name, "id", pl.ID)
			return pl.ID, nil
		case !errors.Is(err, shared.ErrPlaylistNotFound):
			return "", fmt.Errorf("failed to look up playlist %q: %w", name, err)
		}
	} else if dest != "" {
		return dest, nil
	}

	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	if c.opts.DryRun {
		c.logger.Info("dry run: would create playlist", "name", name)
		return "", nil
	}

	pl, err := c.CreatePlaylist(ctx, progress, name)
	if err != nil {
		return "", err
	}
	return pl.ID, nil
}

// CopyPlaylist copies the snapshot playlist spotifyID to the playlist described by ytDest,
// see [Copier.ResolvePlaylist]. A created playlist is named after the Spotify playlist.
func (c *Copier) CopyPlaylist(ctx context.Context, progress chan<- ProgressUpdate, snap *snapshot.Snapshot, spotifyID, ytDest string) (*CopyResult, error) {
	if spotifyID == "" {
		return nil, fmt.Errorf("%w: spotify playlist id", shared.ErrMissingArgument)
	}

	sendProgress(progress, fetchSourceUpdate(1, 1, spotifyID))
	src, err := snap.Find(spotifyID)
	if err != nil {
		return nil, err
	}

	name := src.Name
	if name == "" {
		name = fmt.Sprintf("Spotify Playlist %s", spotifyID)
	}

	playlistID, err := c.ResolvePlaylist(ctx, progress, ytDest, name)
	if err != nil {
		return nil, err
	}
	return c.copySnapshotPlaylist(ctx, progress, snap, src, Destination{PlaylistID: playlistID})
}

// CopyAll copies every snapshot playlist except Liked Songs, each into the YouTube Music playlist of the
// same name, created when missing.
//
// A playlist that fails is logged and skipped; the failures are joined into the returned error.
// Cancelling ctx stops after the current playlist.
func (c *Copier) CopyAll(ctx context.Context, progress chan<- ProgressUpdate, snap *snapshot.Snapshot) ([]*CopyResult, error) {
	var (
		results []*CopyResult
		errs    []error
	)

	for i := range snap.Playlists {
		src := &snap.Playlists[i]
		if src.Name == snapshot.LikedSongsName {
			continue
		}

		name := src.Name
		if name == "" {
			name = fmt.Sprintf("Unnamed Spotify Playlist %s", src.ID)
		}

		playlistID, err := c.ResolvePlaylist(ctx, progress, "+"+name, name)
		if err == nil {
			var result *CopyResult
			result, err = c.copySnapshotPlaylist(ctx, progress, snap, src, Destination{PlaylistID: playlistID})
			if result != nil {
				results = append(results, result)
			}
		}

		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if err != nil {
			c.logger.Error("playlist failed", "name", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		c.logger.Info("playlist done", "name", name)
	}

	return results, errors.Join(errs...)
}

// LoadLiked likes every track of the snapshot's Liked Songs playlist.
func (c *Copier) LoadLiked(ctx context.Context, progress chan<- ProgressUpdate, snap *snapshot.Snapshot) (*CopyResult, error) {
	src, err := snap.Liked()
	if err != nil {
		return nil, err
	}
	return c.copySnapshotPlaylist(ctx, progress, snap, src, Destination{Liked: true})
}

// LoadLikedAlbums likes every track of every saved album, in album order.
func (c *Copier) LoadLikedAlbums(ctx context.Context, progress chan<- ProgressUpdate, snap *snapshot.Snapshot) (*CopyResult, error) {
	tracks := snap.LikedAlbumTracks()
	result, err := c.Copy(ctx, progress, tracks, Destination{Liked: true})
	if result != nil {
		result.Source = "liked albums"
	}
	return result, err
}

func (c *Copier) copySnapshotPlaylist(ctx context.Context, progress chan<- ProgressUpdate, snap *snapshot.Snapshot, src *snapshot.Playlist, dest Destination) (*CopyResult, error) {
	tracks, skipped := snap.Tracks(src, c.opts.Reverse)
	if skipped > 0 {
		c.logger.Warn("skipping malformed entries", "playlist", src.Name, "count", skipped)
	}
	c.logger.Info("spotify playlist", "name", src.Name, "tracks", len(tracks), "strategy", c.opts.Strategy)

	result, err := c.Copy(ctx, progress, tracks, dest)
	if result != nil {
		result.Source = src.Name
		result.Skipped = skipped
	}
	return result, err
}
