package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
	"golang.org/x/time/rate"
)

const (
	DefaultBackupWorkers = 4
	DefaultBackupRate    = 5.0
	maxBackupWorkers     = 10
)

// BackupOpts contains configuration for a Spotify backup.
type BackupOpts struct {
	Workers   int     // Concurrent playlist exports (default: 4, max: 10)
	RateLimit float64 // Requests per second (default: 5)
	Liked     bool    // Include liked songs as the "Liked Songs" playlist
	Albums    bool    // Include saved albums
	Logger    *log.Logger
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Tracks       int
	Error        error
}

// BackupResult contains the snapshot built by [Backup] and per-playlist results.
type BackupResult struct {
	Snapshot          *snapshot.Snapshot
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	Results           []PlaylistExportResult
}

type exportJob struct {
	index    int
	playlist models.Playlist
}

type exportOutcome struct {
	index    int
	playlist *snapshot.Playlist
	result   PlaylistExportResult
}

// Backup builds a [snapshot.Snapshot] from src.
//
// Playlists are exported by a bounded worker pool sharing one rate limiter. The snapshot keeps the
// order src lists them in; playlists that fail to export are left out and reported in the result.
func Backup(ctx context.Context, progress chan<- ProgressUpdate, src services.Source, opts BackupOpts) (*BackupResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultBackupWorkers
	}
	if opts.Workers > maxBackupWorkers {
		opts.Workers = maxBackupWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultBackupRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	sendProgress(progress, fetchSourceUpdate(0, 1, src.Name()))
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	playlists, err := src.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	logger.Info("backing up playlists", "count", len(playlists), "workers", opts.Workers)

	result := &BackupResult{
		Snapshot:       &snapshot.Snapshot{},
		TotalPlaylists: len(playlists),
		Results:        make([]PlaylistExportResult, len(playlists)),
	}

	jobs := make(chan exportJob)
	outcomes := make(chan exportOutcome, len(playlists))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, src, limiter, jobs, outcomes)
	}

	go func() {
		defer close(jobs)
		for i, pl := range playlists {
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{index: i, playlist: pl}:
				sendProgress(progress, exportingPlaylistUpdate(i+1, len(playlists), pl.Name))
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	exported := make([]*snapshot.Playlist, len(playlists))
	completed := 0
	for o := range outcomes {
		completed++
		result.Results[o.index] = o.result
		if o.result.Error != nil {
			result.FailedExports++
			logger.Error("export failed", "playlist", o.result.PlaylistName, "err", o.result.Error)
			sendProgress(progress, exportFailedUpdate(completed, len(playlists), o.result.PlaylistName, o.result.Error))
			continue
		}
		result.SuccessfulExports++
		exported[o.index] = o.playlist
		sendProgress(progress, exportCompletedUpdate(completed, len(playlists), o.result.PlaylistName, o.result.Tracks))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	for _, pl := range exported {
		if pl != nil {
			result.Snapshot.Playlists = append(result.Snapshot.Playlists, *pl)
		}
	}

	if opts.Liked {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}
		likes, err := src.LikedTracks(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to fetch liked songs: %w", err)
		}
		result.Snapshot.SetLiked(snapshot.Playlist{ID: snapshot.LikedSongsID, Tracks: likes})
		logger.Info("liked songs", "count", len(likes))
	}

	if opts.Albums {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}
		albums, err := src.SavedAlbums(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to fetch saved albums: %w", err)
		}
		result.Snapshot.Albums = albums
		logger.Info("saved albums", "count", len(albums))
	}

	return result, nil
}

// exportWorker exports playlists from jobs until the channel closes or ctx is done.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	src services.Source,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	outcomes chan<- exportOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		o := exportOutcome{
			index: job.index,
			result: PlaylistExportResult{
				PlaylistID:   job.playlist.ID,
				PlaylistName: job.playlist.Name,
			},
		}

		if err := limiter.Wait(ctx); err != nil {
			o.result.Error = err
			outcomes <- o
			continue
		}

		pl, err := src.ExportPlaylist(ctx, job.playlist.ID)
		if err != nil {
			o.result.Error = fmt.Errorf("failed to fetch playlist: %w", err)
		} else {
			o.playlist = pl
			o.result.Tracks = len(pl.Tracks)
		}
		outcomes <- o
	}
}
