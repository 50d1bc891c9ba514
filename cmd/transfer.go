package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/s2yt/internal/formatter"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
	"github.com/desertthunder/s2yt/internal/tasks"
	"github.com/urfave/cli/v3"
)

// newCopier loads the snapshot and builds a copier from config and flags.
func (r *Runner) newCopier(cmd *cli.Command) (*tasks.Copier, *snapshot.Snapshot, error) {
	if err := r.requireTarget(); err != nil {
		return nil, nil, err
	}

	opts, err := r.copyOpts(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if format := cmd.String("format"); format != "" {
		if _, err := formatter.ParseFormat(format); err != nil {
			return nil, nil, err
		}
	}

	snap, err := r.loadSnapshot(cmd)
	if err != nil {
		return nil, nil, err
	}

	r.logger.Debug("transfer options", "strategy", opts.Strategy, "dry_run", opts.DryRun,
		"track_sleep", opts.TrackSleep, "reverse", opts.Reverse, "verify", opts.Verify)
	return tasks.NewCopier(r.youtube, opts, r.logger), snap, nil
}

// finishCopy prints a copy result and writes its report. A partial result is still reported before err is returned.
func (r *Runner) finishCopy(cmd *cli.Command, result *tasks.CopyResult, err error) error {
	if result != nil {
		if reportErr := r.report(cmd, result, ""); reportErr != nil {
			r.logger.Error("failed to write report", "err", reportErr)
		}
		r.printResult(result)
	}
	return err
}

func (r *Runner) printResult(result *tasks.CopyResult) {
	title := result.PlaylistName
	if title == "" {
		title = result.Source
	}
	if result.DryRun {
		title += " (dry run)"
	}

	r.writePlainHeader(title)
	if len(result.Outcomes) > 0 {
		r.writePlain("%s\n", formatter.RenderMatchTable(result))
	}
	if result.Skipped > 0 {
		r.writePlain("Skipped %d entries without track data\n", result.Skipped)
	}
	r.writePlain("%s\n", result.Summary())
	for _, id := range result.Missing {
		r.writePlain("  ✗ missing after verify: %s\n", id)
	}
}

// report writes result to --report. suffix distinguishes the reports of a multi-playlist run.
func (r *Runner) report(cmd *cli.Command, result *tasks.CopyResult, suffix string) error {
	path := cmd.String("report")
	if path == "" {
		return nil
	}
	if suffix != "" {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + "-" + suffix + ext
	}
	if err := formatter.WriteReportFile(path, result, cmd.String("format")); err != nil {
		return err
	}
	r.logger.Info("report written", "path", path)
	return nil
}

// TransferPlaylist copies one snapshot playlist to YouTube Music.
func (r *Runner) TransferPlaylist(ctx context.Context, cmd *cli.Command) error {
	spotifyID := cmd.StringArg("spotify_id")
	if spotifyID == "" {
		return fmt.Errorf("%w: spotify playlist id", shared.ErrMissingArgument)
	}
	dest := cmd.StringArg("destination")

	copier, snap, err := r.newCopier(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("transferring playlist", "spotify_id", spotifyID, "destination", dest)
	result, err := withProgress(r, func(progress chan<- tasks.ProgressUpdate) (*tasks.CopyResult, error) {
		return copier.CopyPlaylist(ctx, progress, snap, spotifyID, dest)
	})
	return r.finishCopy(cmd, result, err)
}

// TransferAll copies every snapshot playlist except liked songs.
func (r *Runner) TransferAll(ctx context.Context, cmd *cli.Command) error {
	copier, snap, err := r.newCopier(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("transferring all playlists", "count", len(snap.Playlists))
	results, err := withProgress(r, func(progress chan<- tasks.ProgressUpdate) ([]*tasks.CopyResult, error) {
		return copier.CopyAll(ctx, progress, snap)
	})

	added, errs := 0, 0
	for i, result := range results {
		if reportErr := r.report(cmd, result, fmt.Sprintf("%02d", i+1)); reportErr != nil {
			r.logger.Error("failed to write report", "err", reportErr)
		}
		r.writePlain("%-40s %s\n", shared.Truncate(result.PlaylistName, 40), result.Summary())
		added += result.Added
		errs += result.Errors()
	}
	r.writePlainln("%d playlists, %d tracks added, %d errors", len(results), added, errs)
	return err
}

// TransferLiked likes every track of the snapshot's liked songs.
func (r *Runner) TransferLiked(ctx context.Context, cmd *cli.Command) error {
	copier, snap, err := r.newCopier(cmd)
	if err != nil {
		return err
	}

	result, err := withProgress(r, func(progress chan<- tasks.ProgressUpdate) (*tasks.CopyResult, error) {
		return copier.LoadLiked(ctx, progress, snap)
	})
	return r.finishCopy(cmd, result, err)
}

// TransferLikedAlbums likes every track of the snapshot's saved albums.
func (r *Runner) TransferLikedAlbums(ctx context.Context, cmd *cli.Command) error {
	copier, snap, err := r.newCopier(cmd)
	if err != nil {
		return err
	}
	if len(snap.Albums) == 0 {
		return fmt.Errorf("%w: snapshot has no saved albums", shared.ErrInvalidSnapshot)
	}

	result, err := withProgress(r, func(progress chan<- tasks.ProgressUpdate) (*tasks.CopyResult, error) {
		return copier.LoadLikedAlbums(ctx, progress, snap)
	})
	return r.finishCopy(cmd, result, err)
}

// TransferDiff compares a snapshot playlist with a YouTube Music playlist.
func (r *Runner) TransferDiff(ctx context.Context, cmd *cli.Command) error {
	spotifyID := cmd.StringArg("spotify_id")
	ytID := cmd.StringArg("ytmusic_id")
	if spotifyID == "" || ytID == "" {
		return fmt.Errorf("%w: spotify_id and ytmusic_id", shared.ErrMissingArgument)
	}
	if err := r.requireTarget(); err != nil {
		return err
	}

	snap, err := r.loadSnapshot(cmd)
	if err != nil {
		return err
	}
	copier := tasks.NewCopier(r.youtube, tasks.DefaultCopyOpts(), r.logger)

	diff, err := withProgress(r, func(progress chan<- tasks.ProgressUpdate) (*tasks.DiffResult, error) {
		return copier.Diff(ctx, progress, snap, spotifyID, ytID)
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(diff, true)
	}
	return r.writePlain("%s\n", formatter.RenderDiffTable(diff))
}
