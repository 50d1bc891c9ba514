package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/s2yt/internal/formatter"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
	"github.com/urfave/cli/v3"
)

// SnapshotList prints the playlists of a snapshot.
func (r *Runner) SnapshotList(ctx context.Context, cmd *cli.Command) error {
	snap, err := r.loadSnapshot(cmd)
	if err != nil {
		return err
	}

	summaries := snap.Summaries()
	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	r.writePlain("%s\n", formatter.RenderPlaylistTable(summaries))
	r.writePlain("%d playlists", len(summaries))
	if n := len(snap.Albums); n > 0 {
		r.writePlain(", %d saved albums", n)
	}
	return r.writePlain("\n")
}

// SnapshotConvert merges the liked songs of a YourLibrary.json privacy export into the snapshot.
func (r *Runner) SnapshotConvert(ctx context.Context, cmd *cli.Command) error {
	library := cmd.StringArg("library")
	if library == "" {
		return fmt.Errorf("%w: path to YourLibrary.json", shared.ErrMissingArgument)
	}

	path := r.snapshotPath(cmd)
	r.logger.Info("converting library export", "input", library, "snapshot", path)

	n, err := snapshot.ConvertLibrary(library, path)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %d liked songs written to %s\n", n, path)
}

// SnapshotImport builds a snapshot from the playlists of a PlaylistN.json privacy export.
func (r *Runner) SnapshotImport(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("playlists")
	if input == "" {
		return fmt.Errorf("%w: path to a PlaylistN.json export", shared.ErrMissingArgument)
	}

	path := r.snapshotPath(cmd)
	r.logger.Info("importing playlist export", "input", input, "snapshot", path)

	n, err := snapshot.ConvertPlaylists(input, path)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %d playlists written to %s\n", n, path)
}
