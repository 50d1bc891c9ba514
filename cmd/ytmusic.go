package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/s2yt/internal/formatter"
	"github.com/desertthunder/s2yt/internal/matcher"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/urfave/cli/v3"
)

type searchOutput struct {
	Query      models.SourceTrack      `json:"query"`
	Strategy   string                  `json:"strategy"`
	Candidates []models.CandidateTrack `json:"candidates"`
	Match      models.MatchResult      `json:"match"`
}

// YTMusicSearch searches YouTube Music for a track and shows the candidate the matcher accepts.
func (r *Runner) YTMusicSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTarget(); err != nil {
		return err
	}

	source := models.SourceTrack{
		Title:    cmd.StringArg("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Duration: cmd.Int("duration"),
	}
	if source.Title == "" {
		return fmt.Errorf("%w: track title", shared.ErrMissingArgument)
	}

	algo := r.config.Transfer.Algo
	if cmd.IsSet("algo") {
		algo = cmd.Int("algo")
	}
	strategy, err := matcher.FromAlgo(algo)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	r.logger.Info("searching youtube music", "track", source.String(), "strategy", strategy)

	candidates, err := r.youtube.SearchCandidates(ctx, source)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	result := matcher.Match(source, candidates, strategy)

	if !result.Matched && strategy == matcher.Approximate && r.config.Transfer.VideoFallback {
		r.logger.Debug("no song matched, searching videos")
		videos, err := r.youtube.SearchVideos(ctx, source)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if videoResult := matcher.Match(source, videos, strategy); videoResult.Matched {
			candidates, result = append(candidates, videos...), videoResult
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(searchOutput{
			Query:      source,
			Strategy:   strategy.String(),
			Candidates: candidates,
			Match:      result,
		}, true)
	}

	if len(candidates) == 0 {
		return r.writePlain("No results for %s\n", source)
	}

	r.writePlain("%s\n", formatter.RenderCandidateTable(candidates, result))
	if !result.Matched {
		return r.writePlain("✗ No %s match for %s\n", strategy, source)
	}
	r.writePlain("✓ %s matched %s (%s)\n", strategy, result.TargetID, result.Tier)
	for _, issue := range result.Issues {
		r.writePlain("  ⚠ %s\n", issue)
	}
	return nil
}

// YTMusicCreate creates a new playlist on YouTube Music.
func (r *Runner) YTMusicCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTarget(); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	description := cmd.String("description")
	if description == "" {
		description = name
	}
	privacy, err := shared.NormalizePrivacy(cmd.String("privacy"))
	if err != nil {
		return err
	}

	r.logger.Info("creating youtube music playlist", "name", name, "privacy", privacy)

	id, err := r.youtube.CreatePlaylist(ctx, name, description, privacy)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("playlist created", "id", id, "name", name)
	return r.writePlain("✓ Created playlist '%s'\nID: %s\n", name, id)
}

// YTMusicPlaylists lists the playlists in the YouTube Music library.
func (r *Runner) YTMusicPlaylists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTarget(); err != nil {
		return err
	}

	playlists, err := r.youtube.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}
	r.writePlain("%s\n", formatter.RenderPlaylistTable(playlists))
	return r.writePlain("%d playlists\n", len(playlists))
}
