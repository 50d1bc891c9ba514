package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/s2yt/internal/matcher"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
)

// TrackStatus is the outcome of copying one track.
type TrackStatus int

const (
	StatusAdded    TrackStatus = iota // Added to the playlist or liked
	StatusDryRun                      // Matched; nothing was sent
	StatusNotFound                    // No candidate matched
	StatusFailed                      // Search or add failed
)

func (s TrackStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDryRun:
		return "dry-run"
	case StatusNotFound:
		return "not found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (s TrackStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TrackOutcome records what happened to one source track.
type TrackOutcome struct {
	Index     int                `json:"index"`
	Source    models.SourceTrack `json:"source"`
	Match     models.MatchResult `json:"match"`
	Status    TrackStatus        `json:"status"`
	Duplicate bool               `json:"duplicate,omitempty"`
	Video     bool               `json:"video,omitempty"` // matched through the video fallback
	Attempts  int                `json:"attempts,omitempty"`
	Err       error              `json:"-"`
}

// ErrText returns the failure text, or "".
func (o TrackOutcome) ErrText() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// CopyResult summarizes a [Copier.Copy] run.
type CopyResult struct {
	RunID        string           `json:"run_id"`
	Source       string           `json:"source,omitempty"`
	Destination  Destination      `json:"destination"`
	PlaylistName string           `json:"playlist_name,omitempty"`
	Strategy     string           `json:"strategy"`
	DryRun       bool             `json:"dry_run"`
	Outcomes     []TrackOutcome   `json:"tracks"`
	Skipped      int              `json:"skipped"` // snapshot entries with no track
	Added        int              `json:"added"`   // distinct target IDs matched
	Duplicates   int              `json:"duplicates"`
	NotFound     int              `json:"not_found"`
	Failed       int              `json:"failed"`
	Verified     bool             `json:"verified"`
	Missing      []string         `json:"missing,omitempty"` // acknowledged but absent after verify
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
	acknowledged []string
}

// Errors is the number of tracks that were not matched or could not be added.
func (r *CopyResult) Errors() int {
	return r.NotFound + r.Failed
}

// Summary renders the one-line summary printed after a copy.
func (r *CopyResult) Summary() string {
	verb := "Added"
	if r.DryRun {
		verb = "Would add"
	}
	s := fmt.Sprintf("%s %d tracks, encountered %d duplicates, %d errors", verb, r.Added, r.Duplicates, r.Errors())
	if len(r.Missing) > 0 {
		s += fmt.Sprintf(", %d missing after verify", len(r.Missing))
	}
	return s
}

// Copy resolves each source track on the target and adds it to dest.
//
// Tracks are processed in order, one at a time, spaced by TrackSleep. A failed track is recorded and
// skipped. Cancelling ctx stops the sequence and returns the partial result with ctx's error; tracks
// already added stay added.
func (c *Copier) Copy(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.SourceTrack, dest Destination) (*CopyResult, error) {
	result := &CopyResult{
		RunID:       shared.GenerateID(),
		Destination: dest,
		Strategy:    c.opts.Strategy.String(),
		DryRun:      c.opts.DryRun,
		Outcomes:    make([]TrackOutcome, 0, len(tracks)),
		StartedAt:   time.Now(),
	}
	logger := c.logger.With("run", result.RunID, "dest", dest.String())

	if !dest.Liked && dest.PlaylistID != "" {
		sendProgress(progress, fetchDestUpdate(1, 1, dest.PlaylistID))
		pl, err := c.target.GetPlaylist(ctx, dest.PlaylistID)
		if err != nil {
			return nil, fmt.Errorf("unable to find YouTube Music playlist %s: %w", dest.PlaylistID, err)
		}
		result.PlaylistName = pl.Name
		logger.Info("destination", "playlist", pl.Name)
	} else if !dest.Liked && !c.opts.DryRun {
		return nil, fmt.Errorf("%w: destination playlist id", shared.ErrMissingArgument)
	}

	pacer := c.pacer()
	seen := make(map[string]bool, len(tracks))
	total := len(tracks)

	for i, src := range tracks {
		if err := ctx.Err(); err != nil {
			return c.finish(ctx, progress, result), err
		}
		if err := pacer.Wait(ctx); err != nil {
			return c.finish(ctx, progress, result), err
		}

		sendProgress(progress, searchTrackUpdate(i+1, total, src))
		o := c.copyTrack(ctx, i, src, dest, seen)
		c.record(result, o)
		c.logOutcome(logger, o)
		sendProgress(progress, trackOutcomeUpdate(i+1, total, o))
	}

	return c.finish(ctx, progress, result), nil
}

func (c *Copier) copyTrack(ctx context.Context, i int, src models.SourceTrack, dest Destination, seen map[string]bool) TrackOutcome {
	o := TrackOutcome{Index: i, Source: src}

	candidates, err := c.target.SearchCandidates(ctx, src)
	if err != nil {
		o.Status, o.Err = StatusFailed, fmt.Errorf("unable to look up song on YouTube Music: %w", err)
		return o
	}

	o.Match = c.matcher.Match(src, candidates, c.opts.Strategy)
	if !o.Match.Matched && c.opts.Strategy == matcher.Approximate && c.opts.VideoFallback {
		videos, err := c.target.SearchVideos(ctx, src)
		if err != nil {
			o.Match.Issues = append(o.Match.Issues, fmt.Errorf("video search: %w", err))
		} else if vm := c.matcher.Match(src, videos, c.opts.Strategy); vm.Matched {
			vm.Issues = append(o.Match.Issues, vm.Issues...)
			o.Match, o.Video = vm, true
		}
	}

	if !o.Match.Matched {
		o.Status = StatusNotFound
		return o
	}

	if seen[o.Match.TargetID] {
		o.Duplicate = true
	}
	seen[o.Match.TargetID] = true

	if c.opts.DryRun {
		o.Status = StatusDryRun
		return o
	}

	id := o.Match.TargetID
	attempts, err := c.retry(ctx, "add", func() error {
		if dest.Liked {
			return c.target.RateSong(ctx, id, services.RatingLike)
		}
		return c.target.AddPlaylistItems(ctx, dest.PlaylistID, []string{id})
	})
	o.Attempts = attempts
	if err != nil {
		o.Status, o.Err = StatusFailed, fmt.Errorf("add %s after %d attempts: %w", id, attempts, err)
		return o
	}
	o.Status = StatusAdded
	return o
}

func (c *Copier) record(r *CopyResult, o TrackOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusAdded, StatusDryRun:
		if o.Duplicate {
			r.Duplicates++
		} else {
			r.Added++
		}
		if o.Status == StatusAdded {
			r.acknowledged = append(r.acknowledged, o.Match.TargetID)
		}
	case StatusNotFound:
		r.NotFound++
	case StatusFailed:
		r.Failed++
	}
}

func (c *Copier) logOutcome(logger *log.Logger, o TrackOutcome) {
	src := o.Source
	switch o.Status {
	case StatusAdded, StatusDryRun:
		cand := o.Match.Candidate
		logger.Info(src.String(), "youtube", cand.Title, "artist", cand.Artist, "id", o.Match.TargetID,
			"tier", o.Match.Tier, "status", o.Status, "duplicate", o.Duplicate)
	case StatusNotFound:
		logger.Warn("not found", "track", src.String(), "issues", o.Match.Issues)
	default:
		logger.Error("failed", "track", src.String(), "err", o.Err)
	}
}

// finish runs the optional verification and closes out the result.
func (c *Copier) finish(ctx context.Context, progress chan<- ProgressUpdate, r *CopyResult) *CopyResult {
	if c.opts.Verify && !r.DryRun && !r.Destination.Liked && ctx.Err() == nil {
		c.verify(ctx, progress, r)
	}
	r.FinishedAt = time.Now()
	c.logger.Info(r.Summary(), "run", r.RunID)
	sendProgress(progress, doneUpdate(r))
	return r
}

// verify re-reads the destination playlist and records acknowledged IDs it does not contain.
func (c *Copier) verify(ctx context.Context, progress chan<- ProgressUpdate, r *CopyResult) {
	sendProgress(progress, verifyUpdate(r.Destination.PlaylistID))

	export, err := c.target.ExportPlaylist(ctx, r.Destination.PlaylistID)
	if err != nil {
		c.logger.Warn("verify failed", "playlist", r.Destination.PlaylistID, "err", err)
		return
	}

	r.Verified = true
	reported := make(map[string]bool)
	for _, id := range r.acknowledged {
		if !export.Contains(id) && !reported[id] {
			reported[id] = true
			r.Missing = append(r.Missing, id)
		}
	}
	if len(r.Missing) > 0 {
		c.logger.Warn("tracks missing after copy", "playlist", r.Destination.PlaylistID, "ids", r.Missing)
	}
}
