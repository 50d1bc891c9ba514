package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/s2yt/internal/matcher"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultTrackSleep     = 100 * time.Millisecond
	DefaultMaxRetries     = 10
	DefaultInitialBackoff = 5 * time.Second
	maxBackoffInterval    = time.Hour
)

// CopyOpts configures a [Copier].
type CopyOpts struct {
	Strategy       matcher.Strategy
	DryRun         bool          // Match only; nothing is added, liked or created
	TrackSleep     time.Duration // Minimum spacing between tracks; zero disables pacing
	MaxRetries     int           // Attempts per add, including the first
	InitialBackoff time.Duration // Wait before the first retry; doubles each time
	VideoFallback  bool          // Search videos when approximate matching finds no song
	Verify         bool          // Re-read the playlist after copying
	Reverse        bool          // Copy snapshot playlists oldest entry first
	Privacy        string        // Privacy of created playlists
}

// DefaultCopyOpts returns the transfer defaults.
func DefaultCopyOpts() CopyOpts {
	return CopyOpts{
		Strategy:       matcher.Exact,
		TrackSleep:     DefaultTrackSleep,
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		VideoFallback:  true,
		Reverse:        true,
		Privacy:        shared.PrivacyPrivate,
	}
}

// OptsFromConfig builds [CopyOpts] from the transfer section of the config file.
func OptsFromConfig(cfg shared.TransferConfig) (CopyOpts, error) {
	strategy, err := matcher.FromAlgo(cfg.Algo)
	if err != nil {
		return CopyOpts{}, err
	}
	privacy, err := shared.NormalizePrivacy(cfg.Privacy)
	if err != nil {
		return CopyOpts{}, err
	}
	return CopyOpts{
		Strategy:       strategy,
		DryRun:         cfg.DryRun,
		TrackSleep:     cfg.TrackSleep,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.Backoff,
		VideoFallback:  cfg.VideoFallback,
		Verify:         cfg.Verify,
		Reverse:        cfg.Reverse,
		Privacy:        privacy,
	}, nil
}

// Destination is where matched tracks go: a playlist, or the user's liked music.
type Destination struct {
	PlaylistID string `json:"playlist_id,omitempty"`
	Liked      bool   `json:"liked,omitempty"`
}

func (d Destination) String() string {
	if d.Liked {
		return "liked music"
	}
	return d.PlaylistID
}

// Copier transfers source tracks to a [services.Target].
//
// Tracks are processed strictly one at a time, in order.
type Copier struct {
	target  services.Target
	matcher *matcher.Matcher
	logger  *log.Logger
	opts    CopyOpts
}

// NewCopier creates a Copier. A nil logger discards output.
func NewCopier(target services.Target, opts CopyOpts, logger *log.Logger) *Copier {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	return &Copier{
		target:  target,
		matcher: matcher.New(matcher.Opts{}),
		logger:  logger,
		opts:    opts,
	}
}

// Opts returns the options the copier was created with, after defaults.
func (c *Copier) Opts() CopyOpts {
	return c.opts
}

// SetMatcher replaces the matcher, e.g. to change the duration tolerance.
func (c *Copier) SetMatcher(m *matcher.Matcher) {
	c.matcher = m
}

func (c *Copier) pacer() *rate.Limiter {
	if c.opts.TrackSleep <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(c.opts.TrackSleep), 1)
}

// retry runs op with exponential backoff: InitialBackoff, doubling, for at most MaxRetries attempts.
//
// Non-temporary API errors and missing playlists stop immediately.
// Returns the number of attempts made.
func (c *Copier) retry(ctx context.Context, what string, op func() error) (int, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxBackoffInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries-1)), ctx)

	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("retrying", "op", what, "attempt", attempts, "in", wait, "err", err)
	})
	return attempts, err
}

func permanent(err error) bool {
	var se *services.StatusError
	if errors.As(err, &se) {
		return !se.Temporary()
	}
	return errors.Is(err, shared.ErrPlaylistNotFound) ||
		errors.Is(err, shared.ErrInvalidArgument) ||
		errors.Is(err, shared.ErrMissingArgument) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// CreatePlaylist creates a playlist described by its own name, retrying like track adds.
func (c *Copier) CreatePlaylist(ctx context.Context, progress chan<- ProgressUpdate, name string) (*models.Playlist, error) {
	privacy, err := shared.NormalizePrivacy(c.opts.Privacy)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, createDestinationUpdate(name))

	var id string
	attempts, err := c.retry(ctx, "create_playlist", func() error {
		var err error
		id, err = c.target.CreatePlaylist(ctx, name, name, privacy)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist %q after %d attempts: %w", name, attempts, err)
	}

	pl := &models.Playlist{ID: id, Name: name, Description: name, Public: privacy == shared.PrivacyPublic}
	c.logger.Info("created playlist", "name", name, "id", id)
	sendProgress(progress, createPlaylistUpdate(pl))
	return pl, nil
}
