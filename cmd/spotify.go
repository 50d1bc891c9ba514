package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/desertthunder/s2yt/internal/server"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
	"github.com/desertthunder/s2yt/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const oauthTimeout = 2 * time.Minute

// oauthSource is a [services.Source] that can run the authorization code flow.
type oauthSource interface {
	services.Source
	GetAuthURL(state string) string
	Token() *oauth2.Token
}

type profileSource interface {
	UserProfile(ctx context.Context) (*services.SpotifyUser, error)
}

// connectSpotify authenticates r.spotify with --token when given, otherwise through the browser.
func (r *Runner) connectSpotify(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrServiceUnavailable)
	}

	if token := cmd.String("token"); token != "" {
		r.logger.Debug("using access token from flag or environment")
		return r.spotify.Authenticate(ctx, map[string]string{"access_token": token})
	}

	src, ok := r.spotify.(oauthSource)
	if !ok {
		return fmt.Errorf("%w: %s needs --token", shared.ErrMissingCredentials, r.spotify.Name())
	}
	_, err := r.doOAuth(ctx, src)
	return err
}

// doOAuth serves the redirect URI locally, opens the consent page and waits for the callback.
func (r *Runner) doOAuth(ctx context.Context, src oauthSource) (*oauth2.Token, error) {
	state := shared.GenerateState()

	exchange := func(_ context.Context, code string) (*oauth2.Token, error) {
		if err := src.Authenticate(ctx, map[string]string{"auth_code": code}); err != nil {
			return nil, err
		}
		return src.Token(), nil
	}
	handler := server.NewOAuthHandler(exchange, state)

	addr := r.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	r.logger.Infof("starting OAuth server at %v", addr)

	authURL := src.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", oauthTimeout)

	waitCtx, cancel := context.WithTimeout(ctx, oauthTimeout)
	defer cancel()

	token, err := server.AwaitCallback(waitCtx, ln, handler, r.logger)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return token, nil
}

// SpotifyAuth authenticates with Spotify and prints the connected account.
//
// Tokens are not stored; the access token is printed so later commands can reuse it through --token.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	if err := r.connectSpotify(ctx, cmd); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")

	if p, ok := r.spotify.(profileSource); ok {
		user, err := p.UserProfile(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		name := user.DisplayName
		if name == "" {
			name = user.ID
		}
		r.writePlain("Account: %s (%s)\n", name, user.Product)
	}

	if src, ok := r.spotify.(oauthSource); ok && src.Token() != nil && cmd.String("token") == "" {
		token := src.Token()
		r.writePlain("Token expires: %s\n", token.Expiry.Local().Format(time.Kitchen))
		r.writePlain("\nReuse it with: S2YT_SPOTIFY_ACCESS_TOKEN=%s s2yt spotify backup\n", token.AccessToken)
	}
	return nil
}

// SpotifyBackup exports the Spotify library into a snapshot file.
func (r *Runner) SpotifyBackup(ctx context.Context, cmd *cli.Command) error {
	if err := r.connectSpotify(ctx, cmd); err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = r.snapshotPath(cmd)
	}

	opts := tasks.BackupOpts{
		Workers:   r.config.Backup.Workers,
		RateLimit: r.config.Backup.RateLimit,
		Liked:     !cmd.Bool("no-liked"),
		Albums:    !cmd.Bool("no-albums"),
		Logger:    r.logger,
	}
	if cmd.IsSet("workers") {
		opts.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("rate") {
		opts.RateLimit = cmd.Float("rate")
	}

	r.logger.Info("starting backup", "workers", opts.Workers, "rate", opts.RateLimit, "output", output)

	result, err := withProgress(r, func(progress chan<- tasks.ProgressUpdate) (*tasks.BackupResult, error) {
		return tasks.Backup(ctx, progress, r.spotify, opts)
	})
	if err != nil {
		return err
	}

	if err := result.Snapshot.Save(output); err != nil {
		return err
	}

	r.writePlainHeader("Backup Summary")
	r.writePlain("Playlists:  %d/%d exported\n", result.SuccessfulExports, result.TotalPlaylists)
	if liked, err := result.Snapshot.Liked(); err == nil {
		r.writePlain("%s: %d tracks\n", snapshot.LikedSongsName, len(liked.Tracks))
	}
	if n := len(result.Snapshot.Albums); n > 0 {
		r.writePlain("Albums:     %d\n", n)
	}
	r.writePlain("Saved to:   %s\n", output)

	if result.FailedExports > 0 {
		r.writePlainln("Failed playlists:")
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  ✗ %s: %v\n", res.PlaylistName, res.Error)
			}
		}
	}
	return nil
}
