// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Snapshot file (default: snapshot.path from config)",
	}
}

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Usage:   "Spotify access token; skips the browser login",
		Sources: cli.EnvVars("S2YT_SPOTIFY_ACCESS_TOKEN"),
	}
}

// transferFlags are shared by every transfer subcommand. Unset flags fall back to the [transfer] config section.
func transferFlags() []cli.Flag {
	return []cli.Flag{
		fileFlag(),
		&cli.IntFlag{
			Name:  "algo",
			Usage: "Matching strategy: 0 exact, 1 extended (album), 2 approximate",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Match tracks and report what would be added without changing YouTube Music",
		},
		&cli.DurationFlag{
			Name:  "track-sleep",
			Usage: "Minimum time between tracks",
			Value: 100 * time.Millisecond,
		},
		&cli.BoolFlag{
			Name:  "reverse",
			Usage: "Add the oldest playlist entry first",
			Value: true,
		},
		&cli.StringFlag{
			Name:  "privacy",
			Usage: "Privacy of created playlists: PRIVATE, PUBLIC or UNLISTED",
			Value: "PRIVATE",
		},
		&cli.BoolFlag{
			Name:  "verify",
			Usage: "Re-read the destination playlist afterwards and report missing tracks",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a transfer report to this path",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Report format: json, csv, markdown or txt (default: from --report extension)",
		},
	}
}

// setupCommand handles configuration and YouTube Music authentication setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:    "youtube",
				Aliases: []string{"yt", "ytmusic"},
				Usage:   "Configure YouTube Music authentication from browser headers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for browser.json (default: credentials.youtube.headers_path)",
					},
				},
				Action: r.SetupYouTube,
			},
		},
	}
}

// authCommand handles proxy authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube Music proxy authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Upload a browser.json header file to the proxy",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check proxy health and authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify login and backup",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "backup",
				Usage: "Export playlists, liked songs and saved albums to a snapshot",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Snapshot file to write (default: snapshot.path from config)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent playlist exports (default: backup.workers from config)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Spotify requests per second (default: backup.rate_limit from config)",
					},
					&cli.BoolFlag{
						Name:  "no-liked",
						Usage: "Skip liked songs",
					},
					&cli.BoolFlag{
						Name:  "no-albums",
						Usage: "Skip saved albums",
					},
				},
				Action: r.SpotifyBackup,
			},
		},
	}
}

// snapshotCommand handles local snapshot files
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "Inspect and build playlists.json snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the playlists in a snapshot",
				Flags: []cli.Flag{
					fileFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.SnapshotList,
			},
			{
				Name:  "convert",
				Usage: "Add the liked songs of a Spotify privacy export (YourLibrary.json) to a snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "library"},
				},
				Flags:  []cli.Flag{fileFlag()},
				Action: r.SnapshotConvert,
			},
			{
				Name:  "import",
				Usage: "Build a snapshot from the playlists of a Spotify privacy export (PlaylistN.json)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlists"},
				},
				Flags:  []cli.Flag{fileFlag()},
				Action: r.SnapshotImport,
			},
		},
	}
}

// ytmusicCommand handles YouTube Music operations
func ytmusicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "ytmusic",
		Aliases: []string{"ytm", "yt"},
		Usage:   "YouTube Music operations",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search YouTube Music for a track and show which result the matcher accepts",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Track artist"},
					&cli.StringFlag{Name: "album", Usage: "Track album"},
					&cli.IntFlag{Name: "duration", Usage: "Track length in seconds"},
					&cli.IntFlag{Name: "algo", Usage: "Matching strategy: 0 exact, 1 extended, 2 approximate"},
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
				},
				Action: r.YTMusicSearch,
			},
			{
				Name:  "create",
				Usage: "Create playlist on YouTube Music",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description (default: the name)",
					},
					&cli.StringFlag{
						Name:  "privacy",
						Usage: "PRIVATE, PUBLIC or UNLISTED",
						Value: "PRIVATE",
					},
				},
				Action: r.YTMusicCreate,
			},
			{
				Name:  "playlists",
				Usage: "List YouTube Music library playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
				},
				Action: r.YTMusicPlaylists,
			},
		},
	}
}

// transferCommand handles snapshot to YouTube Music transfers
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Copy snapshot playlists and likes to YouTube Music",
		Commands: []*cli.Command{
			{
				Name:  "playlist",
				Usage: "Copy one playlist; destination is a YouTube Music playlist ID or +Name (default: create one)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "spotify_id"},
					&cli.StringArg{Name: "destination"},
				},
				Flags:  transferFlags(),
				Action: r.TransferPlaylist,
			},
			{
				Name:   "all",
				Usage:  "Copy every playlist except liked songs, reusing playlists with the same name",
				Flags:  transferFlags(),
				Action: r.TransferAll,
			},
			{
				Name:   "liked",
				Usage:  "Like every track of the liked songs playlist",
				Flags:  transferFlags(),
				Action: r.TransferLiked,
			},
			{
				Name:   "liked-albums",
				Usage:  "Like every track of the saved albums",
				Flags:  transferFlags(),
				Action: r.TransferLikedAlbums,
			},
			{
				Name:  "diff",
				Usage: "Compare a snapshot playlist with a YouTube Music playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "spotify_id"},
					&cli.StringArg{Name: "ytmusic_id"},
				},
				Flags: []cli.Flag{
					fileFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
				},
				Action: r.TransferDiff,
			},
		},
	}
}

// apiCommand handles direct (proxy) API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the ytmusicapi proxy",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a proxy path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON", Value: true},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a proxy path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive transfers.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse the snapshot and transfer playlists interactively",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.BoolFlag{Name: "dry-run", Usage: "Start with dry run enabled"},
			&cli.StringFlag{Name: "log-file", Usage: "Log destination while the TUI runs", Value: "./tmp/s2yt-tui.log"},
		},
		Action: r.TUI,
	}
}
