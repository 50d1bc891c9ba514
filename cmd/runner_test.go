package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
	tu "github.com/desertthunder/s2yt/internal/testing"
)

func roadTrip() *snapshot.Snapshot {
	return &snapshot.Snapshot{Playlists: []snapshot.Playlist{
		{ID: snapshot.LikedSongsID, Name: snapshot.LikedSongsName, Tracks: []snapshot.Item{
			tu.Item("Halo", "Beyoncé", "I Am... Sasha Fierce"),
		}},
		{ID: "p1", Name: "Road Trip", Tracks: []snapshot.Item{
			tu.Item("Yesterday", "The Beatles", "Help!"),
			tu.Item("Halo", "Beyoncé", "I Am... Sasha Fierce"),
			{},
		}},
	}}
}

func writeSnapshot(t *testing.T, snap *snapshot.Snapshot) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playlists.json")
	if err := snap.Save(path); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}
	return path
}

func newTarget() *tu.FakeTarget {
	target := tu.NewFakeTarget()
	target.Songs["Yesterday"] = []models.CandidateTrack{{Title: "Yesterday", Artist: "The Beatles", TargetID: "y1"}}
	target.Songs["Halo"] = []models.CandidateTrack{{Title: "Halo", Artist: "Beyoncé", TargetID: "h1"}}
	return target
}

func newTestRunner(opts RunnerOpts) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	opts.Output = output
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return NewRunner(opts), output
}

func run(r *Runner, args ...string) error {
	return r.app().Run(context.Background(), append([]string{"s2yt"}, args...))
}

// proxy serves canned responses keyed by "METHOD /path".
func proxy(t *testing.T, routes map[string]string) *services.APIService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return services.NewAPIService(srv.URL, srv.Client())
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			spotify := &tu.FakeSource{}
			youtube := tu.NewFakeTarget()
			api := services.NewAPIService("", nil)

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Spotify: spotify,
				YouTube: youtube,
				API:     api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.youtube != youtube {
				t.Error("expected youtube to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to encode JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("formats output", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})
			if err := runner.writePlain("%d tracks\n", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "3 tracks\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})
			runner.writePlainln("Next steps:")
			if output.String() != "\nNext steps:\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("hello"); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "spotify", "snapshot", "ytmusic", "transfer", "api", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %s, got %s", i, name, commands[i].Name)
			}
		}
	})

	t.Run("config flag replaces the startup config", func(t *testing.T) {
		snapPath := writeSnapshot(t, roadTrip())
		cfgPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(cfgPath, []byte(fmt.Sprintf("[snapshot]\npath = %q\n", snapPath)), 0644); err != nil {
			t.Fatal(err)
		}

		runner, output := newTestRunner(RunnerOpts{})
		if err := run(runner, "--config", cfgPath, "snapshot", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Snapshot.Path != snapPath {
			t.Errorf("expected snapshot path %s, got %s", snapPath, runner.config.Snapshot.Path)
		}
		if !strings.Contains(output.String(), "Road Trip") {
			t.Errorf("expected playlist listing, got %q", output.String())
		}
	})

	t.Run("copyOpts", func(t *testing.T) {
		t.Run("invalid privacy", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{YouTube: newTarget()})
			err := run(runner, "transfer", "liked", "--file", writeSnapshot(t, roadTrip()), "--privacy", "secret")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("invalid algo", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{YouTube: newTarget()})
			err := run(runner, "transfer", "liked", "--file", writeSnapshot(t, roadTrip()), "--algo", "7")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}

func TestSnapshotCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		runner, output := newTestRunner(RunnerOpts{})
		if err := run(runner, "snapshot", "list", "--file", writeSnapshot(t, roadTrip())); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Road Trip") || !strings.Contains(out, "2 playlists") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("list json", func(t *testing.T) {
		runner, output := newTestRunner(RunnerOpts{})
		if err := run(runner, "snapshot", "list", "--json", "--file", writeSnapshot(t, roadTrip())); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"name": "Road Trip"`) {
			t.Errorf("expected JSON listing, got %s", output.String())
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{})
		err := run(runner, "snapshot", "list", "--file", filepath.Join(t.TempDir(), "none.json"))
		if !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("import playlists export", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "Playlist1.json")
		export := `{"playlists":[{"id":"x1","name":"Gym","items":[
			{"track":{"trackName":"Stronger","artistName":"Kanye West","albumName":"Graduation","trackUri":"spotify:track:1"}},
			{"track":null}
		]}]}`
		if err := os.WriteFile(input, []byte(export), 0644); err != nil {
			t.Fatal(err)
		}
		out := filepath.Join(dir, "playlists.json")

		runner, output := newTestRunner(RunnerOpts{})
		if err := run(runner, "snapshot", "import", "--file", out, input); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "1 playlists written") {
			t.Errorf("unexpected output %q", output.String())
		}

		snap, err := snapshot.Load(out)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		pl, err := snap.Find("x1")
		if err != nil || len(pl.Tracks) != 1 {
			t.Errorf("expected Gym with 1 track, got %+v (%v)", pl, err)
		}
	})

	t.Run("convert requires a path", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{})
		if err := run(runner, "snapshot", "convert"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestTransferCommands(t *testing.T) {
	t.Run("dry run adds nothing and writes a report", func(t *testing.T) {
		target := newTarget()
		runner, output := newTestRunner(RunnerOpts{YouTube: target})
		report := filepath.Join(t.TempDir(), "reports", "road-trip.csv")

		err := run(runner, "transfer", "playlist",
			"--file", writeSnapshot(t, roadTrip()), "--dry-run", "--track-sleep", "0", "--report", report, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(target.Added) != 0 || len(target.Playlists) != 0 {
			t.Errorf("dry run touched the target: %v %v", target.Added, target.Playlists)
		}
		if !strings.Contains(output.String(), "Would add 2 tracks") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
		tu.AssertFileExists(t, report)
		if content := tu.MustReadFile(t, report); !strings.Contains(content, "Yesterday") {
			t.Errorf("expected track in report, got %q", content)
		}
	})

	t.Run("copies into a new playlist oldest first", func(t *testing.T) {
		target := newTarget()
		runner, output := newTestRunner(RunnerOpts{YouTube: target})

		err := run(runner, "transfer", "playlist", "--file", writeSnapshot(t, roadTrip()), "--track-sleep", "0", "--verify", "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		created, ok := target.Playlists["PL1"]
		if !ok || created.Playlist.Name != "Road Trip" {
			t.Fatalf("expected Road Trip to be created, got %v", target.Playlists)
		}
		if len(target.Added) != 2 || target.Added[0] != "h1" || target.Added[1] != "y1" {
			t.Errorf("expected [h1 y1], got %v", target.Added)
		}
		if !strings.Contains(output.String(), "Added 2 tracks") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("copies into a playlist found by name", func(t *testing.T) {
		target := newTarget()
		target.AddPlaylist("yt1", "Mix")
		runner, _ := newTestRunner(RunnerOpts{YouTube: target})

		err := run(runner, "transfer", "playlist", "--file", writeSnapshot(t, roadTrip()), "--track-sleep", "0", "p1", "+Mix")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(target.Playlists) != 1 || len(target.Playlists["yt1"].Tracks) != 2 {
			t.Errorf("expected both tracks in yt1, got %+v", target.Playlists)
		}
	})

	t.Run("missing spotify id", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{YouTube: newTarget()})
		if err := run(runner, "transfer", "playlist"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("all skips liked songs", func(t *testing.T) {
		target := newTarget()
		runner, output := newTestRunner(RunnerOpts{YouTube: target})

		if err := run(runner, "transfer", "all", "--file", writeSnapshot(t, roadTrip()), "--track-sleep", "0"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(target.Playlists) != 1 || len(target.Liked) != 0 {
			t.Errorf("expected only Road Trip, got %v liked %v", target.Playlists, target.Liked)
		}
		if !strings.Contains(output.String(), "1 playlists, 2 tracks added, 0 errors") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("liked", func(t *testing.T) {
		target := newTarget()
		runner, _ := newTestRunner(RunnerOpts{YouTube: target})

		if err := run(runner, "transfer", "liked", "--file", writeSnapshot(t, roadTrip()), "--track-sleep", "0"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(target.Liked) != 1 || target.Liked[0] != "h1" {
			t.Errorf("expected h1 liked, got %v", target.Liked)
		}
	})

	t.Run("liked albums needs albums", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{YouTube: newTarget()})
		err := run(runner, "transfer", "liked-albums", "--file", writeSnapshot(t, roadTrip()))
		if !errors.Is(err, shared.ErrInvalidSnapshot) {
			t.Errorf("expected ErrInvalidSnapshot, got %v", err)
		}
	})

	t.Run("no target", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{})
		err := run(runner, "transfer", "liked", "--file", writeSnapshot(t, roadTrip()))
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("diff", func(t *testing.T) {
		target := newTarget()
		target.AddPlaylist("yt1", "Road Trip")
		target.Playlists["yt1"].Tracks = []models.CandidateTrack{
			{Title: "Halo", Artist: "Beyoncé", TargetID: "h1"},
			{Title: "Hey Jude", Artist: "The Beatles", TargetID: "j1"},
		}
		runner, output := newTestRunner(RunnerOpts{YouTube: target})

		if err := run(runner, "transfer", "diff", "--file", writeSnapshot(t, roadTrip()), "p1", "yt1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "1 matched, 1 missing, 1 extra") || !strings.Contains(out, "Hey Jude") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}

func TestSpotifyCommands(t *testing.T) {
	source := func() *tu.FakeSource {
		return &tu.FakeSource{
			Playlists: []snapshot.Playlist{{ID: "p1", Name: "Road Trip", Tracks: []snapshot.Item{
				tu.Item("Yesterday", "The Beatles", "Help!"),
			}}},
			Likes: []snapshot.Item{tu.Item("Halo", "Beyoncé", "I Am... Sasha Fierce")},
		}
	}

	t.Run("backup writes a snapshot", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "playlists.json")
		runner, output := newTestRunner(RunnerOpts{Spotify: source()})

		err := run(runner, "spotify", "backup", "--token", "abc", "--output", out, "--workers", "2", "--rate", "1000")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		snap, err := snapshot.Load(out)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if _, err := snap.Find("p1"); err != nil {
			t.Errorf("expected p1 in snapshot: %v", err)
		}
		if liked, err := snap.Liked(); err != nil || len(liked.Tracks) != 1 {
			t.Errorf("expected 1 liked song, got %v", err)
		}
		if !strings.Contains(output.String(), "1/1 exported") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("backup without liked songs", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "playlists.json")
		runner, _ := newTestRunner(RunnerOpts{Spotify: source()})

		if err := run(runner, "spotify", "backup", "--token", "abc", "--output", out, "--no-liked", "--rate", "1000"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		snap, err := snapshot.Load(out)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if _, err := snap.Liked(); err == nil {
			t.Error("expected no liked songs playlist")
		}
	})

	t.Run("auth with token", func(t *testing.T) {
		runner, output := newTestRunner(RunnerOpts{Spotify: source()})
		if err := run(runner, "spotify", "auth", "--token", "abc"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Authorization successful") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("source without oauth needs a token", func(t *testing.T) {
		t.Setenv("S2YT_SPOTIFY_ACCESS_TOKEN", "")
		runner, _ := newTestRunner(RunnerOpts{Spotify: source()})
		if err := run(runner, "spotify", "auth"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("no spotify service", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{})
		if err := run(runner, "spotify", "backup", "--token", "abc"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestYTMusicCommands(t *testing.T) {
	t.Run("search shows the accepted candidate", func(t *testing.T) {
		runner, output := newTestRunner(RunnerOpts{YouTube: newTarget()})
		if err := run(runner, "ytmusic", "search", "--artist", "The Beatles", "Yesterday"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "matched y1") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("search without a match", func(t *testing.T) {
		runner, output := newTestRunner(RunnerOpts{YouTube: newTarget()})
		if err := run(runner, "ytmusic", "search", "--artist", "Someone Else", "Yesterday"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "No exact match") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("search json", func(t *testing.T) {
		runner, output := newTestRunner(RunnerOpts{YouTube: newTarget()})
		if err := run(runner, "ytmusic", "search", "--json", "--artist", "The Beatles", "Yesterday"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"confidence_tier"`) {
			t.Errorf("expected match JSON, got %s", output.String())
		}
	})

	t.Run("create", func(t *testing.T) {
		target := newTarget()
		runner, output := newTestRunner(RunnerOpts{YouTube: target})
		if err := run(runner, "ytmusic", "create", "--privacy", "public", "Mix"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		pl, ok := target.Playlists["PL1"]
		if !ok || pl.Playlist.Name != "Mix" || !pl.Playlist.Public {
			t.Errorf("expected public Mix, got %+v", target.Playlists)
		}
		if !strings.Contains(output.String(), "ID: PL1") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("playlists", func(t *testing.T) {
		target := newTarget()
		target.AddPlaylist("yt1", "Mix")
		runner, output := newTestRunner(RunnerOpts{YouTube: target})
		if err := run(runner, "ytmusic", "playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Mix") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})
}

func TestProxyCommands(t *testing.T) {
	t.Run("auth status", func(t *testing.T) {
		api := proxy(t, map[string]string{"GET /health": `{"status":"ok","authenticated":true}`})
		runner, output := newTestRunner(RunnerOpts{API: api})
		runner.config.Credentials.YouTube.HeadersPath = ""

		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Status: ok") || !strings.Contains(out, "✓ Authenticated") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("auth status unhealthy", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		if err := run(runner, "auth", "status"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("auth login uploads headers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "browser.json")
		if err := shared.WriteBrowserFile(path, map[string]string{"cookie": "SAPISID=abc"}); err != nil {
			t.Fatal(err)
		}
		runner, output := newTestRunner(RunnerOpts{API: proxy(t, map[string]string{"POST /auth/upload": `{"ok":true}`})})

		if err := run(runner, "auth", "login", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Authentication successful") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("auth login rejects headers without cookie", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "browser.json")
		if err := os.WriteFile(path, []byte(`{"user-agent":"x"}`), 0600); err != nil {
			t.Fatal(err)
		}
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		if err := run(runner, "auth", "login", path); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("api get", func(t *testing.T) {
		api := proxy(t, map[string]string{"GET /api/library/playlists": `[{"title":"Mix"}]`})
		runner, output := newTestRunner(RunnerOpts{API: api})
		if err := run(runner, "api", "get", "/api/library/playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"title": "Mix"`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("api get error status", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		if err := run(runner, "api", "get", "/nope"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("api post rejects invalid JSON", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		if err := run(runner, "api", "post", "--data", "{bad", "/x"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner, _ := newTestRunner(RunnerOpts{})

		if err := run(runner, "setup", "config", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}

		if err := run(runner, "setup", "config", "--output", path); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument on overwrite, got %v", err)
		}
	})

	t.Run("youtube needs a curl command", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		if err := run(runner, "setup", "youtube"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("youtube rejects both inputs", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		err := run(runner, "setup", "youtube", "--curl", "curl https://music.youtube.com", "--curl-file", "x.sh")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("youtube writes browser headers", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "auth", "browser.json")
		api := proxy(t, map[string]string{"POST /api/setup/browser": `{"filepath":"browser.json"}`})
		runner, output := newTestRunner(RunnerOpts{API: api})

		curl := `curl 'https://music.youtube.com/youtubei/v1/browse' -H 'x-goog-authuser: 0' -b 'SAPISID=abc'`
		if err := run(runner, "setup", "youtube", "--curl", curl, "--output", out); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		headers, err := shared.ReadBrowserFile(out)
		if err != nil {
			t.Fatalf("expected readable browser.json, got %v", err)
		}
		if headers["cookie"] != "SAPISID=abc" || headers["x-goog-authuser"] != "0" {
			t.Errorf("unexpected headers %v", headers)
		}
		if !strings.Contains(output.String(), "configured successfully") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("youtube requires a signed-in cookie", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{API: proxy(t, nil)})
		err := run(runner, "setup", "youtube", "--curl", `curl 'https://music.youtube.com' -H 'x-goog-authuser: 0'`)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
