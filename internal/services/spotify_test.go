package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/s2yt/internal/shared"
)

func newTestSpotify(t *testing.T, server *httptest.Server) *SpotifyService {
	t.Helper()
	srv, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if server != nil {
		srv.baseURL = server.URL
	}
	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://localhost:9999/cb",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://localhost:9999/cb" {
				t.Errorf("expected redirect URI to be kept, got %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "test_client_secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{"client_id": "a", "client_secret": "b"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.config.RedirectURL != DefaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "test_client_id", "client_secret": "s"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "user-library-read"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "a", "client_secret": "b"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("Without Token", func(t *testing.T) {
			if _, err := srv.UserProfile(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("With Access Token", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "abc", "refresh_token": "def"})
			if err != nil {
				t.Fatalf("expected no error with access token, got %v", err)
			}
			if srv.Token().AccessToken != "abc" || srv.Token().RefreshToken != "def" {
				t.Errorf("unexpected token %+v", srv.Token())
			}
		})

		t.Run("Without Credentials", func(t *testing.T) {
			if err := srv.Authenticate(context.Background(), map[string]string{}); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("UserProfile", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer token" {
				t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
			}
			writeJSON(t, w, map[string]string{"id": "user1", "display_name": "Test User"})
		}))
		defer server.Close()

		user, err := newTestSpotify(t, server).UserProfile(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "user1" || user.DisplayName != "Test User" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("GetPlaylists follows next links", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("offset") == "" {
				next := fmt.Sprintf("%s/me/playlists?offset=1", server.URL)
				writeJSON(t, w, map[string]any{
					"items": []map[string]any{{"id": "p1", "name": "One", "public": true, "tracks": map[string]int{"total": 3}}},
					"next":  next,
				})
				return
			}
			writeJSON(t, w, map[string]any{
				"items": []map[string]any{{"id": "p2", "name": "Two", "tracks": map[string]int{"total": 1}}},
				"next":  nil,
			})
		}))
		defer server.Close()

		playlists, err := newTestSpotify(t, server).GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if playlists[0].ID != "p1" || playlists[0].TrackCount != 3 || !playlists[0].Public {
			t.Errorf("unexpected first playlist %+v", playlists[0])
		}
		if playlists[1].ID != "p2" {
			t.Errorf("unexpected second playlist %+v", playlists[1])
		}
	})

	t.Run("ExportPlaylist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/playlists/p1":
				writeJSON(t, w, map[string]string{"id": "p1", "name": "Road Trip", "description": "songs"})
			case "/playlists/p1/tracks":
				writeJSON(t, w, map[string]any{
					"items": []map[string]any{
						{"added_at": "2024-01-01T00:00:00Z", "track": map[string]any{
							"id":          "t1",
							"name":        "Yesterday",
							"duration_ms": 125000,
							"artists":     []map[string]string{{"name": "The Beatles"}},
							"album":       map[string]any{"name": "Help!"},
						}},
						{"added_at": "2024-01-02T00:00:00Z", "track": nil},
					},
				})
			case "/playlists/empty":
				writeJSON(t, w, map[string]string{"id": "empty", "name": "Empty"})
			case "/playlists/empty/tracks":
				writeJSON(t, w, map[string]any{"items": []any{}})
			default:
				w.WriteHeader(http.StatusNotFound)
				writeJSON(t, w, map[string]any{"error": map[string]any{"status": 404, "message": "Not found."}})
			}
		}))
		defer server.Close()

		srv := newTestSpotify(t, server)

		pl, err := srv.ExportPlaylist(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.Name != "Road Trip" || len(pl.Tracks) != 2 {
			t.Fatalf("unexpected playlist %+v", pl)
		}
		if pl.Tracks[1].Track != nil {
			t.Error("expected null track entry to be preserved as nil")
		}

		tracks, skipped := pl.SourceTracks(false)
		if skipped != 1 || len(tracks) != 1 {
			t.Fatalf("expected one track and one skipped entry, got %v and %d", tracks, skipped)
		}
		if tracks[0].Title != "Yesterday" || tracks[0].Artist != "The Beatles" || tracks[0].Duration != 125 {
			t.Errorf("unexpected source track %+v", tracks[0])
		}

		empty, err := srv.ExportPlaylist(context.Background(), "empty")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if empty.Tracks == nil || len(empty.Tracks) != 0 {
			t.Errorf("expected an empty, non-nil track list, got %#v", empty.Tracks)
		}

		if _, err := srv.ExportPlaylist(context.Background(), "missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if _, err := srv.ExportPlaylist(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Library", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/me/tracks":
				writeJSON(t, w, map[string]any{"items": []map[string]any{
					{"track": map[string]any{"id": "t1", "name": "Halo", "artists": []map[string]string{{"name": "Beyoncé"}}}},
				}})
			case "/me/albums":
				writeJSON(t, w, map[string]any{"items": []map[string]any{
					{"album": map[string]any{
						"id":      "a1",
						"name":    "Abbey Road",
						"artists": []map[string]string{{"name": "The Beatles"}},
						"tracks":  map[string]any{"items": []map[string]any{{"id": "t9", "name": "Something"}}},
					}},
				}})
			case "/me":
				w.WriteHeader(http.StatusUnauthorized)
				writeJSON(t, w, map[string]any{"error": map[string]any{"message": "The access token expired"}})
			}
		}))
		defer server.Close()

		srv := newTestSpotify(t, server)

		likes, err := srv.LikedTracks(context.Background())
		if err != nil || len(likes) != 1 || likes[0].Track.Name != "Halo" {
			t.Errorf("unexpected liked tracks %v, %v", likes, err)
		}

		albums, err := srv.SavedAlbums(context.Background())
		if err != nil || len(albums) != 1 {
			t.Fatalf("unexpected albums %v, %v", albums, err)
		}
		if albums[0].Album.Tracks == nil || len(albums[0].Album.Tracks.Items) != 1 {
			t.Errorf("expected album tracks to be decoded, got %+v", albums[0].Album)
		}

		_, err = srv.UserProfile(context.Background())
		var se *StatusError
		if !errors.Is(err, shared.ErrTokenExpired) || !errors.As(err, &se) || se.Detail != "The access token expired" {
			t.Errorf("expected expired token error with detail, got %v", err)
		}
	})
}
