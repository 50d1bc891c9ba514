package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/desertthunder/s2yt/internal/snapshot"
)

// Service is the part every music provider implements.
type Service interface {
	// Authenticate performs OAuth or header-file authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// Name returns the name of the service (e.g., "Spotify", "YouTube Music")
	Name() string
}

// Source is a provider playlists are backed up from.
type Source interface {
	Service

	// ExportPlaylist returns a playlist with every entry, in playlist order.
	ExportPlaylist(ctx context.Context, playlistID string) (*snapshot.Playlist, error)

	// LikedTracks returns the user's saved tracks, newest first.
	LikedTracks(ctx context.Context) ([]snapshot.Item, error)

	// SavedAlbums returns the albums in the user's library.
	SavedAlbums(ctx context.Context) ([]snapshot.SavedAlbum, error)
}

// Target is a provider tracks are transferred to.
type Target interface {
	Service

	// Search returns ranked results for a free-text query.
	Search(ctx context.Context, query string, filter SearchFilter) ([]models.CandidateTrack, error)

	// SearchCandidates builds the candidate list for a source track.
	SearchCandidates(ctx context.Context, source models.SourceTrack) ([]models.CandidateTrack, error)

	// SearchVideos searches videos for a source track, the last resort of approximate matching.
	SearchVideos(ctx context.Context, source models.SourceTrack) ([]models.CandidateTrack, error)

	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// FindPlaylistByName returns the first library playlist titled name, or [shared.ErrPlaylistNotFound].
	FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error)

	// CreatePlaylist creates an empty playlist and returns its ID.
	CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error)

	// AddPlaylistItems appends videos to a playlist, skipping ones already present.
	AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error

	// RateSong sets the user's rating of a video. [RatingLike] adds it to liked music.
	RateSong(ctx context.Context, videoID string, rating Rating) error
}

// SearchFilter narrows a search to one result type.
type SearchFilter string

const (
	FilterSongs  SearchFilter = "songs"
	FilterVideos SearchFilter = "videos"
	FilterAlbums SearchFilter = "albums"
)

// Rating is a YouTube Music like status.
type Rating string

const (
	RatingLike        Rating = "LIKE"
	RatingDislike     Rating = "DISLIKE"
	RatingIndifferent Rating = "INDIFFERENT"
)

// StatusError is returned for non-2xx responses. It wraps [shared.ErrAPIRequest].
type StatusError struct {
	Service string
	Status  int
	Detail  string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s API error: status %d", e.Service, e.Status)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
