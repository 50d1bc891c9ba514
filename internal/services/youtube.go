// YouTube Music implementation of [Target]
//
// Communicates with a FastAPI proxy wrapping the ytmusicapi Python library.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/shared"
)

const (
	defaultYTBaseURL = "http://localhost:8080"
	albumLookupLimit = 3
)

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a song or video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"`
	SetVideoID  string          `json:"setVideoId,omitempty"`
}

// Candidate converts the result. album is used when the result names none.
func (t YouTubeTrack) Candidate(album string) models.CandidateTrack {
	c := models.CandidateTrack{
		Title:    t.Title,
		Album:    album,
		Duration: t.DurationSec,
		TargetID: t.VideoID,
	}
	if c.Duration == 0 {
		c.Duration = parseClock(t.Duration)
	}
	if len(t.Artists) > 0 {
		c.Artist = t.Artists[0].Name
	}
	if t.Album != nil && t.Album.Name != "" {
		c.Album = t.Album.Name
	}
	return c
}

// YouTubeAlbum is an album search result.
type YouTubeAlbum struct {
	BrowseID string          `json:"browseId"`
	Title    string          `json:"title"`
	Artists  []YouTubeArtist `json:"artists"`
	Year     string          `json:"year"`
}

type youtubePlaylist struct {
	ID          string         `json:"id"`
	PlaylistID  string         `json:"playlistId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Privacy     string         `json:"privacy"`
	TrackCount  int            `json:"trackCount"`
	Count       int            `json:"count"`
	Tracks      []YouTubeTrack `json:"tracks,omitempty"`
}

func (p youtubePlaylist) model() models.Playlist {
	pl := models.Playlist{
		ID:          p.ID,
		Name:        p.Title,
		Description: p.Description,
		TrackCount:  p.TrackCount,
		Public:      p.Privacy == shared.PrivacyPublic,
	}
	if pl.ID == "" {
		pl.ID = p.PlaylistID
	}
	if pl.TrackCount == 0 {
		pl.TrackCount = p.Count
	}
	return pl
}

// YouTubeService implements [Target] for YouTube Music via the proxy.
type YouTubeService struct {
	baseURL     string
	authFile    string
	albumLookup bool
	httpClient  *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance with album lookup enabled.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		albumLookup: true,
		httpClient:  http.DefaultClient,
	}
}

// SetAlbumLookup toggles the album search [YouTubeService.SearchCandidates] runs before the song search.
func (y *YouTubeService) SetAlbumLookup(enabled bool) {
	y.albumLookup = enabled
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file in credentials", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Service: "youtube music", Status: resp.StatusCode}
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			statusErr.Detail = errResp.Detail
		}
		return statusErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetPlaylists retrieves all library playlists.
//
// Calls GET /api/library/playlists on the proxy.
func (y *YouTubeService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var ytPlaylists []youtubePlaylist
	if err := y.doRequest(ctx, http.MethodGet, "/api/library/playlists", nil, &ytPlaylists); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(ytPlaylists))
	for i, ytp := range ytPlaylists {
		playlists[i] = ytp.model()
	}
	return playlists, nil
}

func (y *YouTubeService) playlist(ctx context.Context, playlistID string) (*youtubePlaylist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var ytPlaylist youtubePlaylist
	endpoint := "/api/playlists/" + url.PathEscape(playlistID)
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &ytPlaylist); err != nil {
		if se, ok := err.(*StatusError); ok && se.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}
	if ytPlaylist.ID == "" && ytPlaylist.PlaylistID == "" {
		ytPlaylist.ID = playlistID
	}
	return &ytPlaylist, nil
}

// GetPlaylist retrieves a playlist's metadata.
//
// Calls GET /api/playlists/{id} on the proxy.
func (y *YouTubeService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	p, err := y.playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	pl := p.model()
	return &pl, nil
}

// ExportPlaylist retrieves a playlist with its tracks as candidates.
func (y *YouTubeService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	p, err := y.playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.CandidateTrack, len(p.Tracks))
	for i, t := range p.Tracks {
		tracks[i] = t.Candidate("")
	}
	return &models.PlaylistExport{Playlist: p.model(), Tracks: tracks}, nil
}

// FindPlaylistByName looks up a library playlist by exact title.
func (y *YouTubeService) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, err := y.GetPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	for _, pl := range playlists {
		if pl.Name == name {
			return &pl, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

// CreatePlaylist creates an empty playlist.
//
// Calls POST /api/playlists on the proxy.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: playlist name cannot be empty", shared.ErrInvalidArgument)
	}
	privacy, err := shared.NormalizePrivacy(privacy)
	if err != nil {
		return "", err
	}

	req := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{title, description, privacy}

	var resp struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", req, &resp); err != nil {
		return "", err
	}
	if resp.PlaylistID == "" {
		return "", fmt.Errorf("%w: create playlist returned no id", shared.ErrAPIRequest)
	}
	return resp.PlaylistID, nil
}

// AddPlaylistItems appends videos to a playlist.
//
// Calls POST /api/playlists/{id}/items on the proxy. A response status other than
// STATUS_SUCCEEDED is treated as a failure.
func (y *YouTubeService) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error {
	if len(videoIDs) == 0 {
		return nil
	}

	req := struct {
		VideoIDs   []string `json:"video_ids"`
		Duplicates bool     `json:"duplicates"`
	}{VideoIDs: videoIDs}

	var resp struct {
		Status string `json:"status"`
	}
	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	if err := y.doRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return err
	}
	if resp.Status != "" && resp.Status != "STATUS_SUCCEEDED" {
		return fmt.Errorf("%w: add to playlist %s returned %s", shared.ErrAPIRequest, playlistID, resp.Status)
	}
	return nil
}

// RateSong rates a video.
//
// Calls POST /api/songs/{videoId}/rating on the proxy.
func (y *YouTubeService) RateSong(ctx context.Context, videoID string, rating Rating) error {
	req := struct {
		Rating Rating `json:"rating"`
	}{rating}
	endpoint := fmt.Sprintf("/api/songs/%s/rating", url.PathEscape(videoID))
	return y.doRequest(ctx, http.MethodPost, endpoint, req, nil)
}

// Search returns ranked song or video results.
//
// Calls GET /api/search?q={query}&filter={filter} on the proxy.
func (y *YouTubeService) Search(ctx context.Context, query string, filter SearchFilter) ([]models.CandidateTrack, error) {
	if filter == FilterAlbums {
		return nil, fmt.Errorf("%w: use SearchAlbums for album results", shared.ErrInvalidArgument)
	}

	var results []YouTubeTrack
	if err := y.doRequest(ctx, http.MethodGet, searchEndpoint(query, filter), nil, &results); err != nil {
		return nil, err
	}

	candidates := make([]models.CandidateTrack, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, r.Candidate(""))
	}
	return candidates, nil
}

// SearchAlbums returns ranked album results.
func (y *YouTubeService) SearchAlbums(ctx context.Context, query string) ([]YouTubeAlbum, error) {
	var results []YouTubeAlbum
	if err := y.doRequest(ctx, http.MethodGet, searchEndpoint(query, FilterAlbums), nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AlbumTracks returns the tracks of an album in album order.
//
// Calls GET /api/albums/{browseId} on the proxy.
func (y *YouTubeService) AlbumTracks(ctx context.Context, browseID string) ([]models.CandidateTrack, error) {
	var album struct {
		Title  string         `json:"title"`
		Tracks []YouTubeTrack `json:"tracks"`
	}
	if err := y.doRequest(ctx, http.MethodGet, "/api/albums/"+url.PathEscape(browseID), nil, &album); err != nil {
		return nil, err
	}

	tracks := make([]models.CandidateTrack, 0, len(album.Tracks))
	for _, t := range album.Tracks {
		tracks = append(tracks, t.Candidate(album.Title))
	}
	return tracks, nil
}

// SearchCandidates runs the album lookup, when enabled and the source names an album, followed by
// the song search.
//
// A failed album lookup is skipped. Only the song search can fail the call.
func (y *YouTubeService) SearchCandidates(ctx context.Context, source models.SourceTrack) ([]models.CandidateTrack, error) {
	var candidates []models.CandidateTrack

	if y.albumLookup && source.Album != "" {
		if albums, err := y.SearchAlbums(ctx, byQuery(source.Album, source.Artist)); err == nil {
			for i, a := range albums {
				if i == albumLookupLimit {
					break
				}
				tracks, err := y.AlbumTracks(ctx, a.BrowseID)
				if err != nil {
					continue
				}
				candidates = append(candidates, tracks...)
			}
		}
	}

	songs, err := y.Search(ctx, byQuery(source.Title, source.Artist), FilterSongs)
	if err != nil {
		return nil, err
	}
	return dedupe(append(candidates, songs...)), nil
}

// SearchVideos searches videos for "<title> by <artist>".
func (y *YouTubeService) SearchVideos(ctx context.Context, source models.SourceTrack) ([]models.CandidateTrack, error) {
	return y.Search(ctx, byQuery(source.Title, source.Artist), FilterVideos)
}

func searchEndpoint(query string, filter SearchFilter) string {
	v := url.Values{}
	v.Set("q", query)
	if filter != "" {
		v.Set("filter", string(filter))
	}
	return "/api/search?" + v.Encode()
}

func byQuery(name, artist string) string {
	if artist == "" {
		return name
	}
	return name + " by " + artist
}

func dedupe(cs []models.CandidateTrack) []models.CandidateTrack {
	seen := make(map[string]bool, len(cs))
	out := cs[:0]
	for _, c := range cs {
		if c.TargetID != "" {
			if seen[c.TargetID] {
				continue
			}
			seen[c.TargetID] = true
		}
		out = append(out, c)
	}
	return out
}

// parseClock parses "m:ss" or "h:mm:ss" into seconds, returning 0 when malformed.
func parseClock(s string) int {
	if s == "" {
		return 0
	}
	total := 0
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
