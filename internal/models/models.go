package models

import "fmt"

// SourceTrack is a track read from the Spotify snapshot.
//
// Album and Duration are optional. Duration is in seconds, zero means unknown.
type SourceTrack struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration_seconds,omitempty"`
}

// String renders the track as "Title - Artist - Album" for logs.
func (t SourceTrack) String() string {
	album := t.Album
	if album == "" {
		album = "<Unknown>"
	}
	return fmt.Sprintf("%s - %s - %s", t.Title, t.Artist, album)
}

// CandidateTrack is a single search result from the target platform.
//
// TargetID is the platform's identifier (a YouTube video ID) and is the only value the
// orchestrator needs to add the track to a playlist.
type CandidateTrack struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration_seconds,omitempty"`
	TargetID string `json:"target_id"`
}

// ConfidenceTier labels the matching pass that accepted a candidate.
type ConfidenceTier int

const (
	TierNone ConfidenceTier = iota
	TierExact
	TierExtended
	TierApproximate
)

func (t ConfidenceTier) String() string {
	switch t {
	case TierExact:
		return "EXACT"
	case TierExtended:
		return "EXTENDED"
	case TierApproximate:
		return "APPROXIMATE"
	default:
		return "NONE"
	}
}

// MarshalText encodes the tier by name so reports stay readable.
func (t ConfidenceTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// MatchResult is the matcher's decision for one [SourceTrack].
//
// When Matched is true, TargetID is non-empty and was taken from the candidate list
// passed to the matcher. Issues collects non-fatal conditions seen while matching.
type MatchResult struct {
	Matched   bool            `json:"matched"`
	TargetID  string          `json:"target_id,omitempty"`
	Tier      ConfidenceTier  `json:"confidence_tier"`
	Candidate *CandidateTrack `json:"candidate,omitempty"`
	Issues    []error         `json:"-"`
}

// NoMatch returns an unmatched result carrying the given issues.
func NoMatch(issues ...error) MatchResult {
	return MatchResult{Tier: TierNone, Issues: issues}
}

// Playlist represents a music playlist from either service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// PlaylistExport is a target-side playlist together with its tracks.
type PlaylistExport struct {
	Playlist Playlist         `json:"playlist"`
	Tracks   []CandidateTrack `json:"tracks"`
}

// Contains reports whether the playlist holds a track with the given target ID.
func (p *PlaylistExport) Contains(targetID string) bool {
	for _, t := range p.Tracks {
		if t.TargetID == targetID {
			return true
		}
	}
	return false
}
