// Package models defines the domain types shared by the snapshot reader, the YouTube Music search client,
// the track matcher and the transfer orchestrator.
//
// The package contains two categories of types:
//
// 1. Matching types: the inputs and output of a single match
//   - [SourceTrack] : Track metadata read from the Spotify snapshot
//   - [CandidateTrack] : A search result returned by the target platform
//   - [MatchResult] : The matcher's decision for one source track
//   - [ConfidenceTier] : Which matching pass accepted the candidate
//
// 2. Playlist types: lightweight structs describing playlists on either service
//   - [Playlist] : Basic playlist metadata
//   - [PlaylistExport] : Playlist with its candidate track listing (target side)
//
// Nothing in this package is persisted beyond the JSON snapshot file.
package models
