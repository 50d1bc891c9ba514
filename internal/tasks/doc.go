// Package tasks orchestrates transfers from a Spotify snapshot to YouTube Music with real-time progress reporting.
//
// # Core Operations
//
// [Copier] holds a [services.Target] and the transfer options:
//
//  1. [Copier.Copy] : match and add a list of source tracks
//     - Searches candidates for each track (album lookup, then songs)
//     - Runs the [matcher] with the configured strategy, falling back to videos for approximate matching
//     - Adds each match to a playlist, or likes it, retrying with exponential backoff
//     - Records a per-track outcome; failures never abort the run
//
//  2. [Copier.CopyPlaylist], [Copier.CopyAll], [Copier.LoadLiked], [Copier.LoadLikedAlbums] :
//     snapshot-level transfers that resolve or create the destination playlist
//
//  3. [Copier.Diff] : compare a snapshot playlist with a YouTube Music playlist
//
// [Backup] builds a snapshot from a [services.Source] with a bounded worker pool.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
