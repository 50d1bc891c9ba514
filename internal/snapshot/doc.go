// Package snapshot reads and writes the local playlists.json backup of a Spotify library.
//
// The file layout is the one produced by the Spotify backup command:
//
//	{
//	  "playlists": [{"id": "...", "name": "...", "tracks": [{"track": {...}}]}],
//	  "albums":    [{"album": {"name": "...", "tracks": {"items": [...]}}}]
//	}
//
// Liked songs are stored as a regular playlist named [LikedSongsName].
package snapshot
