// Package services talks to the two music providers.
//
// # Interfaces
//
// [Service] is shared by both providers. [Source] is what a backup reads from and [Target] is
// what a transfer writes to; the transfer code depends only on these interfaces.
//
// # Spotify
//
// [SpotifyService] implements [Source] over the Spotify Web API using OAuth2. Paged endpoints
// are followed until the "next" link is empty. Items decode straight into [snapshot] types
// since playlists.json mirrors the Web API shapes.
//
// # YouTube Music
//
// [YouTubeService] implements [Target] by calling an HTTP proxy wrapping ytmusicapi. The
// browser.json path is sent via the X-Auth-File header on each request.
//
// Candidate lists for a source track are built album-first: the top three albums found for
// "<album> by <artist>" contribute their tracks ahead of the song results for
// "<title> by <artist>". Duplicates are dropped, keeping the first occurrence.
//
// # Errors
//
// Non-2xx responses are returned as [*StatusError], which unwraps to
//   - [shared.ErrTokenExpired] : 401
//   - [shared.ErrServiceUnavailable] : 502 and 503
//   - [shared.ErrAPIRequest] : anything else
//
// Calls made before Authenticate fail with [shared.ErrNotAuthenticated].
package services
