// Package server runs the local redirect endpoint for Spotify's authorization code flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the two middlewares the callback server installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, hands the authorization code to an [Exchanger]
// (the Spotify client's code exchange), and sends the result through a channel.
//
// It only processes one callback; later requests are rejected.
//
// # Usage
//
// `s2yt spotify auth` and `s2yt spotify backup` listen on the configured host and port (127.0.0.1:3000 by default),
// open the browser on the authorization URL, and call [AwaitCallback] until the redirect arrives or the timeout passes.
package server
