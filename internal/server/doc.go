// Package server provides the local HTTP server used for login and for hosting the embedded player.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Login Callback
//
// [CallbackHandler] completes the implicit grant flow. The provider redirects to /callback with the
// token in the URL fragment, which never reaches the server. The callback page posts the fragment to
// /callback/token and strips it from the address bar. The handler captures the token into the session
// store and reports the result through a channel.
//
// # Player Host
//
// The player bridge registers its host page and websocket as a [Handler] on the same router, so the
// login redirect and the SDK page share one origin.
package server
