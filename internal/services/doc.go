// Package services implements the bearer-authenticated Spotify Web API client.
//
// # Client
//
// [Client] issues one HTTP request per operation with an Authorization: Bearer header read from a
// [TokenSource] at call time. There is no retry, backoff or cache: a failed call surfaces to the caller.
//
// # Errors
//
//   - [shared.ErrNotAuthenticated] : no credential is stored, no request was sent
//   - [*HTTPError] : non-2xx response, wraps [shared.ErrAPIRequest]
//
// # Profile
//
// [Client.CurrentUser] goes through the zmb3/spotify client, authenticated with the same credential
// via an oauth2 token source.
package services
