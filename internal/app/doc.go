// Package app is the composition root of the player.
//
// [Controller] owns no global state: the credential, API client, coordinator and play history are
// constructed once by the caller and passed in. Views issue intents (search, select track, select
// playlist, add to library, transport) and the controller dispatches them to the API client or
// the playback coordinator.
//
// Searches carry a generation number. A result whose generation is not the latest issued one is
// stale and [Controller.Accept] rejects it, so an earlier slow search can never overwrite a later one.
package app
