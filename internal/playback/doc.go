// Package playback owns the lifecycle of the embedded player connection.
//
// # States
//
//	Uninitialized ──Start──▶ Connecting ──ready──▶ Ready ◀──ready── NotReady
//	                                                 └──not_ready──▶─┘
//	any ──initialization_error | authentication_error | account_error──▶ Failed
//	Connecting | Ready | NotReady ──Stop──▶ Disconnected
//
// The [Coordinator] is the only writer of the mirrored [models.PlaybackState]. Each
// player_state_changed event replaces the mirror wholesale, or clears it when the event
// carries no state.
//
// Transport commands (toggle, next, previous, seek) reach the [Player] only while Ready with
// a known device id. Otherwise they return nil without touching the player.
//
// An authentication_error clears the credential, which forces a new login. Other failures keep it.
package playback
