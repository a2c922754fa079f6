// Package bridge exposes the browser-only Web Playback SDK to Go as a [playback.Player].
//
// The [Hub] serves a host page at /player that loads the SDK and opens a websocket back to
// /player/ws. SDK callbacks are relayed to Go as JSON messages and transport commands are sent
// to the page the same way:
//
//	page → go   ready{device_id} not_ready{device_id} player_state_changed{state}
//	            initialization_error{message} authentication_error{message} account_error{message}
//	            token_request{id}
//	go → page   connect{name,volume} disconnect toggle_play next_track previous_track seek{position_ms}
//	            token{id,token}
//
// The SDK asks for the token whenever it needs one; the hub answers from the [playback.TokenFunc]
// of the attached player. One page connection is served at a time: a later one replaces the earlier.
package bridge
