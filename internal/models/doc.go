// Package models defines the catalog snapshots, playback mirror and persisted entities used by tunedeck.
//
// The package contains two categories of types:
//
// 1. Remote snapshots: immutable values decoded from the streaming service
//   - [Track] : a playable track with artists, album artwork and URI
//   - [Playlist] : a playlist with markup description and track count
//   - [PlaybackState] : the last state pushed by the embedded player
//
// 2. Persistent Entities: database-backed models
//   - [PlayRecord] : one entry in the local play history
//
// Persistent entities implement the [Model] interface; [Repository] defines the storage operations over them.
package models
