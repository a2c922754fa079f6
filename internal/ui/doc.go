// Package ui implements the interactive terminal player using bubbletea's Elm architecture.
//
// The [Model] routes between a login view and four top-level views:
//  1. [Home] : featured playlists ([All]) or music categories ([Music])
//  2. [Search] : track search with add-to-library
//  3. [Library] : locally recorded play history
//  4. [Create] : placeholder
//
// A now-playing bar sits under every view and a full-screen player can be toggled.
// Player notifications flow from the coordinator through a channel that a [tea.Cmd] waits on,
// so state pushed by the embedded player re-renders without polling. A one second tick advances
// the progress estimate between pushes and notices login or logout.
//
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui
