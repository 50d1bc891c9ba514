// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks one snapshot playlist through a transfer:
//  1. [PlaylistListView] : Browse the playlists of the loaded Spotify snapshot
//  2. [TrackListView] : Preview the tracks in the order they will be added
//  3. [ConfirmView] : Confirm the transfer, toggling dry run with d
//  4. [TransferView] : Follow progress updates from the copier
//  5. [ResultView] : Summary and the tracks that were not transferred
//
// The [Model] implements bubbletea's Init/Update/View pattern, receiving its own events as the [Msg] union type.
// Progress updates flow through a channel from the copier, which never blocks on a slow reader.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
