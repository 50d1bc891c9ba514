package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsLoaded MsgKind = iota
	MsgTracksLoaded
	MsgProgressUpdate
	MsgTransferComplete
)

type playlistsLoaded struct {
	playlists []models.Playlist
	err       error
}

type tracksLoaded struct {
	id      string
	tracks  []models.SourceTrack
	skipped int
	err     error
}

type transferComplete struct {
	result *tasks.CopyResult
	err    error
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: playlistsLoaded{playlists, err}}
}

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(id string, tracks []models.SourceTrack, skipped int, err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: tracksLoaded{id, tracks, skipped, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// transferCompleteMsg is the constructor for [MsgTransferComplete]
func transferCompleteMsg(result *tasks.CopyResult, err error) Msg {
	return Msg{kind: MsgTransferComplete, data: transferComplete{result, err}}
}
