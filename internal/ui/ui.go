package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/s2yt/internal/models"
	"github.com/desertthunder/s2yt/internal/services"
	"github.com/desertthunder/s2yt/internal/snapshot"
	"github.com/desertthunder/s2yt/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	TransferView
	ResultView
)

// maxListedFailures caps the failed tracks listed in the result view.
const maxListedFailures = 10

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	snap         *snapshot.Snapshot
	target       services.Target
	opts         tasks.CopyOpts
	logger       *log.Logger
	dryRun       bool
	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	selected     models.Playlist
	tracks       []models.SourceTrack
	skipped      int
	progressChan <-chan tasks.ProgressUpdate
	done         <-chan transferComplete
	progress     tasks.ProgressUpdate
	spinner      spinner.Model
	result       *tasks.CopyResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI over the playlists of snap. Transfers run against target with opts; the confirm view can
// toggle opts.DryRun.
func NewModel(ctx context.Context, snap *snapshot.Snapshot, target services.Target, opts tasks.CopyOpts, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(ctx)

	playlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Spotify Snapshot"
	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:          ctx,
		cancel:       cancel,
		view:         PlaylistListView,
		snap:         snap,
		target:       target,
		opts:         opts,
		logger:       logger,
		dryRun:       opts.DryRun,
		playlistList: playlists,
		trackList:    tracks,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init loads the playlist summaries from the snapshot.
func (m *Model) Init() tea.Cmd {
	return m.loadPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case spinner.TickMsg:
		if m.view != TransferView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TransferView:
			return m.handleTransferKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsLoaded:
		data := msg.data.(playlistsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		return m, m.playlistList.SetItems(items)

	case MsgTracksLoaded:
		data := msg.data.(tracksLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.tracks = data.tracks
		m.skipped = data.skipped
		items := make([]list.Item, len(data.tracks))
		for i, t := range data.tracks {
			items[i] = trackItem{track: t}
		}
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", m.selected.Name)
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, m.trackList.SetItems(items)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.wait()

	case MsgTransferComplete:
		data := msg.data.(transferComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan, m.done = nil, nil
		m.view = ResultView
		if m.result != nil {
			m.logger.Info("transfer finished", "playlist", m.selected.Name, "summary", m.result.Summary())
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.selected = pl.playlist
			return m, m.loadTracks(pl.playlist.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.dryRun):
		m.dryRun = !m.dryRun
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
	case key.Matches(msg, m.keys.yes):
		m.view = TransferView
		return m, tea.Batch(m.spinner.Tick, m.startTransfer())
	}
	return m, nil
}

// handleTransferKeys only honors quit, which cancels the running transfer.
func (m *Model) handleTransferKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = models.Playlist{}
		m.tracks = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadPlaylists() tea.Cmd {
	snap := m.snap
	return func() tea.Msg {
		if snap == nil {
			return playlistsLoadedMsg(nil, fmt.Errorf("no snapshot loaded"))
		}
		return playlistsLoadedMsg(snap.Summaries(), nil)
	}
}

func (m *Model) loadTracks(playlistID string) tea.Cmd {
	snap, reverse := m.snap, m.opts.Reverse
	return func() tea.Msg {
		pl, err := snap.Find(playlistID)
		if err != nil {
			return tracksLoadedMsg(playlistID, nil, 0, err)
		}
		tracks, skipped := pl.SourceTracks(reverse)
		return tracksLoadedMsg(playlistID, tracks, skipped, nil)
	}
}

// startTransfer runs the copy in its own goroutine. Liked songs are liked; any other playlist is copied into a new
// playlist of the same name.
func (m *Model) startTransfer() tea.Cmd {
	opts := m.opts
	opts.DryRun = m.dryRun
	copier := tasks.NewCopier(m.target, opts, m.logger)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan transferComplete, 1)
	m.progressChan, m.done = progress, done
	m.progress = tasks.ProgressUpdate{}

	ctx, snap, selected := m.ctx, m.snap, m.selected
	go func() {
		defer close(progress)

		var result *tasks.CopyResult
		var err error
		if selected.Name == snapshot.LikedSongsName {
			result, err = copier.LoadLiked(ctx, progress, snap)
		} else {
			result, err = copier.CopyPlaylist(ctx, progress, snap, selected.ID, "")
		}
		done <- transferComplete{result: result, err: err}
	}()

	return m.wait()
}

// wait returns the next progress update, or the transfer result once the progress channel closes.
func (m *Model) wait() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil || done == nil {
			return transferCompleteMsg(nil, fmt.Errorf("no transfer running"))
		}
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		out := <-done
		return transferCompleteMsg(out.result, out.err)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTrackList() string {
	transferKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "transfer"))
	helpKeys := []key.Binding{transferKey, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) destination() string {
	if m.selected.Name == snapshot.LikedSongsName {
		return "liked songs on YouTube Music"
	}
	return fmt.Sprintf("new YouTube Music playlist '%s'", m.selected.Name)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Transfer '%s' to YouTube Music?", m.selected.Name))

	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\n", m.destination())
	fmt.Fprintf(&b, "Tracks: %d\n", len(m.tracks))
	if m.skipped > 0 {
		fmt.Fprintf(&b, "Skipped entries: %d\n", m.skipped)
	}
	fmt.Fprintf(&b, "Strategy: %s\n", m.opts.Strategy)
	if m.dryRun {
		b.WriteString(styles.warn.Render("Dry run: matches are reported, nothing is added") + "\n")
	} else {
		b.WriteString("Dry run: off\n")
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.dryRun}
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render(fmt.Sprintf("Transferring '%s'", m.selected.Name))

	phase := m.progress.Phase.String()
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", phase, m.progress.Step, m.progress.Total)
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s\n\n%s", title, m.spinner.View(), phase, m.progress.Message,
		m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Transfer failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Transfer stopped: %v", m.err)))
	case m.result.DryRun:
		b.WriteString(styles.ok.Render("✓ Dry run complete"))
	default:
		b.WriteString(styles.ok.Render("✓ Transfer complete"))
	}
	fmt.Fprintf(&b, "\n\n%s\n", m.result.Summary())
	if m.result.PlaylistName != "" {
		fmt.Fprintf(&b, "Destination: %s\n", m.result.PlaylistName)
	}

	listed := 0
	for _, o := range m.result.Outcomes {
		if o.Status != tasks.StatusNotFound && o.Status != tasks.StatusFailed {
			continue
		}
		if listed == 0 {
			b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("%d tracks were not transferred:", m.result.Errors())) + "\n")
		}
		if listed == maxListedFailures {
			fmt.Fprintf(&b, "  … and %d more\n", m.result.Errors()-listed)
			break
		}
		fmt.Fprintf(&b, "  • %s %s\n", o.Source, statusStyle(o.Status.String()).Render("["+o.Status.String()+"]"))
		listed++
	}

	if len(m.result.Missing) > 0 {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("%d acknowledged tracks missing after verify", len(m.result.Missing))) + "\n")
	}

	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
