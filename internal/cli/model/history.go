// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/lumiere/internal/cli/styles"
	"github.com/bnema/lumiere/internal/history"
	"github.com/bnema/lumiere/internal/logging"
)

// HistoryModel is the Bubble Tea model for the interactive playback history
// browser.
type HistoryModel struct {
	list    list.Model
	help    help.Model
	keys    styles.HistoryKeyMap
	confirm *styles.ConfirmModel

	entries  []history.Entry
	selected string
	showHelp bool
	width    int
	height   int
	err      error

	ctx   context.Context
	store *history.Store
	theme *styles.Theme
	max   int
}

// NewHistoryModel creates a new history browser model.
func NewHistoryModel(ctx context.Context, theme *styles.Theme, store *history.Store, maxEntries int) HistoryModel {
	return HistoryModel{
		help:   styles.NewStyledHelp(theme),
		keys:   styles.DefaultHistoryKeyMap(),
		ctx:    ctx,
		store:  store,
		theme:  theme,
		max:    maxEntries,
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return m.loadHistory
}

// historyLoadedMsg is sent when history entries are loaded.
type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

// historyDeletedMsg is sent when an entry is deleted.
type historyDeletedMsg struct {
	err error
}

// historyClearedMsg is sent when all history is cleared.
type historyClearedMsg struct {
	deleted int64
	err     error
}

// loadHistory loads recent playback entries.
func (m HistoryModel) loadHistory() tea.Msg {
	log := logging.FromContext(m.ctx)

	entries, err := m.store.Recent(m.ctx, m.max)
	if err != nil {
		log.Error().Err(err).Msg("failed to load playback history")
		return historyLoadedMsg{err: err}
	}

	log.Debug().Int("count", len(entries)).Msg("loaded playback history")
	return historyLoadedMsg{entries: entries}
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.handleConfirmModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateList()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.entries = msg.entries
		m.updateList()
		return m, nil

	case historyDeletedMsg, historyClearedMsg:
		return m, m.loadHistory
	}

	return m, nil
}

func (m HistoryModel) handleConfirmModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	confirm, cmd := m.confirm.Update(msg)
	m.confirm = &confirm
	if m.confirm.Done() {
		if m.confirm.Result() {
			cmd = m.clearAll()
		}
		m.confirm = nil
	}
	return m, cmd
}

func (m HistoryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if item, ok := m.list.SelectedItem().(styles.PlayItem); ok {
			m.selected = item.URI
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteCurrentEntry()

	case key.Matches(msg, m.keys.Clear):
		confirm := styles.NewConfirm(m.theme, "Clear all playback history?")
		m.confirm = &confirm
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateList rebuilds the list from the loaded entries.
func (m *HistoryModel) updateList() {
	items := make([]styles.PlayItem, len(m.entries))
	for i, e := range m.entries {
		items[i] = styles.PlayItem{
			ID:         e.ID,
			URI:        e.URI,
			Title:      e.Title,
			PlayCount:  int(e.PlayCount),
			LastPlayed: e.LastPlayedAt,
		}
	}

	listHeight := m.height - 6 // Account for header and help
	if listHeight < 5 {
		listHeight = 5
	}

	m.list = styles.NewPlayList(m.theme, items, m.width, listHeight)
}

// deleteCurrentEntry deletes the currently selected entry.
func (m HistoryModel) deleteCurrentEntry() tea.Cmd {
	return func() tea.Msg {
		if item, ok := m.list.SelectedItem().(styles.PlayItem); ok {
			log := logging.FromContext(m.ctx)
			log.Debug().Int64("id", item.ID).Str("uri", item.URI).Msg("deleting history entry")
			return historyDeletedMsg{err: m.store.Remove(m.ctx, item.ID)}
		}
		return historyDeletedMsg{}
	}
}

// clearAll removes every history entry.
func (m HistoryModel) clearAll() tea.Cmd {
	return func() tea.Msg {
		log := logging.FromContext(m.ctx)
		n, err := m.store.Clear(m.ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to clear history")
		} else {
			log.Info().Int64("deleted", n).Msg("cleared playback history")
		}
		return historyClearedMsg{deleted: n, err: err}
	}
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.confirm != nil {
		return m.confirm.View()
	}

	t := m.theme

	header := lipgloss.JoinHorizontal(
		lipgloss.Center,
		t.Title.Render("Playback History"),
		" ",
		t.MutedBadge(countLabel(len(m.entries))),
	)

	listView := m.list.View()
	if m.err != nil {
		listView = t.ErrorStyle.Render("Error: " + m.err.Error())
	}

	var helpView string
	if m.showHelp {
		helpView = m.help.View(m.keys)
	} else {
		helpView = t.Subtle.Render("enter to print uri • ? for help • q to quit")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		listView,
		"",
		helpView,
	)
}

// SelectedURI returns the URI picked with enter, or empty when the browser
// was quit without a selection.
func (m HistoryModel) SelectedURI() string {
	return m.selected
}

func countLabel(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return strconv.Itoa(n) + " entries"
}

// HistoryListModel is a simpler non-interactive model for JSON output.
type HistoryListModel struct {
	entries []history.Entry
	max     int
	err     error

	ctx   context.Context
	store *history.Store
}

// NewHistoryListModel creates a model for list output.
func NewHistoryListModel(ctx context.Context, store *history.Store, maxEntries int) HistoryListModel {
	return HistoryListModel{
		ctx:   ctx,
		store: store,
		max:   maxEntries,
	}
}

// Init implements tea.Model.
func (m HistoryListModel) Init() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.store.Recent(m.ctx, m.max)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		return historyLoadedMsg{entries: entries}
	}
}

// Update implements tea.Model.
func (m HistoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.entries = msg.entries
		}
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m HistoryListModel) View() string {
	return "" // Output handled externally
}

// Entries returns the loaded entries.
func (m HistoryListModel) Entries() []history.Entry {
	return m.entries
}

// Error returns any error that occurred.
func (m HistoryListModel) Error() error {
	return m.err
}

// Ensure interface compliance at compile time.
var _ tea.Model = (*HistoryModel)(nil)
var _ tea.Model = (*HistoryListModel)(nil)
