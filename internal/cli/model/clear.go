package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/lumiere/internal/cli/styles"
	"github.com/bnema/lumiere/internal/history"
	"github.com/bnema/lumiere/internal/logging"
)

// ClearModel runs the clear-history confirmation flow. The outcome is read
// through accessors after the program exits.
type ClearModel struct {
	confirm   styles.ConfirmModel
	confirmed bool
	deleted   int64
	err       error

	ctx   context.Context
	store *history.Store
}

// NewClearModel creates the confirmation flow for clearing all history.
func NewClearModel(ctx context.Context, theme *styles.Theme, store *history.Store) ClearModel {
	return ClearModel{
		confirm: styles.NewConfirm(theme, "Clear all playback history?"),
		ctx:     ctx,
		store:   store,
	}
}

// Init implements tea.Model.
func (m ClearModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ClearModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(historyClearedMsg); ok {
		m.deleted = msg.deleted
		m.err = msg.err
		return m, tea.Quit
	}

	if !m.confirm.Done() {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		if !m.confirm.Done() {
			return m, cmd
		}
		if !m.confirm.Result() {
			return m, tea.Quit
		}
		m.confirmed = true
		return m, m.clear
	}

	return m, nil
}

func (m ClearModel) clear() tea.Msg {
	log := logging.FromContext(m.ctx)

	n, err := m.store.Clear(m.ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to clear history")
		return historyClearedMsg{err: err}
	}
	return historyClearedMsg{deleted: n}
}

// View implements tea.Model.
func (m ClearModel) View() string {
	if m.confirm.Done() {
		return ""
	}
	return m.confirm.View()
}

// Confirmed reports whether the user answered yes.
func (m ClearModel) Confirmed() bool {
	return m.confirmed
}

// Deleted returns how many entries were removed.
func (m ClearModel) Deleted() int64 {
	return m.deleted
}

// Err returns the clear error, if any.
func (m ClearModel) Err() error {
	return m.err
}

var _ tea.Model = (*ClearModel)(nil)
