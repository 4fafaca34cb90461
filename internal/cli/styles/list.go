package styles

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PlayItem represents a playback history entry for the list.
type PlayItem struct {
	ID         int64
	URI        string
	Title      string
	PlayCount  int
	LastPlayed time.Time
}

// FilterValue implements list.Item.
func (i PlayItem) FilterValue() string {
	return i.Title + " " + i.URI
}

// TitleValue returns the display title, falling back to the URI.
func (i PlayItem) TitleValue() string {
	if i.Title != "" {
		return i.Title
	}
	return i.URI
}

// PlayDelegate renders playback history items with theme styling.
type PlayDelegate struct {
	Theme *Theme
}

// NewPlayDelegate creates a themed history list delegate.
func NewPlayDelegate(theme *Theme) PlayDelegate {
	return PlayDelegate{Theme: theme}
}

// Height returns the height of each item.
func (d PlayDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d PlayDelegate) Spacing() int {
	return 0
}

// Update handles item-level events.
func (d PlayDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders a single list item.
func (d PlayDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(PlayItem)
	if !ok {
		return
	}

	t := d.Theme
	isSelected := index == m.Index()
	const (
		maxTitleLength = 60
		maxURILength   = 50
		ellipsisLength = 3
	)

	title := pi.TitleValue()
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength-ellipsisLength] + "..."
	}

	uri := pi.URI
	if len(uri) > maxURILength {
		uri = uri[:maxURILength-ellipsisLength] + "..."
	}

	playBadge := t.PlayBadge(pi.PlayCount)
	timeBadge := t.TimeBadge(pi.LastPlayed)

	cursor := cursorEmpty
	if isSelected {
		cursor = cursorSelected
	}

	cursorStyle := t.Highlight
	titleStyle := t.ListItemTitle
	uriStyle := t.ListItemDesc

	if isSelected {
		titleStyle = titleStyle.Foreground(t.Accent).Bold(true)
		uriStyle = uriStyle.Foreground(t.Text)
	}

	line1 := lipgloss.JoinHorizontal(
		lipgloss.Left,
		cursorStyle.Render(cursor),
		titleStyle.Render(title),
	)

	meta := lipgloss.JoinHorizontal(
		lipgloss.Left,
		playBadge,
		" ",
		timeBadge,
	)

	line2 := lipgloss.JoinHorizontal(
		lipgloss.Left,
		strings.Repeat(" ", 3), // Indent under cursor
		uriStyle.Render(uri),
		" ",
		meta,
	)

	_, _ = fmt.Fprintf(w, "%s\n%s", line1, line2)
}

// NewPlayList creates a themed list for playback history items.
func NewPlayList(theme *Theme, items []PlayItem, width, height int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	delegate := NewPlayDelegate(theme)

	l := list.New(listItems, delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)

	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(theme.Muted)
	l.Styles.ActivePaginationDot = lipgloss.NewStyle().Foreground(theme.Accent)
	l.Styles.InactivePaginationDot = lipgloss.NewStyle().Foreground(theme.Muted)

	return l
}
