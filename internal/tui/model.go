// Package tui is a scrollable pager over rendered conversation messages.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/chatprint/internal/transcript"
)

// HistoryProvider supplies the rendered entries shown by the pager.
type HistoryProvider interface {
	ListAll() []transcript.Entry
	Senders() []string
}

type Model struct {
	width    int
	height   int
	keys     KeyMap
	ready    bool
	quitting bool

	title    string
	history  HistoryProvider
	filter   SenderFilter
	viewport viewport.Model
	shown    int
}

// NewModel creates a pager. Without a history provider it shows nothing.
func NewModel(opts ...ModelOption) Model {
	m := Model{
		keys:     DefaultKeyMap(),
		title:    "chatprint",
		viewport: viewport.New(0, 0),
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

type ModelOption func(*Model)

func WithHistory(h HistoryProvider) ModelOption {
	return func(m *Model) { m.history = h }
}

func WithTitle(title string) ModelOption {
	return func(m *Model) { m.title = title }
}

// WithSender starts the pager filtered to one sender.
func WithSender(name string) ModelOption {
	return func(m *Model) { m.filter = SenderFilter{Sender: name} }
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width, m.viewport.Height = viewportSize(msg.Width, msg.Height)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		if m.history != nil {
			m.filter = m.filter.Next(m.history.Senders())
		}
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.ClearFilter):
		m.filter = SenderFilter{}
		m.refresh()
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh rebuilds the viewport content from the history and filter.
func (m *Model) refresh() {
	var b strings.Builder
	m.shown = 0
	if m.history != nil {
		for _, e := range m.history.ListAll() {
			if !m.filter.Matches(e) {
				continue
			}
			b.WriteString(e.Output)
			m.shown++
		}
	}
	content := strings.TrimSuffix(b.String(), "\n")
	if m.shown == 0 {
		content = dimStyle.Render("No messages")
	}
	m.viewport.SetContent(content)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return renderHeader(m.title, m.filter, m.viewport.Width) + "\n" +
		m.viewport.View() + "\n" +
		renderStatusBar(m.filter, m.shown, m.viewport.ScrollPercent(), m.keys.ShortHelp())
}
