// Package tui is the interactive terminal front end: a transcript, an input
// line and a sidebar of past chats.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
)

type focus int

const (
	focusInput focus = iota
	focusSessions
	focusSearch
)

type (
	startedMsg  struct{ sessionID string }
	selectedMsg struct{ sessionID string }
	sessionsMsg struct{ sessions []internal.SessionSummary }
	sendDoneMsg struct {
		result internal.SendResult
		err    error
	}
	deletedMsg struct {
		sessionID string
		ok        bool
	}
)

// Model is the bubbletea model. Every network call runs as a tea.Cmd
// through the internal.Chat facade; the model only mirrors its state.
type Model struct {
	ctx  context.Context
	chat *internal.Chat
	now  func() time.Time

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *transcriptRenderer

	width, height int
	ready         bool

	focus        focus
	showSessions bool
	sessions     []internal.SessionSummary
	query        string
	cursor       int
	confirming   string

	// started is set once the persisted session is active; sends wait for it
	started     bool
	sending     bool
	renderedLen int
}

// New creates a Model over chat
func New(ctx context.Context, chat *internal.Chat) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = thinkingStyle

	return Model{
		ctx:      ctx,
		chat:     chat,
		now:      time.Now,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		renderer: newTranscriptRenderer(80),
	}
}

// Run starts the program and blocks until the user quits
func Run(ctx context.Context, chat *internal.Chat) error {
	p := tea.NewProgram(New(ctx, chat), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), textinput.Blink, m.spinner.Tick)
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{sessionID: m.chat.Start(m.ctx)}
	}
}

func (m Model) loadSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		return sessionsMsg{sessions: m.chat.ListSessions(m.ctx)}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.chat.Send(m.ctx, text)
		return sendDoneMsg{result: result, err: err}
	}
}

func (m Model) selectCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		m.chat.Select(m.ctx, sessionID)
		return selectedMsg{sessionID: sessionID}
	}
}

func (m Model) newChatCmd() tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{sessionID: m.chat.NewConversation(m.ctx)}
	}
}

func (m Model) deleteCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{sessionID: sessionID, ok: m.chat.DeleteSession(m.ctx, sessionID)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startedMsg:
		internal.LogDebug("Active session: %s", msg.sessionID)
		m.started = true
		m.refresh(true)
		return m, m.loadSessionsCmd()

	case selectedMsg:
		m.focus = focusInput
		m.input.Focus()
		m.refresh(true)
		return m, m.loadSessionsCmd()

	case sessionsMsg:
		m.sessions = msg.sessions
		m.clampCursor()
		return m, nil

	case sendDoneMsg:
		m.sending = false
		if m.focus == focusInput {
			m.input.Focus()
		}
		if msg.err != nil {
			internal.LogDebug("Send rejected: %v", msg.err)
		}
		m.refresh(true)
		return m, tea.Batch(m.loadSessionsCmd(), textinput.Blink)

	case deletedMsg:
		if msg.ok {
			m.sessions = internal.RemoveSession(m.sessions, msg.sessionID)
			m.clampCursor()
			m.refresh(true)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(false)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	if m.confirming != "" {
		switch {
		case key.Matches(msg, keys.Confirm):
			id := m.confirming
			m.confirming = ""
			return m, m.deleteCmd(id)
		case key.Matches(msg, keys.Cancel):
			m.confirming = ""
		}
		return m, nil
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusSessions:
		return m.handleSessionsKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.NewChat):
		return m, m.newChatCmd()

	case key.Matches(msg, keys.ToggleSessions):
		m.showSessions = true
		m.focus = focusSessions
		m.input.Blur()
		m.resize(m.width, m.height)
		return m, m.loadSessionsCmd()

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.sending || !m.started {
			return m, nil
		}
		m.sending = true
		m.input.Reset()
		m.input.Blur()
		m.refresh(true)
		return m, m.sendCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleSessions()

	switch {
	case key.Matches(msg, keys.ToggleSessions):
		m.showSessions = false
		m.focusInput()
		m.resize(m.width, m.height)
	case msg.Type == tea.KeyEsc:
		m.focusInput()
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Select):
		if len(visible) > 0 {
			return m, m.selectCmd(visible[m.cursor].ID)
		}
	case key.Matches(msg, keys.Delete):
		if len(visible) > 0 {
			m.confirming = visible[m.cursor].ID
		}
	case key.Matches(msg, keys.Search):
		m.focus = focusSearch
	case key.Matches(msg, keys.Refresh):
		return m, m.loadSessionsCmd()
	case key.Matches(msg, keys.NewChat):
		return m, m.newChatCmd()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.query = ""
		m.focus = focusSessions
	case tea.KeyEnter:
		m.focus = focusSessions
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	}
	m.clampCursor()
	return m, nil
}

func (m *Model) focusInput() {
	m.focus = focusInput
	if !m.sending {
		m.input.Focus()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	transcriptWidth := width
	if m.showSessions {
		transcriptWidth -= sidebarWidth + 2
	}
	transcriptWidth = max(transcriptWidth, 20)

	m.viewport.Width = transcriptWidth
	m.viewport.Height = max(m.bodyHeight(), 1)
	m.input.Width = max(width-4, 10)

	if m.renderer == nil || m.renderer.width != transcriptWidth {
		m.renderer = newTranscriptRenderer(transcriptWidth)
	}
	m.refresh(true)
}

// header, input and help line
func (m Model) bodyHeight() int {
	return m.height - 3
}

// refresh re-renders the transcript. Without force it only does work while a
// send is outstanding or the log has grown.
func (m *Model) refresh(force bool) {
	messages := m.chat.Messages()
	busy := m.sending || m.chat.Busy()
	if !force && !busy && len(messages) == m.renderedLen {
		return
	}
	m.viewport.SetContent(m.renderer.render(messages, busy, m.spinner.View()))
	if force || len(messages) != m.renderedLen {
		m.viewport.GotoBottom()
	}
	m.renderedLen = len(messages)
}

func (m Model) visibleSessions() []internal.SessionSummary {
	return internal.FilterSessions(m.sessions, m.query)
}

func (m *Model) clampCursor() {
	n := len(m.visibleSessions())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	body := m.viewport.View()
	if m.showSessions {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.input.View(),
		helpStyle.Render(m.helpView()),
	)
}

func (m Model) headerView() string {
	tag := "no active chat"
	if id, ok := m.chat.ActiveSession(); ok {
		tag = id
	}
	return headerStyle.Render("chat-session") + sessionTagStyle.Render(tag)
}

func (m Model) sidebarView() string {
	visible := m.visibleSessions()
	active, _ := m.chat.ActiveSession()

	lines := []string{sidebarTitleStyle.Render(fmt.Sprintf("%d chat(s)", len(visible)))}
	if m.focus == focusSearch || m.query != "" {
		lines = append(lines, "/ "+m.query)
	}
	if m.confirming != "" {
		lines = append(lines, confirmStyle.Render("Delete this chat? y/n"))
	}

	rows := max(m.bodyHeight()-len(lines), 1)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	now := m.now()
	for i := start; i < len(visible) && i < start+rows; i++ {
		s := visible[i]
		marker := " "
		if s.ID == active {
			marker = sidebarActiveMarker
		}
		label := truncate(s.ID, sidebarWidth-14)
		style := sidebarItemStyle
		if i == m.cursor && m.focus != focusInput {
			style = sidebarCursorStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", marker, style.Render(label), sidebarTimeStyle.Render(internal.FormatRelative(s.UpdatedAt, now))))
	}

	return sidebarStyle.Width(sidebarWidth).Height(max(m.bodyHeight(), 1)).Render(strings.Join(lines, "\n"))
}

func (m Model) helpView() string {
	switch {
	case m.confirming != "":
		return helpLine(keys.Confirm, keys.Cancel)
	case m.focus == focusSearch:
		return "type to filter • enter done • esc clear"
	case m.focus == focusSessions:
		return helpLine(keys.Up, keys.Down, keys.Select, keys.Delete, keys.Search, keys.NewChat, keys.ToggleSessions)
	case m.sending:
		return "Thinking… • " + helpLine(keys.ToggleSessions, keys.Quit)
	}
	return helpLine(keys.Send, keys.NewChat, keys.ToggleSessions, keys.PageUp, keys.Quit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
