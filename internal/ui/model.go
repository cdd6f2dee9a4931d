package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type displayRole int

const (
	roleUser displayRole = iota
	roleAssistant
	roleNotice
)

type displayMessage struct {
	role    displayRole
	content string
}

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

// model implements tea.Model over the UI's channels.
type model struct {
	ui       *UI
	renderer Renderer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	messages    []displayMessage
	width       int
	height      int
	canSubmit   bool
	busy        bool
	pendingPerm *permRequest
	status      statusUpdate
}

func newModel(u *UI, renderer Renderer) model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ui:       u,
		renderer: renderer,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
}

// Channel-to-message bridge types.
type inputRequestMsg inputRequest
type permRequestMsg permRequest
type statusMsg statusUpdate
type displayMsg displayMessage

func (m model) Init() tea.Cmd {
	close(m.ui.ready)
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		listenForInput(m.ui.inputReq),
		listenForPerm(m.ui.permReq),
		listenForStatus(m.ui.status),
		listenForDisplay(m.ui.messages),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.canSubmit = true
		m.busy = false
		m.input.Placeholder = msg.prompt
		return m, listenForInput(m.ui.inputReq)

	case permRequestMsg:
		req := permRequest(msg)
		m.pendingPerm = &req
		return m, listenForPerm(m.ui.permReq)

	case statusMsg:
		m.status = statusUpdate(msg)
		return m, listenForStatus(m.ui.status)

	case displayMsg:
		m.messages = append(m.messages, displayMessage(msg))
		m.refreshViewport()
		return m, listenForDisplay(m.ui.messages)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingPerm != nil {
		switch msg.String() {
		case "y":
			m.ui.permResp <- DecisionAllow
			m.pendingPerm = nil
		case "n", "esc":
			m.ui.permResp <- DecisionDeny
			m.pendingPerm = nil
		case "a":
			m.ui.permResp <- DecisionAllowAlways
			m.pendingPerm = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		if m.canSubmit && m.input.Value() != "" {
			input := m.input.Value()
			m.messages = append(m.messages, displayMessage{role: roleUser, content: input})
			m.refreshViewport()
			m.ui.inputResp <- input
			m.input.SetValue("")
			m.canSubmit = false
			m.busy = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.pendingPerm != nil:
		b.WriteString(promptStyle.Render(m.pendingPerm.prompt))
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render("[y] allow once  [a] always allow  [n] deny"))
	case m.busy:
		status := m.status.message
		if status == "" {
			status = "thinking"
		}
		b.WriteString(statusStyle.Render(fmt.Sprintf("%s %s...", m.spinner.View(), status)))
	default:
		b.WriteString(m.input.View())
	}

	if m.status.phase != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.status.phase))
	}
	return b.String()
}

func (m *model) refreshViewport() {
	width := m.width - 2
	if width < 20 {
		width = 80
	}

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.role {
		case roleUser:
			b.WriteString(userStyle.Render("> " + msg.content))
			b.WriteString("\n")
		case roleAssistant:
			b.WriteString(m.render(msg.content, width))
		case roleNotice:
			b.WriteString(noticeStyle.Render(msg.content))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *model) render(content string, width int) string {
	if m.renderer == nil {
		return content + "\n"
	}
	rendered, err := m.renderer.Render(content, width)
	if err != nil {
		return content + "\n"
	}
	return rendered
}

func listenForInput(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg { return inputRequestMsg(<-ch) }
}

func listenForPerm(ch <-chan permRequest) tea.Cmd {
	return func() tea.Msg { return permRequestMsg(<-ch) }
}

func listenForStatus(ch <-chan statusUpdate) tea.Cmd {
	return func() tea.Msg { return statusMsg(<-ch) }
}

func listenForDisplay(ch <-chan displayMessage) tea.Cmd {
	return func() tea.Msg { return displayMsg(<-ch) }
}
