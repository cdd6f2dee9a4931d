// Package ui is the terminal front end. It runs a Bubble Tea program and
// bridges it to the conversation loop over channels, so the loop can block
// on user input and permission prompts with context cancellation.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Decision is the user's answer to a permission prompt.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionAllow
	DecisionAllowAlways
)

type inputRequest struct {
	prompt string
}

type permRequest struct {
	prompt string
}

type statusUpdate struct {
	phase   string
	message string
}

// UI owns the Bubble Tea program and the channels connecting it to the
// conversation loop.
type UI struct {
	program *tea.Program

	inputReq  chan inputRequest
	inputResp chan string
	permReq   chan permRequest
	permResp  chan Decision
	status    chan statusUpdate
	messages  chan displayMessage
	ready     chan struct{}
}

// New creates the UI. renderer may be nil, in which case messages are shown
// as plain text.
func New(renderer Renderer) *UI {
	u := &UI{
		inputReq:  make(chan inputRequest),
		inputResp: make(chan string),
		permReq:   make(chan permRequest),
		permResp:  make(chan Decision),
		status:    make(chan statusUpdate, 10),
		messages:  make(chan displayMessage, 10),
		ready:     make(chan struct{}),
	}
	model := newModel(u, renderer)
	u.program = tea.NewProgram(model, tea.WithAltScreen())
	return u
}

// Run starts the program and blocks until it exits. Call from the main
// goroutine.
func (u *UI) Run() error {
	_, err := u.program.Run()
	return err
}

// Quit asks the program to exit.
func (u *UI) Quit() {
	u.program.Quit()
}

// Ready is closed once the program is accepting requests.
func (u *UI) Ready() <-chan struct{} {
	return u.ready
}

// ReadInput blocks until the user submits a line or ctx is cancelled.
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case u.inputReq <- inputRequest{prompt: prompt}:
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case response := <-u.inputResp:
			return response, nil
		}
	}
}

// ReadPermission blocks until the user answers a permission prompt or ctx
// is cancelled, in which case the answer is deny.
func (u *UI) ReadPermission(ctx context.Context, prompt string) (Decision, error) {
	select {
	case <-ctx.Done():
		return DecisionDeny, ctx.Err()
	case u.permReq <- permRequest{prompt: prompt}:
		select {
		case <-ctx.Done():
			return DecisionDeny, ctx.Err()
		case decision := <-u.permResp:
			return decision, nil
		}
	}
}

// WriteStatus updates the status line. Dropped if the UI is busy.
func (u *UI) WriteStatus(phase, message string) {
	select {
	case u.status <- statusUpdate{phase: phase, message: message}:
	default:
	}
}

// WriteAssistant displays an assistant message, rendered as markdown.
func (u *UI) WriteAssistant(content string) {
	u.write(displayMessage{role: roleAssistant, content: content})
}

// WriteNotice displays an informational line (tool activity, warnings).
func (u *UI) WriteNotice(content string) {
	u.write(displayMessage{role: roleNotice, content: content})
}

func (u *UI) write(msg displayMessage) {
	select {
	case u.messages <- msg:
	default:
	}
}
