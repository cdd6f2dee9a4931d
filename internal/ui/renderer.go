package ui

import "github.com/charmbracelet/glamour"

// Renderer turns markdown into styled terminal output.
type Renderer interface {
	Render(markdown string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour's auto-detected style.
type GlamourRenderer struct{}

func (GlamourRenderer) Render(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
