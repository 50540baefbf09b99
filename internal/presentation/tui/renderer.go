package tui

import (
	"github.com/charmbracelet/glamour"
)

// RenderFunc turns markdown into terminal output.
type RenderFunc func(string) (string, error)

// NewRenderer returns a RenderFunc backed by glamour.
// The style follows the terminal background.
func NewRenderer() (RenderFunc, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// PlainRenderer returns markdown unchanged. Used when output is not a terminal.
func PlainRenderer() RenderFunc {
	return func(markdown string) (string, error) {
		return markdown, nil
	}
}
