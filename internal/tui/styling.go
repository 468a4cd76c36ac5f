// Package tui styles console status lines when output goes to a terminal.
package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	TagOK   = "[OK]"
	TagMiss = "[MISS]"
	TagFail = "[FAIL]"
)

// Painter renders status tags, leaving them untouched when colour is off.
type Painter struct {
	colorize bool
	ok       lipgloss.Style
	miss     lipgloss.Style
	fail     lipgloss.Style
	heading  lipgloss.Style
}

func NewPainter(out io.Writer) *Painter {
	return newPainter(out, ShouldColorize(out))
}

func newPainter(out io.Writer, colorize bool) *Painter {
	renderer := lipgloss.NewRenderer(out)
	if colorize {
		renderer.SetColorProfile(termenv.ANSI)
	}

	return &Painter{
		colorize: colorize,
		ok: renderer.NewStyle().
			Foreground(lipgloss.ANSIColor(termenv.ANSIBrightGreen)).
			Bold(true),
		miss: renderer.NewStyle().
			Foreground(lipgloss.ANSIColor(termenv.ANSIBrightYellow)).
			Bold(true),
		fail: renderer.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true),
		heading: renderer.NewStyle().
			Foreground(lipgloss.ANSIColor(termenv.ANSIBrightWhite)).
			Bold(true),
	}
}

func (painter *Painter) OK() string {
	return painter.render(painter.ok, TagOK)
}

func (painter *Painter) Miss() string {
	return painter.render(painter.miss, TagMiss)
}

func (painter *Painter) Fail() string {
	return painter.render(painter.fail, TagFail)
}

func (painter *Painter) Heading(text string) string {
	return painter.render(painter.heading, text)
}

func (painter *Painter) render(style lipgloss.Style, text string) string {
	if !painter.colorize {
		return text
	}
	return style.Render(text)
}
