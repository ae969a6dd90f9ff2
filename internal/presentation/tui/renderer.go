package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/charmbracelet/glamour"
)

// Renderer turns a markdown document into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer. Styled output adapts to the
// terminal background; plain output is meant for pipes and tests.
func NewRenderer(styled bool) Renderer {
	opt := glamour.WithStandardStyle("notty")
	if styled {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(80))
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// Markdown lays out the edit screen as a markdown document.
func Markdown(screen presenter.Screen) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", screen.Header.Title)
	if screen.Header.Name != "" {
		fmt.Fprintf(&b, "**%s**\n\n", screen.Header.Name)
	}

	b.WriteString("| Field | Value | |\n|---|---|---|\n")
	for _, f := range screen.Fields {
		value := f.Value
		if value == "" {
			value = "_empty_"
		}
		note := ""
		if f.Error != "" {
			note = "⚠ " + f.Error
		}
		if f.Disabled {
			note = strings.TrimSpace(note + " (locked)")
		}
		fmt.Fprintf(&b, "| %s (`%s`) | %s | %s |\n", f.Label, f.Name, escapeCell(value), escapeCell(note))
	}
	b.WriteString("\n")

	var buttons []string
	for _, btn := range screen.Buttons {
		label := "[" + btn.Label + "]"
		if btn.Disabled {
			label = "~~" + label + "~~"
		}
		buttons = append(buttons, label)
	}
	b.WriteString(strings.Join(buttons, "  "))
	b.WriteString("\n")

	if modal, ok := screen.OpenModal(); ok {
		fmt.Fprintf(&b, "\n> **%s**\n>\n> [%s]\n", modal.Title, modal.ButtonLabel)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// Render lays out screen and renders it with r.
func (r Renderer) Render(screen presenter.Screen) (string, error) {
	return r(Markdown(screen))
}
