package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/klava/internal/keyboard"
)

const (
	targetKeyColor = "#FFD54F"
	wrongKeyColor  = "#E53935"
	keyTextColor   = "#1A1A1A"
	dimKeyColor    = "#3A3A3A"
	dimTextColor   = "#6E6E6E"
	fingerLighten  = 0.55
	spaceBarWidth  = 29
)

// keyboardView describes which keys to highlight in one render.
type keyboardView struct {
	target    rune
	hasTarget bool
	wrong     rune
	hasWrong  bool
	dim       bool
}

func renderKeyboard(kb *keyboard.Model, v keyboardView) string {
	lines := make([]string, 0, len(keyboard.Rows)+1)
	for i, row := range keyboard.Rows {
		keys := make([]string, 0, len(row))
		for _, r := range row {
			keys = append(keys, keyStyle(kb, r, v).Render(string(r)))
		}
		lines = append(lines, strings.Repeat(" ", i*2)+strings.Join(keys, " "))
	}
	space := keyStyle(kb, keyboard.Space, v).Width(spaceBarWidth).Align(lipgloss.Center).Render("SPACE")
	lines = append(lines, strings.Repeat(" ", 6)+space)
	return strings.Join(lines, "\n")
}

func keyStyle(kb *keyboard.Model, r rune, v keyboardView) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color(keyTextColor))
	if v.dim {
		return style.Foreground(lipgloss.Color(dimTextColor)).Background(lipgloss.Color(dimKeyColor))
	}
	switch {
	case v.hasWrong && r == v.wrong:
		return style.Background(lipgloss.Color(wrongKeyColor))
	case v.hasTarget && r == v.target:
		return style.Background(lipgloss.Color(targetKeyColor)).Bold(true)
	}
	if color, ok := kb.ColorFor(r); ok {
		return style.Background(lipgloss.Color(keyboard.Lighten(color, fingerLighten)))
	}
	return style.Background(lipgloss.Color("#D0D0D0"))
}
