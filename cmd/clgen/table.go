package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// painter applies styles only when colour is on.
type painter struct{ color bool }

func (p painter) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// table is a left-aligned text table. Cells wider than maxCell are
// truncated with "...".
type table struct {
	header  []string
	rows    [][]string
	maxCell int
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func (t *table) write(w io.Writer, p painter) error {
	widths := make([]int, len(t.header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(truncate(c, t.maxCell)))
			}
		}
	}
	measure(t.header)
	for _, r := range t.rows {
		measure(r)
	}

	line := func(cells []string, style *lipgloss.Style) string {
		var sb strings.Builder
		sb.WriteString("  ")
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = truncate(cells[i], t.maxCell)
			}
			if cell == "" && style == nil {
				cell = "-"
			}
			padded := cell
			if i < len(widths)-1 {
				padded = runewidth.FillRight(cell, widths[i]+2)
			}
			if style != nil {
				padded = p.render(*style, padded)
			} else if cell == "-" {
				padded = p.render(mutedStyle, padded)
			}
			sb.WriteString(padded)
		}
		return strings.TrimRight(sb.String(), " ") + "\n"
	}

	if _, err := io.WriteString(w, line(t.header, &headerStyle)); err != nil {
		return err
	}
	for _, r := range t.rows {
		if _, err := io.WriteString(w, line(r, nil)); err != nil {
			return err
		}
	}
	return nil
}
