package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colWidthMax = 24

// renderTable draws the current result set as a bordered, column-aligned
// table, following the header/row layout of tui/list.go's renderList but
// for an arbitrary column set instead of the teacher's fixed Op/Query/
// Duration/Time/Status columns.
func (m Model) renderTable() string {
	if len(m.cols) == 0 {
		return m.statusLine
	}

	widths := make([]int, len(m.cols))
	for i, c := range m.cols {
		widths[i] = lipgloss.Width(c.Name)
	}
	for _, row := range m.rows {
		for i := range m.cols {
			v, err := row.Value(i)
			if err != nil {
				continue
			}
			if w := lipgloss.Width(truncate(displayValue(v), colWidthMax)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > colWidthMax {
			widths[i] = colWidthMax
		}
	}

	var b strings.Builder
	header := make([]string, len(m.cols))
	for i, c := range m.cols {
		header[i] = padRight(c.Name, widths[i])
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(strings.Join(header, "  ")))
	b.WriteByte('\n')

	maxRows := len(m.rows)
	if m.height > 6 && maxRows > m.height-6 {
		maxRows = m.height - 6
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	end := start + maxRows
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		row := m.rows[i]
		cells := make([]string, len(m.cols))
		for c := range m.cols {
			v, err := row.Value(c)
			text := "?"
			if err == nil {
				text = truncate(displayValue(v), colWidthMax)
			}
			cells[c] = padRight(text, widths[c])
		}
		line := strings.Join(cells, "  ")
		if i == m.cursor {
			line = lipgloss.NewStyle().Reverse(true).Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(fmt.Sprintf("\n%s", m.statusLine))
	return b.String()
}
