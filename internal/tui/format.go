package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mysqlx-shell/core/result"
)

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}

// renderInputWithCursor renders text with a block cursor at cursorPos,
// mirroring the teacher's input-line rendering in tui/format.go.
func renderInputWithCursor(text string, cursorPos int) string {
	runes := []rune(text)
	if cursorPos >= len(runes) {
		return text + "█"
	}
	return string(runes[:cursorPos]) + "█" + string(runes[cursorPos:])
}

func friendlyError(err error, width int) string {
	msg := err.Error()
	var text string
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "EOF"),
		strings.Contains(msg, "transport-lost"):
		text = "Lost connection to the server.\n\nError: " + msg
	default:
		text = "Error: " + msg
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// displayValue renders a result.Value for the table, the idiomatic
// analogue of a dynamically-typed print used by the teacher's own
// formatTime/formatDuration helpers for their respective well-known types.
func displayValue(v result.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Tag() {
	case result.TagInt64:
		i, _ := v.Int64()
		return fmt.Sprintf("%d", i)
	case result.TagUint64:
		u, _ := v.Uint64()
		return fmt.Sprintf("%d", u)
	case result.TagFloat64:
		f, _ := v.Float64()
		return fmt.Sprintf("%g", f)
	case result.TagString, result.TagDecimal:
		s, _ := v.String()
		return s
	case result.TagBytes:
		b, _ := v.Bytes()
		return string(b)
	case result.TagDateTime:
		t, _ := v.DateTime()
		return t.Format("2006-01-02 15:04:05")
	case result.TagBool:
		b, _ := v.Bool()
		if b {
			return "true"
		}
		return "false"
	case result.TagArray:
		arr, _ := v.Array()
		parts := make([]string, len(arr))
		for i, e := range arr {
			parts[i] = displayValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case result.TagMap:
		m, _ := v.Map()
		parts := make([]string, 0, len(m))
		for k, e := range m {
			parts = append(parts, k+": "+displayValue(e))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}
