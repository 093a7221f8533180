package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTypingAppendsToInputAtCursor(t *testing.T) {
	m := New(nil)
	updated, _ := m.Update(keyRune('a'))
	mm := updated.(Model)
	updated2, _ := mm.updateKey(keyRune('b'))
	mm = updated2.(Model)
	if mm.input != "ab" || mm.cursorPos != 2 {
		t.Fatalf("input = %q, cursorPos = %d", mm.input, mm.cursorPos)
	}
}

func TestBackspaceRemovesBeforeCursor(t *testing.T) {
	m := New(nil)
	m.input, m.cursorPos = "abc", 2
	updated, _ := m.updateKey(tea.KeyMsg{Type: tea.KeyBackspace})
	mm := updated.(Model)
	if mm.input != "ac" || mm.cursorPos != 1 {
		t.Fatalf("input = %q, cursorPos = %d", mm.input, mm.cursorPos)
	}
}

func TestHistoryNavigationRecallsPriorStatements(t *testing.T) {
	m := New(nil)
	m.history = []string{"select 1", "select 2"}
	m.historyIdx = len(m.history)

	updated, _ := m.updateKey(tea.KeyMsg{Type: tea.KeyUp})
	mm := updated.(Model)
	if mm.input != "select 2" {
		t.Fatalf("after one up, input = %q", mm.input)
	}

	updated, _ = mm.updateKey(tea.KeyMsg{Type: tea.KeyUp})
	mm = updated.(Model)
	if mm.input != "select 1" {
		t.Fatalf("after two ups, input = %q", mm.input)
	}

	updated, _ = mm.updateKey(tea.KeyMsg{Type: tea.KeyDown})
	mm = updated.(Model)
	if mm.input != "select 2" {
		t.Fatalf("after down, input = %q", mm.input)
	}
}

func TestEscQuits(t *testing.T) {
	m := New(nil)
	_, cmd := m.updateKey(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a tea.Quit command")
	}
}
