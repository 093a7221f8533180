// Package tui renders cmd/mysqlxsh's REPL result view: a single-line SQL
// input plus a scrollable result table, in the teacher's Bubble Tea
// Elm-architecture style (tui/model.go), trimmed down from the teacher's
// multi-view query-tap inspector to the one view this REPL needs.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mysqlx-shell/core/internal/clipboard"
	"github.com/mysqlx-shell/core/mysqlx"
	"github.com/mysqlx-shell/core/result"
)

// Model is the Bubble Tea model for the mysqlxsh REPL.
type Model struct {
	session *mysqlx.Session

	input       string
	cursorPos   int
	history     []string
	historyIdx  int
	runningStmt string

	cols       []result.Column
	rows       []*result.Row
	affected   int64
	lastErr    error
	statusLine string

	cursor int // selected row index in the result table
	width  int
	height int

	quitting bool
}

// New creates a Model bound to an already-connected session.
func New(session *mysqlx.Session) Model {
	return Model{session: session, historyIdx: -1}
}

// Init satisfies tea.Model; the REPL has nothing to do before the first
// keypress.
func (m Model) Init() tea.Cmd { return nil }

// resultMsg carries the outcome of running a statement.
type resultMsg struct {
	stmt     string
	cols     []result.Column
	rows     []*result.Row
	affected int64
	err      error
}

func runStatement(session *mysqlx.Session, stmt string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		res, err := session.Query(ctx, stmt, true)
		if err != nil {
			return resultMsg{stmt: stmt, err: err}
		}
		rows, err := res.FetchAll(ctx)
		if err != nil {
			return resultMsg{stmt: stmt, err: err}
		}
		return resultMsg{
			stmt:     stmt,
			cols:     res.ColumnMetadata(),
			rows:     rows,
			affected: res.AffectedItems(),
		}
	}
}

// yankMsg reports the outcome of a clipboard copy triggered by "y".
type yankMsg struct{ err error }

func copySelectedRow(row *result.Row, numCols int) tea.Cmd {
	return func() tea.Msg {
		cells := make([]string, numCols)
		for i := 0; i < numCols; i++ {
			v, err := row.Value(i)
			if err != nil {
				cells[i] = "?"
				continue
			}
			cells[i] = displayValue(v)
		}
		text := strings.Join(cells, "\t")
		return yankMsg{err: clipboard.Copy(context.Background(), text)}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case yankMsg:
		if msg.err != nil {
			m.statusLine = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusLine = "row copied to clipboard"
		}
		return m, nil

	case resultMsg:
		m.runningStmt = ""
		m.lastErr = msg.err
		if msg.err == nil {
			m.cols = msg.cols
			m.rows = msg.rows
			m.affected = msg.affected
			m.cursor = 0
			m.statusLine = fmt.Sprintf("%d row(s)", len(msg.rows))
			if len(msg.cols) == 0 {
				m.statusLine = fmt.Sprintf("%d row(s) affected", msg.affected)
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if m.input == "" || m.runningStmt != "" {
			return m, nil
		}
		stmt := m.input
		m.history = append(m.history, stmt)
		m.historyIdx = len(m.history)
		m.input = ""
		m.cursorPos = 0
		m.runningStmt = stmt
		m.statusLine = "running..."
		return m, runStatement(m.session, stmt)

	case "up":
		if len(m.rows) > 0 && m.cursor > 0 {
			m.cursor--
			return m, nil
		}
		if m.historyIdx > 0 {
			m.historyIdx--
			m.input = m.history[m.historyIdx]
			m.cursorPos = len(m.input)
		}
		return m, nil

	case "down":
		if len(m.rows) > 0 && m.cursor < len(m.rows)-1 {
			m.cursor++
			return m, nil
		}
		if m.historyIdx < len(m.history)-1 {
			m.historyIdx++
			m.input = m.history[m.historyIdx]
			m.cursorPos = len(m.input)
		} else {
			m.historyIdx = len(m.history)
			m.input = ""
			m.cursorPos = 0
		}
		return m, nil

	case "y":
		if len(m.rows) == 0 {
			return m, nil
		}
		return m, copySelectedRow(m.rows[m.cursor], len(m.cols))

	case "left":
		if m.cursorPos > 0 {
			m.cursorPos--
		}
		return m, nil

	case "right":
		if m.cursorPos < len(m.input) {
			m.cursorPos++
		}
		return m, nil

	case "backspace":
		if m.cursorPos > 0 {
			m.input = m.input[:m.cursorPos-1] + m.input[m.cursorPos:]
			m.cursorPos--
		}
		return m, nil

	default:
		if len(msg.Runes) > 0 {
			r := string(msg.Runes)
			m.input = m.input[:m.cursorPos] + r + m.input[m.cursorPos:]
			m.cursorPos += len(r)
		}
		return m, nil
	}
}

var promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// renderInput draws the input line with a block cursor. Syntax
// highlighting is only applied when the cursor sits at the end of the
// line: highlightSQL's ANSI escapes would otherwise shift the rune offsets
// renderInputWithCursor splits on.
func (m Model) renderInput() string {
	if m.cursorPos == len(m.input) {
		return highlightSQL(m.input) + "█"
	}
	return renderInputWithCursor(m.input, m.cursorPos)
}

// View renders the prompt, any result table, and a status/error footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return ""
	}

	prompt := promptStyle.Render("mysqlx> ") + m.renderInput()

	var body string
	switch {
	case m.lastErr != nil:
		body = friendlyError(m.lastErr, m.width)
	case len(m.cols) > 0:
		body = m.renderTable()
	default:
		body = m.statusLine
	}

	return prompt + "\n\n" + body
}
