package tui

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	sqlLexer     chroma.Lexer
	sqlFormatter chroma.Formatter
	sqlStyle     *chroma.Style
)

func init() {
	sqlLexer = lexers.Get("sql")
	sqlFormatter = formatters.Get("terminal256")
	sqlStyle = styles.Get("monokai")
}

// highlightSQL returns s with ANSI terminal syntax highlighting applied to
// the REPL's input line, adapted from the teacher's highlight.SQL
// (highlight/highlight.go). On error or empty input it returns s unchanged.
func highlightSQL(s string) string {
	if s == "" || sqlLexer == nil {
		return s
	}

	iterator, err := sqlLexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := sqlFormatter.Format(&buf, sqlStyle, iterator); err != nil {
		return s
	}
	return strings.TrimRight(buf.String(), "\n")
}
