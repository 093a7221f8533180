package tui

import (
	"testing"

	"github.com/mysqlx-shell/core/result"
)

func TestDisplayValueScalars(t *testing.T) {
	cases := []struct {
		v    result.Value
		want string
	}{
		{result.NewNull(), "NULL"},
		{result.NewInt64(-5), "-5"},
		{result.NewUint64(5), "5"},
		{result.NewString("hi"), "hi"},
		{result.NewBool(true), "true"},
		{result.NewBool(false), "false"},
	}
	for _, c := range cases {
		if got := displayValue(c.v); got != c.want {
			t.Errorf("displayValue(%+v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestDisplayValueArray(t *testing.T) {
	v := result.NewArray([]result.Value{result.NewInt64(1), result.NewInt64(2)})
	if got, want := displayValue(v), "[1, 2]"; got != want {
		t.Errorf("displayValue(array) = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 5); got != "hell…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Errorf("truncate short string changed: %q", got)
	}
}

func TestRenderInputWithCursor(t *testing.T) {
	if got, want := renderInputWithCursor("abc", 3), "abc█"; got != want {
		t.Errorf("renderInputWithCursor = %q, want %q", got, want)
	}
	if got, want := renderInputWithCursor("abc", 1), "a█bc"; got != want {
		t.Errorf("renderInputWithCursor = %q, want %q", got, want)
	}
}
