package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/generator"
)

func init() {
	color.NoColor = true
}

func TestDocument(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Document("demo", generator.PlaceholderDocument())
	out := buf.String()
	for _, want := range []string{
		"Architecture: demo",
		"  • React + Vite: Lightning fast HMR",
		"  ▾ src/\n",
		"      Footer.jsx\n",
		"  1. Phase 1: Foundation: Initialize Vite app",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.History(nil)
	if !strings.Contains(buf.String(), "History is empty") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	p.History([]architectservice.EntrySummary{{ID: "abc", Timestamp: "2026-10-18T09:30:15.123Z", Title: "Untitled Architecture"}})
	if got := buf.String(); got != "2026-10-18T09:30:15.123Z  Untitled Architecture  (abc)\n" {
		t.Errorf("history line = %q", got)
	}
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	}
	for in, want := range tests {
		var buf bytes.Buffer
		if got := New(&buf).Confirm(strings.NewReader(in), "Clear?"); got != want {
			t.Errorf("Confirm(%q) = %v, want %v", in, got, want)
		}
	}
}
