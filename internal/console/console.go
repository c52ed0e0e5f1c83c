// Package console prints human-readable CLI output.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/models"
	"github.com/starford/devarchitect/internal/treeview"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	titleColor   = color.New(color.FgMagenta, color.Bold)
	nameColor    = color.New(color.FgHiWhite, color.Bold)
)

// Printer writes colored output to W.
type Printer struct {
	W io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{W: w}
}

func (p *Printer) Success(format string, args ...any) {
	successColor.Fprintf(p.W, "✅ "+format+"\n", args...)
}

func (p *Printer) Error(format string, args ...any) {
	errorColor.Fprintf(p.W, "❌ "+format+"\n", args...)
}

func (p *Printer) Warn(format string, args ...any) {
	warningColor.Fprintf(p.W, "⚠️  "+format+"\n", args...)
}

func (p *Printer) Info(format string, args ...any) {
	infoColor.Fprintf(p.W, "ℹ️  "+format+"\n", args...)
}

func (p *Printer) Title(format string, args ...any) {
	titleColor.Fprintf(p.W, "🎯 "+format+"\n", args...)
}

// Separator prints a horizontal rule.
func (p *Printer) Separator() {
	fmt.Fprintln(p.W, strings.Repeat("─", 60))
}

// Document prints all three sections of doc.
func (p *Printer) Document(prompt string, doc models.ArchitectureDocument) {
	p.Title("Architecture: %s", prompt)
	p.Separator()

	titleColor.Fprintln(p.W, "Tech Stack")
	for _, t := range doc.TechStack {
		nameColor.Fprintf(p.W, "  • %s", t.Name)
		fmt.Fprintf(p.W, ": %s\n", t.Justification)
	}

	fmt.Fprintln(p.W)
	titleColor.Fprintln(p.W, "Folder Structure")
	view := treeview.Render(doc.FolderStructure, treeview.Options{})
	for _, line := range strings.Split(strings.TrimRight(view.String(), "\n"), "\n") {
		fmt.Fprintf(p.W, "  %s\n", line)
	}

	fmt.Fprintln(p.W)
	titleColor.Fprintln(p.W, "Roadmap")
	for i, r := range doc.Roadmap {
		nameColor.Fprintf(p.W, "  %d. %s", i+1, r.Phase)
		fmt.Fprintf(p.W, ": %s\n", r.Desc)
	}
}

// History prints the history listing.
func (p *Printer) History(entries []architectservice.EntrySummary) {
	if len(entries) == 0 {
		p.Info("History is empty")
		return
	}
	for _, e := range entries {
		infoColor.Fprintf(p.W, "%s  ", e.Timestamp)
		nameColor.Fprintf(p.W, "%s", e.Title)
		fmt.Fprintf(p.W, "  (%s)\n", e.ID)
	}
}

// Confirm asks a yes/no question on W and reads the answer from in.
// Anything other than y or yes is a no.
func (p *Printer) Confirm(in io.Reader, question string) bool {
	warningColor.Fprintf(p.W, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
