// Package architectservice is the application layer shared by the HTTP API,
// the MCP server, and the CLI.
package architectservice

import (
	"context"
	"fmt"

	"github.com/starford/devarchitect/internal/apperr"
	"github.com/starford/devarchitect/internal/export"
	"github.com/starford/devarchitect/internal/generation"
	"github.com/starford/devarchitect/internal/history"
	"github.com/starford/devarchitect/internal/models"
	"github.com/starford/devarchitect/internal/prefs"
	"github.com/starford/devarchitect/internal/treeview"
)

// EntrySummary is a history list item.
type EntrySummary struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// Artifact is an exported Markdown document.
type Artifact struct {
	FileName string `json:"filename"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

// HistoryNotifier is told when the history log changes.
type HistoryNotifier func(reason string)

// Service coordinates the controller, history, and preferences.
type Service struct {
	ctrl   *generation.Controller
	hist   *history.Store
	prefs  *prefs.Store
	notify HistoryNotifier
}

// NewService creates a Service. notify may be nil.
func NewService(ctrl *generation.Controller, hist *history.Store, p *prefs.Store, notify HistoryNotifier) *Service {
	if notify == nil {
		notify = func(string) {}
	}
	return &Service{ctrl: ctrl, hist: hist, prefs: p, notify: notify}
}

// Generate runs one generation and reports the history append.
func (s *Service) Generate(ctx context.Context, prompt string) (*models.ArchitectureDocument, error) {
	doc, err := s.ctrl.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	s.notify("appended")
	return doc, nil
}

// State returns the displayed state.
func (s *Service) State() generation.State { return s.ctrl.State() }

// Acknowledge returns a presented result to idle.
func (s *Service) Acknowledge() generation.State { return s.ctrl.Acknowledge() }

// History lists all entries newest first.
func (s *Service) History(ctx context.Context) []models.HistoryEntry {
	return s.hist.LoadAll(ctx)
}

// Summaries lists entries without their documents.
func (s *Service) Summaries(ctx context.Context) []EntrySummary {
	entries := s.hist.LoadAll(ctx)
	out := make([]EntrySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntrySummary{ID: e.ID, Timestamp: e.Timestamp, Title: e.Title()})
	}
	return out
}

// Entry returns one history entry.
func (s *Service) Entry(ctx context.Context, id string) (models.HistoryEntry, error) {
	return s.hist.Get(ctx, id)
}

// LoadEntry puts a history entry on display.
func (s *Service) LoadEntry(ctx context.Context, id string) (models.HistoryEntry, error) {
	return s.ctrl.LoadFromHistory(ctx, id)
}

// ClearHistory removes every entry.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.hist.Clear(ctx); err != nil {
		return err
	}
	s.notify("cleared")
	return nil
}

func (s *Service) displayed() (generation.State, error) {
	st := s.ctrl.State()
	if st.Document == nil {
		return st, fmt.Errorf("no document displayed: %w", apperr.ErrNotFound)
	}
	return st, nil
}

// Tree renders the displayed folder structure.
func (s *Service) Tree(opts treeview.Options) (treeview.View, error) {
	st, err := s.displayed()
	if err != nil {
		return treeview.View{}, err
	}
	return treeview.Render(st.Document.FolderStructure, opts), nil
}

// Export renders the displayed document as Markdown.
func (s *Service) Export() (Artifact, error) {
	st, err := s.displayed()
	if err != nil {
		return Artifact{}, err
	}
	return artifact(st.Prompt, export.ToDocumentText(st.Prompt, *st.Document)), nil
}

// ExportEntry renders a history entry with front matter.
func (s *Service) ExportEntry(ctx context.Context, id string) (Artifact, error) {
	e, err := s.hist.Get(ctx, id)
	if err != nil {
		return Artifact{}, err
	}
	content, err := export.EntryDocument(e)
	if err != nil {
		return Artifact{}, err
	}
	return artifact(e.Prompt, content), nil
}

func artifact(prompt, content string) Artifact {
	return Artifact{
		FileName: export.FileName(prompt),
		Content:  content,
		Checksum: export.Checksum(content),
	}
}

// Clipboard returns one section of the displayed document.
func (s *Service) Clipboard(section string) (string, error) {
	st, err := s.displayed()
	if err != nil {
		return "", err
	}
	text, err := export.ToClipboardText(section, *st.Document)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return text, nil
}

// Theme returns the theme preference.
func (s *Service) Theme(ctx context.Context) prefs.Theme { return s.prefs.Theme(ctx) }

// SetTheme stores the theme preference.
func (s *Service) SetTheme(ctx context.Context, t prefs.Theme) error {
	if err := s.prefs.SetTheme(ctx, t); err != nil {
		if t.Validate() != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
		}
		return err
	}
	return nil
}
