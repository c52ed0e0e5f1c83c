// Package generation drives one prompt through the generation service,
// validation, and history, and exposes the resulting state.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/devarchitect/internal/apperr"
	"github.com/starford/devarchitect/internal/architecture"
	"github.com/starford/devarchitect/internal/generator"
	"github.com/starford/devarchitect/internal/history"
	"github.com/starford/devarchitect/internal/models"
)

// Phase is the controller's lifecycle position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// State is a snapshot of what is displayed. Prompt, Document, and LoadedFrom
// always describe the same generation. AttemptPrompt holds the prompt of a
// failed attempt while Phase is failed.
type State struct {
	Phase         Phase                        `json:"phase"`
	Prompt        string                       `json:"prompt"`
	Document      *models.ArchitectureDocument `json:"document,omitempty"`
	Err           string                       `json:"error,omitempty"`
	LoadedFrom    string                       `json:"loadedFrom,omitempty"`
	AttemptPrompt string                       `json:"attemptPrompt,omitempty"`
}

// Observer receives every state transition. It is called with the
// controller lock held and must not call back into the Controller.
type Observer func(State)

// Controller serialises generations: at most one is in flight.
type Controller struct {
	gen       generator.Service
	history   *history.Store
	logger    *slog.Logger
	now       func() time.Time
	newID     func() (string, error)
	observers []Observer

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDFunc overrides the history id source.
func WithIDFunc(fn func() (string, error)) Option {
	return func(c *Controller) { c.newID = fn }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// New creates an idle Controller.
func New(gen generator.Service, hist *history.Store, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		gen:     gen,
		history: hist,
		logger:  logger,
		now:     time.Now,
		newID:   newUUID,
		state:   State{Phase: PhaseIdle},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setLocked(s State) {
	c.state = s
	for _, o := range c.observers {
		o(s)
	}
}

// Generate runs one generation for prompt. A blank prompt is rejected without
// a transition, and a call made while another is in flight returns ErrBusy.
// On failure the document displayed before the attempt is restored.
func (c *Controller) Generate(ctx context.Context, prompt string) (*models.ArchitectureDocument, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.ErrInputRejected
	}

	c.mu.Lock()
	if c.state.Phase == PhaseGenerating {
		c.mu.Unlock()
		return nil, apperr.ErrBusy
	}
	previous := c.state
	c.setLocked(State{Phase: PhaseGenerating, Prompt: prompt})
	c.mu.Unlock()

	start := time.Now()
	text, err := c.gen.Generate(ctx, generator.Request{Prompt: UserPrompt(prompt), Instruction: Instruction})
	if err != nil {
		desc := err.Error()
		var se *generator.StatusError
		if errors.As(err, &se) {
			desc = se.Description()
		}
		c.logger.Warn("generation: service failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, c.fail(prompt, previous, "Google API Error: "+desc,
			fmt.Errorf("generation: %w: %w", apperr.ErrServiceUnavailable, err))
	}

	doc, err := architecture.Parse(text)
	if err != nil {
		c.logger.Warn("generation: response rejected",
			slog.Int("bytes", len(text)),
			slog.String("error", err.Error()))
		return nil, c.fail(prompt, previous, err.Error(), fmt.Errorf("generation: %w", err))
	}

	if doc.FolderStructure.Truncated {
		c.logger.Warn("generation: folder structure truncated",
			slog.Int("max_depth", models.MaxTreeDepth),
			slog.Int("max_nodes", models.MaxTreeNodes))
	}

	id, err := c.newID()
	if err != nil {
		id = fmt.Sprintf("%d", c.now().UnixMilli())
		c.logger.Warn("generation: id source failed, using timestamp id",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
	entry := models.HistoryEntry{
		ID:        id,
		Timestamp: c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Prompt:    prompt,
		Data:      *doc,
	}
	if _, err := c.history.Append(ctx, entry); err != nil {
		c.logger.Error("generation: failed to save history", slog.String("error", err.Error()))
	}

	c.mu.Lock()
	c.setLocked(State{Phase: PhaseSuccess, Prompt: prompt, Document: doc})
	c.mu.Unlock()

	c.logger.Info("generation: completed",
		slog.String("id", id),
		slog.Int("tech", len(doc.TechStack)),
		slog.Int("phases", len(doc.Roadmap)),
		slog.Duration("elapsed", time.Since(start)))
	return doc, nil
}

// fail restores what was displayed before the attempt as a whole and records
// the failed prompt separately.
func (c *Controller) fail(prompt string, previous State, msg string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(State{
		Phase:         PhaseFailed,
		Prompt:        previous.Prompt,
		Document:      previous.Document,
		LoadedFrom:    previous.LoadedFrom,
		Err:           msg,
		AttemptPrompt: prompt,
	})
	return err
}

// LoadFromHistory displays a stored entry without regenerating.
func (c *Controller) LoadFromHistory(ctx context.Context, id string) (models.HistoryEntry, error) {
	if c.State().Phase == PhaseGenerating {
		return models.HistoryEntry{}, apperr.ErrBusy
	}
	entry, err := c.history.Get(ctx, id)
	if err != nil {
		return models.HistoryEntry{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == PhaseGenerating {
		return models.HistoryEntry{}, apperr.ErrBusy
	}
	doc := entry.Data
	c.setLocked(State{Phase: PhaseSuccess, Prompt: entry.Prompt, Document: &doc, LoadedFrom: entry.ID})
	return entry, nil
}

// Acknowledge returns a presented success or failure to idle, keeping the
// displayed document.
func (c *Controller) Acknowledge() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == PhaseSuccess || c.state.Phase == PhaseFailed {
		next := c.state
		next.Phase = PhaseIdle
		next.Err = ""
		next.AttemptPrompt = ""
		c.setLocked(next)
	}
	return c.state
}
