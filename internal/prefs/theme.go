// Package prefs stores user preferences next to the history log.
package prefs

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/devarchitect/internal/kv"
)

// ThemeKey is the storage key of the theme preference.
const ThemeKey = "devArchitectTheme"

// Theme is a UI colour scheme.
type Theme string

const (
	ThemeMidnight  Theme = "midnight"
	ThemeCyberpunk Theme = "cyberpunk"
	ThemeLight     Theme = "light"

	DefaultTheme = ThemeMidnight
)

// Themes lists the accepted themes.
var Themes = []Theme{ThemeMidnight, ThemeCyberpunk, ThemeLight}

// Validate implements validation.Validatable.
func (t Theme) Validate() error {
	return validation.Validate(string(t),
		validation.Required,
		validation.In(string(ThemeMidnight), string(ThemeCyberpunk), string(ThemeLight)),
	)
}

// Store reads and writes preferences.
type Store struct {
	kv     kv.Store
	logger *slog.Logger
}

// New creates a preference Store.
func New(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: store, logger: logger}
}

// Theme returns the stored theme, or DefaultTheme if absent or unknown.
func (s *Store) Theme(ctx context.Context) Theme {
	v, ok, err := s.kv.Get(ctx, ThemeKey)
	if err != nil {
		s.logger.Warn("prefs: read theme failed", slog.String("error", err.Error()))
		return DefaultTheme
	}
	if !ok {
		return DefaultTheme
	}
	if t := Theme(v); t.Validate() == nil {
		return t
	}
	s.logger.Warn("prefs: ignoring unknown theme", slog.String("theme", v))
	return DefaultTheme
}

// SetTheme stores t after validating it.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("prefs: theme: %w", err)
	}
	if err := s.kv.Set(ctx, ThemeKey, string(t)); err != nil {
		return fmt.Errorf("prefs: write theme: %w", err)
	}
	return nil
}
