// Package history keeps the bounded, newest-first log of generations in a
// key-value store under a single key.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/devarchitect/internal/apperr"
	"github.com/starford/devarchitect/internal/kv"
	"github.com/starford/devarchitect/internal/models"
)

const (
	// DefaultKey is the storage key of the history log.
	DefaultKey = "devArchitectHistory"
	// DefaultCapacity is the maximum number of retained entries.
	DefaultCapacity = 50
)

// Store appends, lists, and clears history entries.
type Store struct {
	kv       kv.Store
	logger   *slog.Logger
	key      string
	capacity int

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides the retained entry count.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a Store over store.
func New(store kv.Store, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: store, logger: logger, key: DefaultKey, capacity: DefaultCapacity}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key returns the storage key the log lives under.
func (s *Store) Key() string { return s.key }

// LoadAll returns the log newest first. An absent, unreadable, or corrupt
// value yields an empty log and is only logged.
func (s *Store) LoadAll(ctx context.Context) []models.HistoryEntry {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("history: read failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return []models.HistoryEntry{}
	}
	if !ok {
		return []models.HistoryEntry{}
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("history: stored log is corrupt, ignoring",
			slog.String("key", s.key),
			slog.Int("bytes", len(raw)),
			slog.String("error", err.Error()))
		return []models.HistoryEntry{}
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries
}

// Get returns the entry with id.
func (s *Store) Get(ctx context.Context, id string) (models.HistoryEntry, error) {
	for _, e := range s.LoadAll(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return models.HistoryEntry{}, fmt.Errorf("history: entry %s: %w", id, apperr.ErrNotFound)
}

// Append prepends entry and drops the oldest entries beyond capacity.
// A corrupt stored log is replaced.
func (s *Store) Append(ctx context.Context, entry models.HistoryEntry) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.LoadAll(ctx)
	n := min(len(prev)+1, s.capacity)
	next := make([]models.HistoryEntry, 0, n)
	next = append(next, entry)
	next = append(next, prev[:n-1]...)

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("history: encode: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return nil, fmt.Errorf("history: write: %w", err)
	}
	return next, nil
}

// Clear removes the whole log.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}
