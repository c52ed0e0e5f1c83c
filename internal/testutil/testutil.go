// Package testutil provides shared test helpers: temporary stores, a scripted
// generation service, and sample documents.
package testutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/starford/devarchitect/internal/generator"
	"github.com/starford/devarchitect/internal/kv"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSQLite creates a temporary SQLite store that is automatically cleaned up.
func TestSQLite(t *testing.T) *kv.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "devarchitect-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := kv.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFileStore creates a file store in a temporary directory.
func TestFileStore(t *testing.T) *kv.File {
	t.Helper()
	s, err := kv.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// ErrStore is returned by FailingStore.
var ErrStore = errors.New("testutil: store unavailable")

// FailingStore is a kv.Store whose every call fails.
type FailingStore struct{}

func (FailingStore) Get(context.Context, string) (string, bool, error) { return "", false, ErrStore }
func (FailingStore) Set(context.Context, string, string) error         { return ErrStore }
func (FailingStore) Remove(context.Context, string) error              { return ErrStore }

// Reply is one scripted generator answer.
type Reply struct {
	Text string
	Err  error
}

// FakeGenerator replays scripted replies in order and records requests.
// The last reply repeats once the script is exhausted. When Gate is set,
// each call blocks until a value is received from it.
type FakeGenerator struct {
	Gate chan struct{}

	mu       sync.Mutex
	replies  []Reply
	requests []generator.Request
	started  chan struct{}
}

// NewFakeGenerator returns a FakeGenerator with the given script.
func NewFakeGenerator(replies ...Reply) *FakeGenerator {
	return &FakeGenerator{replies: replies, started: make(chan struct{}, 16)}
}

func (f *FakeGenerator) Generate(ctx context.Context, req generator.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	var r Reply
	if len(f.replies) > 0 {
		r = f.replies[0]
		if len(f.replies) > 1 {
			f.replies = f.replies[1:]
		}
	}
	gate := f.Gate
	f.mu.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.Text, r.Err
}

// Started signals once per call as soon as the call begins.
func (f *FakeGenerator) Started() <-chan struct{} { return f.started }

// Requests returns a copy of the recorded requests.
func (f *FakeGenerator) Requests() []generator.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generator.Request(nil), f.requests...)
}

// BlogJSON is a valid service response for a blog platform prompt.
const BlogJSON = `{
  "techStack": [
    {"name": "Next.js", "justification": "Server rendering for SEO."},
    {"name": "PostgreSQL", "justification": "Relational data for posts and comments."}
  ],
  "folderStructure": [
    {"name": "app", "type": "folder", "children": [
      {"name": "page.tsx", "type": "file"},
      {"name": "posts", "type": "folder", "children": [{"name": "[slug].tsx", "type": "file"}]}
    ]},
    {"name": "package.json", "type": "file"}
  ],
  "roadmap": [
    {"phase": "Phase 1: Setup", "desc": "Scaffold the app and database."},
    {"phase": "Phase 2: Posts", "desc": "Build post editing and listing."}
  ]
}`
