package prefs

import (
	"context"
	"testing"

	"github.com/starford/devarchitect/internal/kv"
	"github.com/starford/devarchitect/internal/testutil"
)

func TestTheme_Default(t *testing.T) {
	s := New(kv.NewMemory(), testutil.Logger())
	if got := s.Theme(context.Background()); got != ThemeMidnight {
		t.Errorf("Theme = %q, want midnight", got)
	}
}

func TestTheme_SetAndGet(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(), testutil.Logger())
	for _, th := range Themes {
		if err := s.SetTheme(ctx, th); err != nil {
			t.Fatalf("SetTheme(%q): %v", th, err)
		}
		if got := s.Theme(ctx); got != th {
			t.Errorf("Theme = %q, want %q", got, th)
		}
	}
}

func TestTheme_RejectsUnknown(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := New(mem, testutil.Logger())
	for _, th := range []Theme{"", "solarized"} {
		if err := s.SetTheme(ctx, th); err == nil {
			t.Errorf("SetTheme(%q) should fail", th)
		}
	}
	_ = mem.Set(ctx, ThemeKey, "neon")
	if got := s.Theme(ctx); got != DefaultTheme {
		t.Errorf("unknown stored theme should fall back, got %q", got)
	}
}

func TestTheme_ReadFailureFallsBack(t *testing.T) {
	s := New(testutil.FailingStore{}, testutil.Logger())
	if got := s.Theme(context.Background()); got != DefaultTheme {
		t.Errorf("Theme = %q", got)
	}
}
