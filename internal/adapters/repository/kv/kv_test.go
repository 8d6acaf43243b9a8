package kv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/spotcheck/internal/adapters/repository/kv"
)

func backends(t *testing.T) map[string]func(dir string) kv.Backend {
	t.Helper()
	return map[string]func(dir string) kv.Backend{
		"memory": func(string) kv.Backend { return kv.NewMemory() },
		"json": func(dir string) kv.Backend {
			b, err := kv.NewFile(filepath.Join(dir, "board.json"))
			if err != nil {
				t.Fatalf("NewFile() error = %v", err)
			}
			return b
		},
		"sqlite": func(dir string) kv.Backend {
			b, err := kv.NewSQLite(filepath.Join(dir, "board.db"))
			if err != nil {
				t.Fatalf("NewSQLite() error = %v", err)
			}
			return b
		},
	}
}

func TestBackendBasicFlow(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := open(t.TempDir())
			t.Cleanup(func() { _ = b.Close() })

			if _, ok, err := b.Get(ctx, "leaderboard"); err != nil || ok {
				t.Fatalf("Get() on empty backend ok=%v err=%v", ok, err)
			}

			if err := b.Put(ctx, "leaderboard", []byte(`[{"id":"a"}]`)); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := b.Put(ctx, "leaderboard", []byte(`[{"id":"b"}]`)); err != nil {
				t.Fatalf("Put() overwrite error = %v", err)
			}

			got, ok, err := b.Get(ctx, "leaderboard")
			if err != nil || !ok {
				t.Fatalf("Get() ok=%v err=%v", ok, err)
			}
			if string(got) != `[{"id":"b"}]` {
				t.Fatalf("Get() = %s, want overwritten payload", got)
			}

			if err := b.Put(ctx, "", []byte("x")); !errors.Is(err, kv.ErrEmptyKey) {
				t.Fatalf("Put() with empty key error = %v", err)
			}
		})
	}
}

func TestBackendSurvivesReopen(t *testing.T) {
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "board.json")
		b, err := kv.NewFile(path)
		if err != nil {
			t.Fatalf("NewFile() error = %v", err)
		}
		if err := b.Put(ctx, "leaderboard", []byte(`{"n":1}`)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := b.Put(ctx, "note", []byte("plain text")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		_ = b.Close()

		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("temp file left behind: %v", err)
		}

		again, err := kv.NewFile(path)
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		got, ok, err := again.Get(ctx, "leaderboard")
		if err != nil || !ok || string(got) != `{"n":1}` {
			t.Fatalf("Get() after reopen = %s ok=%v err=%v", got, ok, err)
		}
		note, _, _ := again.Get(ctx, "note")
		if string(note) != `"plain text"` {
			t.Fatalf("non-JSON payload stored as %s", note)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.db")
		b, err := kv.NewSQLite(path)
		if err != nil {
			t.Fatalf("NewSQLite() error = %v", err)
		}
		if err := b.Put(ctx, "leaderboard", []byte("payload")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		_ = b.Close()

		again, err := kv.NewSQLite(path)
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		t.Cleanup(func() { _ = again.Close() })
		got, ok, err := again.Get(ctx, "leaderboard")
		if err != nil || !ok || string(got) != "payload" {
			t.Fatalf("Get() after reopen = %s ok=%v err=%v", got, ok, err)
		}
	})
}

func TestFileRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := kv.NewFile(path); err == nil {
		t.Fatal("expected error for corrupt document")
	}
}

func TestMemoryClosed(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Close()
	if err := m.Put(context.Background(), "k", nil); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("Put() after Close error = %v", err)
	}
	if _, _, err := m.Get(context.Background(), "k"); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("Get() after Close error = %v", err)
	}
}

func TestNewByEngine(t *testing.T) {
	dir := t.TempDir()
	for _, engine := range []string{"", "sqlite", "SQLite", "json", "memory"} {
		b, err := kv.NewByEngine(engine, filepath.Join(dir, "e-"+engine))
		if err != nil {
			t.Fatalf("NewByEngine(%q) error = %v", engine, err)
		}
		_ = b.Close()
	}
	if _, err := kv.NewByEngine("redis", dir); !errors.Is(err, kv.ErrUnsupportedEngine) {
		t.Fatalf("NewByEngine(redis) error = %v", err)
	}
}
