package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_WriteThenRead(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := store.Write(ctx, AbbreviationKey("gsw"), []byte("GAME_DATE\n2024-01-02\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Read(ctx, AbbreviationKey("GSW"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "GAME_DATE\n2024-01-02\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "GSW_games.csv")); err != nil {
		t.Fatalf("expected GSW_games.csv on disk: %v", err)
	}
}

func TestFileStore_OverwriteKeepsLastWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()
	key := IDKey(1610612744)

	if err := store.Write(ctx, key, []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.Write(ctx, key, []byte("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := store.Read(ctx, key)
	if err != nil || string(got) != "second" {
		t.Fatalf("expected second write, got %q err=%v", got, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the cache file, found %d entries", len(entries))
	}
}

func TestFileStore_MissingEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStore(dir)
	_, err := store.Read(context.Background(), IDKey(1))
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, IDKey(1).FileName())); !os.IsNotExist(err) {
		t.Fatalf("expected no cache file, stat err=%v", err)
	}
}

func TestFileStore_RejectsUnsafeKeys(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	err := store.Write(context.Background(), AbbreviationKey("../etc"), []byte("x"))
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestFileStore_UnconfiguredDir(t *testing.T) {
	t.Parallel()

	if _, err := NewFileStore("  ").Read(context.Background(), IDKey(1)); err == nil {
		t.Fatalf("expected error for empty cache dir")
	}
}
