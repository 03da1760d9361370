package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arcbank/offlinegate/pkg/log"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`cache_version = "v1"`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloads := make(chan FileConfig, 4)
	w := NewWatcher(path, func(fc FileConfig) { reloads <- fc }, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// Give the watch loop time to register before writing.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`cache_version = "v2"`), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case fc := <-reloads:
		if fc.CacheVersion != "v2" {
			t.Errorf("reloaded cache_version = %q, want v2", fc.CacheVersion)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed after write")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`cache_version = "v1"`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloads := make(chan FileConfig, 4)
	w := NewWatcher(path, func(fc FileConfig) { reloads <- fc }, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte(`x = 1`), 0o600); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case <-reloads:
		t.Error("reload fired for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}
