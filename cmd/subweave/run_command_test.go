package main

import (
	"context"
	"path/filepath"
	"testing"

	"subweave/internal/queue"
	"subweave/internal/testsupport"
)

func TestEnqueueVideos(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	dir := t.TempDir()
	first := filepath.Join(dir, "harbor_tour.mkv")
	second := filepath.Join(dir, "second.mkv")
	testsupport.WriteFile(t, first, 4096)
	testsupport.WriteFile(t, second, 4096)

	items, err := enqueueVideos(ctx, store, []string{first, second}, "en", "es")
	if err != nil {
		t.Fatalf("enqueueVideos: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("enqueued %d items, want 2", len(items))
	}
	if items[0].Title != "Harbor Tour" {
		t.Fatalf("title = %q", items[0].Title)
	}
	if items[0].Status != queue.StatusPending {
		t.Fatalf("status = %s", items[0].Status)
	}

	// Re-enqueueing a path with a live queue item is a no-op.
	again, err := enqueueVideos(ctx, store, []string{first}, "en", "es")
	if err != nil {
		t.Fatalf("enqueueVideos repeat: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("duplicate enqueue produced %d items", len(again))
	}
}

func TestEnqueueVideosRejectsBadPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := enqueueVideos(ctx, store, []string{filepath.Join(t.TempDir(), "missing.mkv")}, "en", "es"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := enqueueVideos(ctx, store, []string{t.TempDir()}, "en", "es"); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestLangOrDefault(t *testing.T) {
	if got := langOrDefault("  DE ", "en"); got != "de" {
		t.Fatalf("langOrDefault = %q", got)
	}
	if got := langOrDefault("", "en"); got != "en" {
		t.Fatalf("langOrDefault fallback = %q", got)
	}
}
