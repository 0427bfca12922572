package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanStaleRemovesOldItemDirs(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.Paths.StagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}

	stale := filepath.Join(cfg.Paths.StagingDir, "item-1")
	fresh := filepath.Join(cfg.Paths.StagingDir, "item-2")
	unrelated := filepath.Join(cfg.Paths.StagingDir, "notes")
	for _, dir := range []string{stale, fresh, unrelated} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result, err := CleanStale(cfg, 24*time.Hour, nil)
	if err != nil {
		t.Fatalf("CleanStale: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("removed = %v, want just %q", result.Removed, stale)
	}
	if result.Kept != 1 {
		t.Fatalf("kept = %d, want 1", result.Kept)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale dir should be gone, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh dir should survive: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("unrelated dir should survive: %v", err)
	}
}

func TestCleanStaleMissingStagingDir(t *testing.T) {
	cfg := testConfig(t)

	result, err := CleanStale(cfg, time.Hour, nil)
	if err != nil {
		t.Fatalf("CleanStale on missing dir: %v", err)
	}
	if len(result.Removed) != 0 || result.Kept != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
