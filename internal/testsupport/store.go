package testsupport

import (
	"context"
	"testing"

	"subweave/internal/config"
	"subweave/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewVideo creates a pending queue item for tests using the provided store.
func NewVideo(t testing.TB, store *queue.Store, sourcePath, title string) *queue.Item {
	t.Helper()

	item, err := store.NewVideo(context.Background(), sourcePath, title, "en", "es")
	if err != nil {
		t.Fatalf("store.NewVideo: %v", err)
	}
	return item
}
