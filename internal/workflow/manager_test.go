package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"subweave/internal/queue"
	"subweave/internal/stage"
	"subweave/internal/testsupport"
	"subweave/internal/workflow"
)

type scriptedHandler struct {
	name string
	mu   sync.Mutex
	seen []int64
	fail func(item *queue.Item) error
}

func (h *scriptedHandler) Prepare(ctx context.Context, item *queue.Item) error { return nil }

func (h *scriptedHandler) Execute(ctx context.Context, item *queue.Item) error {
	h.mu.Lock()
	h.seen = append(h.seen, item.ID)
	h.mu.Unlock()
	if h.fail != nil {
		return h.fail(item)
	}
	return nil
}

func (h *scriptedHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func newManager(t *testing.T, transcriber, translator, compositor stage.Handler) (*workflow.Manager, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, nil)
	manager.ConfigureStages(workflow.StageSet{
		Transcriber: transcriber,
		Translator:  translator,
		Compositor:  compositor,
	})
	return manager, store
}

func TestRunUntilIdleCompletesItems(t *testing.T) {
	transcriber := &scriptedHandler{name: "transcriber"}
	translator := &scriptedHandler{name: "translator"}
	compositor := &scriptedHandler{name: "compositor"}
	manager, store := newManager(t, transcriber, translator, compositor)
	ctx := context.Background()

	a := testsupport.NewVideo(t, store, "/videos/a.mkv", "A")
	b := testsupport.NewVideo(t, store, "/videos/b.mkv", "B")

	if err := manager.RunUntilIdle(ctx); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item.Status != queue.StatusCompleted {
			t.Fatalf("item %d status = %s, want completed", id, item.Status)
		}
	}
	if len(transcriber.seen) != 2 || len(translator.seen) != 2 || len(compositor.seen) != 2 {
		t.Fatalf("stages saw %d/%d/%d items, want 2 each",
			len(transcriber.seen), len(translator.seen), len(compositor.seen))
	}
}

func TestRunUntilIdleIsolatesFailures(t *testing.T) {
	transcriber := &scriptedHandler{name: "transcriber"}
	translator := &scriptedHandler{
		name: "translator",
		fail: func(item *queue.Item) error {
			if item.Title == "Bad" {
				return errors.New("translation exploded")
			}
			return nil
		},
	}
	compositor := &scriptedHandler{name: "compositor"}
	manager, store := newManager(t, transcriber, translator, compositor)
	ctx := context.Background()

	bad := testsupport.NewVideo(t, store, "/videos/bad.mkv", "Bad")
	good := testsupport.NewVideo(t, store, "/videos/good.mkv", "Good")

	if err := manager.RunUntilIdle(ctx); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	badItem, err := store.GetByID(ctx, bad.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if badItem.Status != queue.StatusFailed {
		t.Fatalf("bad item status = %s, want failed", badItem.Status)
	}
	if badItem.ErrorMessage == "" {
		t.Fatal("failed item should carry an error message")
	}

	goodItem, err := store.GetByID(ctx, good.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if goodItem.Status != queue.StatusCompleted {
		t.Fatalf("good item status = %s, want completed", goodItem.Status)
	}
}

func TestRunUntilIdleResumesStuckItems(t *testing.T) {
	transcriber := &scriptedHandler{name: "transcriber"}
	translator := &scriptedHandler{name: "translator"}
	compositor := &scriptedHandler{name: "compositor"}
	manager, store := newManager(t, transcriber, translator, compositor)
	ctx := context.Background()

	item := testsupport.NewVideo(t, store, "/videos/a.mkv", "A")
	item.Status = queue.StatusTranslating
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := manager.RunUntilIdle(ctx); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusCompleted {
		t.Fatalf("status = %s, want completed", fetched.Status)
	}
	// The stuck item was rolled back to transcribed, so transcription is not
	// re-run but translation and compositing are.
	if len(transcriber.seen) != 0 {
		t.Fatalf("transcriber re-ran %d times for a resumed item", len(transcriber.seen))
	}
	if len(translator.seen) != 1 || len(compositor.seen) != 1 {
		t.Fatalf("resume ran translator %d and compositor %d times, want 1 each",
			len(translator.seen), len(compositor.seen))
	}
}

func TestStartStopProcessesInBackground(t *testing.T) {
	transcriber := &scriptedHandler{name: "transcriber"}
	translator := &scriptedHandler{name: "translator"}
	compositor := &scriptedHandler{name: "compositor"}
	manager, store := newManager(t, transcriber, translator, compositor)
	ctx := context.Background()

	item := testsupport.NewVideo(t, store, "/videos/a.mkv", "A")

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := manager.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}
	defer manager.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for {
		fetched, err := store.GetByID(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if fetched.Status == queue.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("item never completed, status = %s", fetched.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunUntilIdleUnconfiguredStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, nil)
	if err := manager.RunUntilIdle(context.Background()); err == nil {
		t.Fatal("expected error when stages are not configured")
	}
}

func TestHealthChecks(t *testing.T) {
	transcriber := &scriptedHandler{name: "transcriber"}
	translator := &scriptedHandler{name: "translator"}
	compositor := &scriptedHandler{name: "compositor"}
	manager, _ := newManager(t, transcriber, translator, compositor)

	checks := manager.HealthChecks(context.Background())
	if len(checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(checks))
	}
	for _, health := range checks {
		if !health.Ready {
			t.Fatalf("expected ready check, got %+v", health)
		}
	}
}
