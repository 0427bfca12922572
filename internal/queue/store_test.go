package queue_test

import (
	"context"
	"path/filepath"
	"testing"

	"subweave/internal/queue"
	"subweave/internal/testsupport"
)

func TestNewVideoAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewVideo(ctx, "/videos/a.mkv", "A", "en", "es")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending", item.Status)
	}
	if item.SourceLanguage != "en" || item.TargetLanguage != "es" {
		t.Fatalf("language pair lost: %+v", item)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("timestamps not recorded")
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/videos/a.mkv" {
		t.Fatalf("unexpected item: %+v", fetched)
	}

	missing, err := store.GetByID(ctx, 9999)
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing item, got %+v", missing)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewVideo(t, store, "/videos/b.mkv", "B")
	item.Status = queue.StatusTranscribed
	item.DetectedLanguage = "de"
	item.SegmentsJSON = `[{"start":0,"end":1,"text":"hallo"}]`
	item.SetProgress("Transcribing", "done", 100)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusTranscribed {
		t.Fatalf("status = %s", fetched.Status)
	}
	if fetched.DetectedLanguage != "de" || fetched.SegmentsJSON == "" {
		t.Fatalf("fields lost: %+v", fetched)
	}
	if fetched.ProgressPercent != 100 || fetched.ProgressStage != "Transcribing" {
		t.Fatalf("progress lost: %+v", fetched)
	}
}

func TestNextForStatusesReturnsOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewVideo(t, store, "/videos/1.mkv", "One")
	testsupport.NewVideo(t, store, "/videos/2.mkv", "Two")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest item %d, got %+v", first.ID, next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusCompositing)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no item, got %+v", none)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewVideo(t, store, "/videos/a.mkv", "A")
	testsupport.NewVideo(t, store, "/videos/b.mkv", "B")
	a.SetFailed("boom")
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	failed, err := store.List(ctx, queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != a.ID {
		t.Fatalf("unexpected failed list: %+v", failed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}

func TestRetryFailedResetsToPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewVideo(t, store, "/videos/a.mkv", "A")
	item.SetFailed("transcribe failed")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if count != 1 {
		t.Fatalf("reset count = %d, want 1", count)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("item not reset: %+v", fetched)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		stuck queue.Status
		want  queue.Status
	}{
		{stuck: queue.StatusTranscribing, want: queue.StatusPending},
		{stuck: queue.StatusTranslating, want: queue.StatusTranscribed},
		{stuck: queue.StatusCompositing, want: queue.StatusTranslated},
	}
	ids := make([]int64, 0, len(cases))
	for i, tc := range cases {
		item := testsupport.NewVideo(t, store, filepath.Join("/videos", string(rune('a'+i))+".mkv"), "Item")
		item.Status = tc.stuck
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if count != int64(len(cases)) {
		t.Fatalf("reset %d items, want %d", count, len(cases))
	}
	for i, tc := range cases {
		fetched, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if fetched.Status != tc.want {
			t.Fatalf("stuck %s rolled back to %s, want %s", tc.stuck, fetched.Status, tc.want)
		}
	}
}

func TestStatsAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewVideo(t, store, "/videos/a.mkv", "A")
	b := testsupport.NewVideo(t, store, "/videos/b.mkv", "B")
	b.Status = queue.StatusCompleted
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	count, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if count != 2 {
		t.Fatalf("cleared %d, want 2", count)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Pending "); !ok || status != queue.StatusPending {
		t.Fatalf("ParseStatus pending failed: %v %v", status, ok)
	}
	if _, ok := queue.ParseStatus("nonsense"); ok {
		t.Fatal("expected unknown status to fail")
	}
	if _, ok := queue.ParseStatus(""); ok {
		t.Fatal("expected empty status to fail")
	}
}
