package subtitle_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"subweave/internal/subtitle"
	"subweave/internal/testsupport"
)

type stubClient struct {
	translate    func(ctx context.Context, text, source, target string) (string, error)
	availableErr error
}

func (s *stubClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	if s.translate != nil {
		return s.translate(ctx, text, source, target)
	}
	return "übersetzt: " + text, nil
}

func (s *stubClient) Available() error { return s.availableErr }

func TestStageExecuteWritesSubtitleFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/harbor tour.mkv", "Harbor Tour")

	segments := []subtitle.Segment{
		{Start: 0, End: 2, Text: "Hello"},
		{Start: 2, End: 4, Text: "World"},
	}
	encoded, err := subtitle.EncodeSegments(segments)
	if err != nil {
		t.Fatalf("EncodeSegments: %v", err)
	}
	item.SegmentsJSON = encoded
	item.DetectedLanguage = "en"

	stage := subtitle.NewStage(store, cfg, &stubClient{}, nil)
	ctx := context.Background()
	if err := stage.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stage.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.SubtitleFile == "" {
		t.Fatal("expected subtitle file path on item")
	}
	if !strings.HasSuffix(item.SubtitleFile, "harbor tour.es.srt") {
		t.Fatalf("unexpected subtitle file name: %s", item.SubtitleFile)
	}
	if item.TranslationFailures != 0 {
		t.Fatalf("unexpected failures recorded: %d", item.TranslationFailures)
	}

	data, err := os.ReadFile(item.SubtitleFile)
	if err != nil {
		t.Fatalf("read subtitle file: %v", err)
	}
	doc := string(data)
	if subtitle.CountCues(doc) != 2 {
		t.Fatalf("expected 2 cues, got document:\n%s", doc)
	}
	if !strings.Contains(doc, "übersetzt: Hello") || !strings.Contains(doc, "übersetzt: World") {
		t.Fatalf("expected translated text in document:\n%s", doc)
	}
}

func TestStageExecuteGermanToEnglishDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/gespräch.mkv", "Gespräch")
	item.DetectedLanguage = "de"
	item.TargetLanguage = "en"

	encoded, err := subtitle.EncodeSegments([]subtitle.Segment{
		{Start: 0.0, End: 1.2, Text: "Hallo"},
		{Start: 1.2, End: 3.5, Text: "Wie geht's?"},
	})
	if err != nil {
		t.Fatalf("EncodeSegments: %v", err)
	}
	item.SegmentsJSON = encoded

	client := &stubClient{
		translate: func(ctx context.Context, text, source, target string) (string, error) {
			if source != "de" || target != "en" {
				t.Errorf("language pair = %s->%s, want de->en", source, target)
			}
			switch text {
			case "Hallo":
				return "Hello", nil
			case "Wie geht's?":
				return "How are you?", nil
			default:
				return "", errors.New("unexpected text: " + text)
			}
		},
	}
	stage := subtitle.NewStage(store, cfg, client, nil)
	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(item.SubtitleFile)
	if err != nil {
		t.Fatalf("read subtitle file: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,200\nHello\n\n" +
		"2\n00:00:01,200 --> 00:00:03,500\nHow are you?\n\n"
	if string(data) != want {
		t.Fatalf("document mismatch:\n%q\nwant:\n%q", data, want)
	}
}

func TestStageExecuteRecordsPartialFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mkv", "Clip")

	encoded, err := subtitle.EncodeSegments([]subtitle.Segment{
		{Start: 0, End: 1, Text: "keep me"},
		{Start: 1, End: 2, Text: "translate me"},
	})
	if err != nil {
		t.Fatalf("EncodeSegments: %v", err)
	}
	item.SegmentsJSON = encoded

	client := &stubClient{
		translate: func(ctx context.Context, text, source, target string) (string, error) {
			if text == "keep me" {
				return "", errors.New("rate limited")
			}
			return "done", nil
		},
	}
	stage := subtitle.NewStage(store, cfg, client, nil)
	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.TranslationFailures != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", item.TranslationFailures)
	}
	data, err := os.ReadFile(item.SubtitleFile)
	if err != nil {
		t.Fatalf("read subtitle file: %v", err)
	}
	if !strings.Contains(string(data), "keep me") {
		t.Fatalf("failed segment should keep source text:\n%s", data)
	}
}

func TestStageExecuteUnavailableClientFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/clip.mkv", "Clip")

	encoded, err := subtitle.EncodeSegments([]subtitle.Segment{{Start: 0, End: 1, Text: "hi"}})
	if err != nil {
		t.Fatalf("EncodeSegments: %v", err)
	}
	item.SegmentsJSON = encoded

	stage := subtitle.NewStage(store, cfg, &stubClient{availableErr: errors.New("missing key")}, nil)
	if err := stage.Execute(context.Background(), item); err == nil {
		t.Fatal("expected systemic failure to abort the stage")
	}
}

func TestStageExecuteEmptyTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, "/videos/silent.mkv", "Silent")

	stage := subtitle.NewStage(store, cfg, &stubClient{}, nil)
	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data, err := os.ReadFile(item.SubtitleFile)
	if err != nil {
		t.Fatalf("read subtitle file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty document for empty transcript, got %q", data)
	}
}

func TestStageHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	healthy := subtitle.NewStage(store, cfg, &stubClient{}, nil)
	if health := healthy.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected ready, got %+v", health)
	}

	unhealthy := subtitle.NewStage(store, cfg, &stubClient{availableErr: errors.New("missing key")}, nil)
	if health := unhealthy.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected not ready")
	}
}
