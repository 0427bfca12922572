package media

import (
	"context"
	"encoding/json"
	"testing"
)

const sampleProbeJSON = `{
	"streams": [
		{"index": 0, "codec_name": "h264", "codec_type": "video"},
		{"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "tags": {"language": "eng"}},
		{"index": 2, "codec_name": "ac3", "codec_type": "audio", "channels": 6}
	],
	"format": {
		"filename": "movie.mkv",
		"nb_streams": 3,
		"duration": "5421.376000",
		"format_name": "matroska,webm"
	}
}`

func parseSampleProbe(t *testing.T) ProbeResult {
	t.Helper()
	var result ProbeResult
	if err := json.Unmarshal([]byte(sampleProbeJSON), &result); err != nil {
		t.Fatalf("unmarshal probe json: %v", err)
	}
	return result
}

func TestProbeResultDurationSeconds(t *testing.T) {
	result := parseSampleProbe(t)
	if got := result.DurationSeconds(); got != 5421.376 {
		t.Fatalf("DurationSeconds = %v", got)
	}

	result.Format.Duration = "garbage"
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("garbage duration should report 0, got %v", got)
	}
	result.Format.Duration = "-3"
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("negative duration should report 0, got %v", got)
	}
}

func TestProbeResultStreamSelection(t *testing.T) {
	result := parseSampleProbe(t)
	if !result.HasVideoStream() {
		t.Fatal("sample has a video stream")
	}
	if idx := result.FirstAudioStreamIndex(); idx != 1 {
		t.Fatalf("FirstAudioStreamIndex = %d, want 1", idx)
	}

	audioOnly := ProbeResult{Streams: []ProbeStream{{Index: 0, CodecType: "AUDIO"}}}
	if audioOnly.HasVideoStream() {
		t.Fatal("audio-only container has no video stream")
	}
	if idx := audioOnly.FirstAudioStreamIndex(); idx != 0 {
		t.Fatalf("codec type matching should be case-insensitive, got %d", idx)
	}

	silent := ProbeResult{Streams: []ProbeStream{{Index: 0, CodecType: "video"}}}
	if idx := silent.FirstAudioStreamIndex(); idx != -1 {
		t.Fatalf("silent container should report -1, got %d", idx)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/tmp/simple.srt", "/tmp/simple.srt"},
		{`C:\media\movie.srt`, `C\:\\media\\movie.srt`},
		{"/tmp/it's here.srt", `/tmp/it\'s here.srt`},
		{"/tmp/a[1],b;c.srt", `/tmp/a\[1\]\,b\;c.srt`},
	}
	for _, tc := range cases {
		if got := escapeFilterPath(tc.in); got != tc.want {
			t.Fatalf("escapeFilterPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBurnSubtitlesValidatesArguments(t *testing.T) {
	ctx := context.Background()
	if err := BurnSubtitles(ctx, "ffmpeg", "", "/s.srt", "/out.mkv"); err == nil {
		t.Fatal("expected error for empty video path")
	}
	if err := BurnSubtitles(ctx, "ffmpeg", "/v.mkv", "", "/out.mkv"); err == nil {
		t.Fatal("expected error for empty subtitle path")
	}
	if err := BurnSubtitles(ctx, "ffmpeg", "/v.mkv", "/s.srt", ""); err == nil {
		t.Fatal("expected error for empty output path")
	}
}
