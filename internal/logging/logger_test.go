package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "subweave.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("transcription started", String("source", "movie.mkv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	require.Equal(t, "transcription started", record["msg"])
	require.Equal(t, "info", record["level"])
	require.Equal(t, "movie.mkv", record["source"])
	require.Contains(t, record, "ts")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "log format")
}

func TestConsoleHandlerLine(t *testing.T) {
	buf := &bytes.Buffer{}
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(buf, lvl))

	NewComponentLogger(logger, "translate-stage").Info("segment done",
		Int("index", 3), String("text", "two words"))

	line := buf.String()
	require.Contains(t, line, " INFO translate-stage: segment done")
	require.Contains(t, line, "index=3")
	// Values with spaces are quoted so lines stay machine-splittable.
	require.Contains(t, line, `text="two words"`)
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(buf, lvl))

	logger.Info("dropped")
	logger.Warn("kept")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "kept")
}

func TestParseLevelDefaults(t *testing.T) {
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelInfo, parseLevel("bogus"))
	require.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	require.Equal(t, slog.LevelError, parseLevel("error"))
}
