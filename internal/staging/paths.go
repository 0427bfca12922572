// Package staging computes the per-item working directories that hold
// extracted audio, transcripts, and generated subtitles while a video moves
// through the pipeline.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"subweave/internal/config"
)

// ItemDir returns the working directory for one queue item.
func ItemDir(cfg *config.Config, itemID int64) string {
	return filepath.Join(cfg.Paths.StagingDir, fmt.Sprintf("item-%d", itemID))
}

// EnsureItemDir creates the working directory for one queue item.
func EnsureItemDir(cfg *config.Config, itemID int64) (string, error) {
	dir := ItemDir(cfg, itemID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir %q: %w", dir, err)
	}
	return dir, nil
}

// RemoveItemDir deletes the working directory for one queue item.
// Missing directories are not an error.
func RemoveItemDir(cfg *config.Config, itemID int64) error {
	dir := ItemDir(cfg, itemID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove staging dir %q: %w", dir, err)
	}
	return nil
}

// SubtitleFileName derives the SRT file name for a source video and target
// language tag, e.g. "movie.es.srt".
func SubtitleFileName(sourcePath, targetLang string) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	tag := strings.TrimSpace(targetLang)
	if tag == "" {
		return base + ".srt"
	}
	return base + "." + tag + ".srt"
}

// OutputFileName derives the final video file name for a source video and
// target language tag, preserving the container extension.
func OutputFileName(sourcePath, targetLang string) string {
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), ext)
	tag := strings.TrimSpace(targetLang)
	if tag == "" {
		return base + ".subtitled" + ext
	}
	return base + "." + tag + ext
}
