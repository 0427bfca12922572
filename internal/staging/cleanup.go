package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subweave/internal/config"
	"subweave/internal/logging"
)

// CleanStaleResult summarizes a sweep of the staging directory.
type CleanStaleResult struct {
	Removed []string
	Kept    int
	Errors  []CleanupError
}

// CleanupError records a directory that could not be removed.
type CleanupError struct {
	Path string
	Err  error
}

// CleanStale removes per-item working directories that have not been touched
// within maxAge. Items still moving through the pipeline update their
// directories as stages run, so anything old enough to trip maxAge belongs to
// a run that died without cleaning up after itself.
func CleanStale(cfg *config.Config, maxAge time.Duration, logger *slog.Logger) (CleanStaleResult, error) {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("read staging dir %q: %w", cfg.Paths.StagingDir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "item-") {
			continue
		}
		path := filepath.Join(cfg.Paths.StagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Err: err})
			continue
		}
		if info.ModTime().After(cutoff) {
			result.Kept++
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Err: err})
			logger.Warn("failed to remove stale staging dir",
				logging.Args(logging.String("path", path), logging.Error(err))...)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale staging dir",
			logging.Args(logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime()).Truncate(time.Second)))...)
	}
	return result, nil
}
