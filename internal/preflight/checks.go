package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"subweave/internal/config"
	"subweave/internal/deps"
	"subweave/internal/services/translate"
	"subweave/internal/transcribe"
)

// minFreeBytes is the disk headroom required in the staging directory.
// Extracted WAV audio runs around 115 MB per hour of video; one gigabyte
// covers several items plus WhisperX JSON output.
const minFreeBytes = 1 << 30

// CheckSystemDeps evaluates the external binaries the pipeline requires.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction and subtitle burn-in",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
		{
			Name:        "uvx",
			Command:     transcribe.UVXCommand,
			Description: "Required for WhisperX-driven transcription",
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has headroom for
// extracted audio and transcripts.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GB free, need at least %.1f GB)",
			path, float64(free)/(1<<30), float64(minFreeBytes)/(1<<30))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GB free)", path, float64(free)/(1<<30))}
}

// CheckTranslation verifies that the translation API is reachable and the key
// is valid. It uses a 30-second timeout and a single attempt (no retries).
func CheckTranslation(ctx context.Context, cfg config.Translation) Result {
	const name = "Translation API"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := translate.NewClient(translate.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, translate.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeTranslationError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeTranslationError produces a human-readable summary for health check failures.
func summarizeTranslationError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (translation API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (translation API unreachable)"
	}
	return err.Error()
}
