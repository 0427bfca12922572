package compositor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"log/slog"

	"subweave/internal/config"
	"subweave/internal/logging"
	"subweave/internal/media"
	"subweave/internal/queue"
	"subweave/internal/services"
	"subweave/internal/stage"
	"subweave/internal/staging"
	"subweave/internal/subtitle"
)

const stageName = "composite"

// Stage integrates subtitle compositing with the workflow manager.
type Stage struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewStage constructs a workflow stage that composites queue items.
func NewStage(store *queue.Store, cfg *config.Config, logger *slog.Logger) *Stage {
	return &Stage{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "composite-stage"),
	}
}

// SetLogger allows the workflow manager to route stage logs into the item-scoped log.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "composite-stage")
}

// Prepare primes queue progress fields before executing the stage.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if s == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, stageName, "prepare", "Compositor stage is not configured", nil)
	}
	item.SetProgress("Compositing", "Preparing output", 0)
	return s.store.Update(ctx, item)
}

// Execute burns the subtitle track into the source video and records the
// final output path on the item.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	start := time.Now()
	if s == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, stageName, "execute", "Compositor stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, stageName, "execute", "Queue item is nil", nil)
	}
	if item.SubtitleFile == "" {
		return services.Wrap(services.ErrValidation, stageName, "execute", "Item has no subtitle file", nil)
	}
	if _, err := os.Stat(item.SubtitleFile); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "execute", "Subtitle file is missing", err)
	}

	logger := logging.WithContext(ctx, s.logger)
	s.checkSubtitleBounds(ctx, item, logger)

	if err := os.MkdirAll(s.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "output", "Failed to create output directory", err)
	}
	outputPath := filepath.Join(s.cfg.Paths.OutputDir, staging.OutputFileName(item.SourcePath, item.TargetLanguage))

	item.SetProgress("Compositing", "Burning subtitles", 10)
	if err := s.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "progress", "Failed to persist progress", err)
	}

	if err := media.BurnSubtitles(ctx, s.cfg.FFmpegBinary(), item.SourcePath, item.SubtitleFile, outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "burn", "Subtitle burn-in failed", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "verify", "Composited output is missing", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, stageName, "verify", "Composited output is empty", nil)
	}

	item.FinalFile = outputPath
	item.SetProgress("Compositing", "Output ready", 100)

	// Staging files for this item are no longer needed. A cleanup failure is
	// not worth failing a finished video over.
	if err := staging.RemoveItemDir(s.cfg, item.ID); err != nil {
		logger.Warn("failed to remove staging directory",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
	}

	logger.Info("composite complete",
		logging.String("final_file", outputPath),
		logging.Int64("bytes", info.Size()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// checkSubtitleBounds warns when the subtitle track runs past the end of the
// video, which usually means the transcript belongs to a different cut. The
// check is advisory: probe failures and empty documents are ignored.
func (s *Stage) checkSubtitleBounds(ctx context.Context, item *queue.Item, logger *slog.Logger) {
	data, err := os.ReadFile(item.SubtitleFile)
	if err != nil {
		return
	}
	_, last, ok := subtitle.DocumentBounds(string(data))
	if !ok {
		return
	}
	probe, err := media.Inspect(ctx, s.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return
	}
	if duration := probe.DurationSeconds(); duration > 0 && last > duration+boundsSlackSeconds {
		logger.Warn("subtitle track extends past video duration",
			logging.Float64("last_cue_end", last),
			logging.Float64("video_duration", duration),
		)
	}
}

// boundsSlackSeconds absorbs rounding between container duration and the last
// cue end before the bounds check complains.
const boundsSlackSeconds = 5.0

// HealthCheck verifies ffmpeg is available and the output directory is usable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "compositor"
	if s == nil || s.cfg == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if _, err := exec.LookPath(s.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("%s not found in PATH", s.cfg.FFmpegBinary()))
	}
	return stage.Healthy(name)
}
