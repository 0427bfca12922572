package transcribe

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

const stageName = "transcribe"

// Stage integrates WhisperX transcription with the workflow manager. It
// extracts a mono WAV from the source container, runs the engine against it,
// and persists the resulting segments on the queue item. The intermediate WAV
// is removed before the stage returns, success or failure.
type Stage struct {
	store   *queue.Store
	cfg     *config.Config
	service *Service
	logger  *slog.Logger
}

// NewStage constructs a workflow stage that transcribes queue items.
func NewStage(store *queue.Store, cfg *config.Config, service *Service, logger *slog.Logger) *Stage {
	return &Stage{
		store:   store,
		cfg:     cfg,
		service: service,
		logger:  logging.NewComponentLogger(logger, "transcribe-stage"),
	}
}

// SetLogger allows the workflow manager to route stage logs into the item-scoped log.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "transcribe-stage")
}

// Prepare primes queue progress fields before executing the stage.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if s == nil || s.service == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, stageName, "prepare", "Transcription stage is not configured", nil)
	}
	item.SetProgress("Transcribing", "Inspecting source", 0)
	return s.store.Update(ctx, item)
}

// Execute transcribes the queue item's source video.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	start := time.Now()
	if s == nil || s.service == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, stageName, "execute", "Transcription stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, stageName, "execute", "Queue item is nil", nil)
	}

	logger := logging.WithContext(ctx, s.logger)

	probe, err := media.Inspect(ctx, s.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "probe", "Failed to inspect source video", err)
	}
	if !probe.HasVideoStream() {
		return services.Wrap(services.ErrValidation, stageName, "probe", "Source file carries no video stream", nil)
	}
	audioIndex := probe.FirstAudioStreamIndex()
	if audioIndex < 0 {
		return services.Wrap(services.ErrValidation, stageName, "probe", "Source file carries no audio stream", nil)
	}

	workDir, err := staging.EnsureItemDir(s.cfg, item.ID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "staging", "Failed to create staging directory", err)
	}
	wavPath := filepath.Join(workDir, "audio.wav")

	item.SetProgress("Transcribing", "Extracting audio", 10)
	if err := s.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "progress", "Failed to persist progress", err)
	}

	if err := media.ExtractAudio(ctx, s.cfg.FFmpegBinary(), item.SourcePath, audioIndex, wavPath); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "extract", "Audio extraction failed", err)
	}
	// The WAV only exists to feed the engine; drop it no matter how the
	// stage ends. Failures are logged, never escalated.
	defer func() {
		if removeErr := os.Remove(wavPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warn("failed to remove extracted audio",
				logging.String("path", wavPath),
				logging.Error(removeErr),
			)
		}
	}()

	item.SetProgress("Transcribing", fmt.Sprintf("Running WhisperX (%s)", s.service.Model()), 30)
	if err := s.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "progress", "Failed to persist progress", err)
	}

	result, err := s.service.TranscribeFile(ctx, wavPath, workDir, item.SourceLanguage)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "whisperx", "Transcription failed", err)
	}
	if len(result.Segments) == 0 {
		logger.Warn("transcription produced no segments",
			logging.String("source", item.SourcePath),
		)
	}

	encoded, err := subtitle.EncodeSegments(result.Segments)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "encode", "Failed to encode transcript segments", err)
	}
	item.SegmentsJSON = encoded
	item.DetectedLanguage = result.Language
	item.SetProgress("Transcribing", fmt.Sprintf("Transcribed %d segments", len(result.Segments)), 100)

	logger.Info("transcription complete",
		logging.Int("segments", len(result.Segments)),
		logging.String("detected_language", result.Language),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// HealthCheck verifies the external tools transcription depends on.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if s == nil || s.service == nil || s.cfg == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	for _, binary := range []string{UVXCommand, s.cfg.FFmpegBinary(), s.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("%s not found in PATH", binary))
		}
	}
	return stage.Healthy(name)
}
