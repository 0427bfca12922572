package subtitle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"subweave/internal/config"
	"subweave/internal/logging"
	"subweave/internal/queue"
	"subweave/internal/services"
	"subweave/internal/stage"
	"subweave/internal/staging"
)

const stageName = "translate"

// Stage integrates segment translation and SRT generation with the workflow
// manager. It fans out one request per transcript segment, assembles the
// translated document in input order, and writes it to the item's staging
// directory.
type Stage struct {
	store  *queue.Store
	cfg    *config.Config
	client Client
	logger *slog.Logger
}

// NewStage constructs a workflow stage that translates queue items.
func NewStage(store *queue.Store, cfg *config.Config, client Client, logger *slog.Logger) *Stage {
	return &Stage{
		store:  store,
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "translate-stage"),
	}
}

// SetLogger allows the workflow manager to route stage logs into the item-scoped log.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = logging.NewComponentLogger(logger, "translate-stage")
}

// Prepare primes queue progress fields before executing the stage.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if s == nil || s.client == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, stageName, "prepare", "Translation stage is not configured", nil)
	}
	item.SetProgress("Translating", "Loading transcript", 0)
	return s.store.Update(ctx, item)
}

// Execute translates the queue item's transcript and writes the SRT document.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	start := time.Now()
	if s == nil || s.client == nil || s.cfg == nil {
		return services.Wrap(services.ErrConfiguration, stageName, "execute", "Translation stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, stageName, "execute", "Queue item is nil", nil)
	}

	segments, err := DecodeSegments(item.SegmentsJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "decode", "Failed to decode transcript segments", err)
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)

	sourceLang := item.SourceLanguage
	if item.DetectedLanguage != "" {
		sourceLang = item.DetectedLanguage
	}

	item.SetProgress("Translating", fmt.Sprintf("Translating %d segments", len(segments)), 10)
	if err := s.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "progress", "Failed to persist progress", err)
	}

	translator := NewTranslator(
		s.client,
		WithWorkers(s.cfg.Translation.MaxConcurrent),
		WithRequestTimeout(time.Duration(s.cfg.Translation.TimeoutSeconds)*time.Second),
		WithLogger(logger),
	)
	translated, report, err := translator.Translate(ctx, segments, sourceLang, item.TargetLanguage)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, stageName, "translate", "Translation batch failed", err)
	}

	document, err := Build(translated)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "build", "Failed to build subtitle document", err)
	}

	workDir, err := staging.EnsureItemDir(s.cfg, item.ID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "staging", "Failed to create staging directory", err)
	}
	subtitlePath := filepath.Join(workDir, staging.SubtitleFileName(item.SourcePath, item.TargetLanguage))
	if err := os.WriteFile(subtitlePath, []byte(document), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "write", "Failed to write subtitle file", err)
	}

	item.SubtitleFile = subtitlePath
	item.TranslationFailures = len(report.Failures)
	item.SetProgress("Translating", fmt.Sprintf("Translated %d/%d segments", report.Requested-len(report.Failures), report.Requested), 100)

	logger.Info("translation complete",
		logging.Int("segments", report.Requested),
		logging.Int("failures", len(report.Failures)),
		logging.String("subtitle_file", subtitlePath),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// HealthCheck verifies the translation client is ready to serve requests.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "translator"
	if s == nil || s.client == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if err := s.client.Available(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
