package workflow

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"subweave/internal/config"
	"subweave/internal/logging"
	"subweave/internal/queue"
	"subweave/internal/stage"
)

// StageSet collects the handlers for each pipeline stage.
type StageSet struct {
	Transcriber stage.Handler
	Translator  stage.Handler
	Compositor  stage.Handler
}

// pipelineStage binds a handler to the status transition it owns.
type pipelineStage struct {
	name       string
	handler    stage.Handler
	start      queue.Status
	processing queue.Status
	done       queue.Status
}

// Manager owns the poll loop that moves queue items between stages.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	stages       []pipelineStage
	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager. Stages must be configured with
// ConfigureStages before the manager can process anything.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	interval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: interval,
	}
}

// ConfigureStages wires the stage handlers into the status pipeline. Handlers
// that accept a logger get the manager's.
func (m *Manager) ConfigureStages(set StageSet) {
	m.stages = []pipelineStage{
		{name: "transcribe", handler: set.Transcriber, start: queue.StatusPending, processing: queue.StatusTranscribing, done: queue.StatusTranscribed},
		{name: "translate", handler: set.Translator, start: queue.StatusTranscribed, processing: queue.StatusTranslating, done: queue.StatusTranslated},
		{name: "composite", handler: set.Compositor, start: queue.StatusTranslated, processing: queue.StatusCompositing, done: queue.StatusCompleted},
	}
	for _, ps := range m.stages {
		if aware, ok := ps.handler.(interface{ SetLogger(*slog.Logger) }); ok {
			aware.SetLogger(m.logger)
		}
	}
}

// HealthChecks reports the readiness of every configured stage.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, ps := range m.stages {
		if ps.handler == nil {
			checks = append(checks, stage.Unhealthy(ps.name, "not configured"))
			continue
		}
		checks = append(checks, ps.handler.HealthCheck(ctx))
	}
	return checks
}

// nextWork finds the oldest actionable item, draining later stages before
// starting new items so partially-processed videos finish first.
func (m *Manager) nextWork(ctx context.Context) (*queue.Item, pipelineStage, error) {
	for i := len(m.stages) - 1; i >= 0; i-- {
		ps := m.stages[i]
		if ps.handler == nil {
			continue
		}
		item, err := m.store.NextForStatuses(ctx, ps.start)
		if err != nil {
			return nil, pipelineStage{}, err
		}
		if item != nil {
			return item, ps, nil
		}
	}
	return nil, pipelineStage{}, nil
}
