package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subweave/internal/logging"
	"subweave/internal/queue"
	"subweave/internal/services"
)

// processItem moves one item through one stage: transition to the processing
// status, Prepare, Execute, then record the outcome. A stage failure marks
// the item failed and returns nil so the rest of the batch keeps moving;
// only queue persistence errors and context cancellation propagate.
func (m *Manager) processItem(ctx context.Context, ps pipelineStage, item *queue.Item) error {
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithStage(ctx, ps.name)
	logger := logging.WithContext(ctx, m.logger)

	item.Status = ps.processing
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("transition %q to %s: %w", item.Title, ps.processing, err)
	}

	logger.Info("stage started",
		logging.String("title", item.Title),
		logging.String(logging.FieldEventType, "stage_start"),
	)
	start := time.Now()

	if err := ps.handler.Prepare(ctx, item); err != nil {
		return m.handleStageFailure(ctx, ps, item, err)
	}
	if err := ps.handler.Execute(ctx, item); err != nil {
		return m.handleStageFailure(ctx, ps, item, err)
	}

	item.Status = ps.done
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("complete %q at %s: %w", item.Title, ps.done, err)
	}
	logger.Info("stage complete",
		logging.String("title", item.Title),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "stage_complete"),
	)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, ps pipelineStage, item *queue.Item, stageErr error) error {
	if errors.Is(stageErr, context.Canceled) {
		return stageErr
	}
	logger := logging.WithContext(ctx, m.logger)
	logger.Error("stage failed",
		logging.String("title", item.Title),
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failed"),
	)
	item.SetFailed(failureMessage(ps.name, stageErr))
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("record failure for %q: %w", item.Title, err)
	}
	return nil
}

// failureMessage condenses a stage error for queue display.
func failureMessage(stageName string, err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return fmt.Sprintf("%s failed: configuration problem: %v", stageName, err)
	case errors.Is(err, services.ErrExternalTool):
		return fmt.Sprintf("%s failed: external tool error: %v", stageName, err)
	case errors.Is(err, services.ErrUnavailable):
		return fmt.Sprintf("%s failed: dependency unavailable: %v", stageName, err)
	default:
		return fmt.Sprintf("%s failed: %v", stageName, err)
	}
}
