package workflow

import (
	"context"
	"errors"
	"time"

	"subweave/internal/logging"
)

// Start begins background processing until Stop is called or the context is
// canceled.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed, err := m.processNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.logger.Warn("queue poll failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_poll_failed"),
			)
		}
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
	}
}

// RunUntilIdle processes items until the queue holds no actionable work.
// Items abandoned mid-stage by an earlier crash are rolled back first so the
// run re-attempts them.
func (m *Manager) RunUntilIdle(ctx context.Context) error {
	if len(m.stages) == 0 {
		return errors.New("workflow stages not configured")
	}
	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		return err
	} else if reset > 0 {
		m.logger.Info("reset stuck items", logging.Int64("count", reset))
	}

	for {
		processed, err := m.processNext(ctx)
		if err != nil {
			return err
		}
		if !processed {
			return nil
		}
	}
}

// processNext runs one stage for the oldest actionable item. It reports
// whether any work was performed. Stage failures mark the item failed and
// count as performed work; only infrastructure errors propagate.
func (m *Manager) processNext(ctx context.Context) (bool, error) {
	item, ps, err := m.nextWork(ctx)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	if err := m.processItem(ctx, ps, item); err != nil {
		return true, err
	}
	return true, nil
}
