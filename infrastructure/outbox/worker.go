/*
Package outbox drains committed outbound events to the realtime
dispatcher. Business operations enqueue events inside their own
transaction; because this worker reads through a separate session it can
only ever see rows whose transaction committed, which is what keeps the
"dispatch strictly after commit" contract. Dispatch failures are retried
a bounded number of times and never reach the operation that enqueued
the event.
*/
package outbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storeassist/domain/model"
	"storeassist/infrastructure/realtime"
	"storeassist/pkg/logger"
	"storeassist/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// staleClaimAfter bounds how long a PROCESSING claim may sit before it
// is treated as abandoned by a worker that died mid-batch.
const staleClaimAfter = time.Minute

type Worker struct {
	db           *gorm.DB
	dispatcher   realtime.Dispatcher
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewWorker(db *gorm.DB, dispatcher realtime.Dispatcher, pollInterval time.Duration, batchSize, maxRetries int) (*Worker, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}
	return &Worker{
		db:           db,
		dispatcher:   dispatcher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
	}, nil
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil {
				logger.Error("outbound event batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch dispatches up to batchSize pending events, oldest first.
// Claims abandoned by a crashed worker are returned to the queue first.
func (w *Worker) ProcessBatch(ctx context.Context) error {
	if err := w.requeueStale(ctx); err != nil {
		logger.Warn("requeue of stale outbound event claims failed", zap.Error(err))
	}

	events, err := w.pending(ctx)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if err := w.markProcessing(ctx, ev.ID); err != nil {
			logger.Warn("skipping contended outbound event",
				zap.Uint("event_id", ev.ID), zap.Error(err))
			continue
		}

		if err := w.dispatch(ctx, ev); err != nil {
			logger.Warn("outbound event dispatch failed",
				zap.Uint("event_id", ev.ID),
				zap.String("event", ev.EventName),
				zap.Error(err))
			metrics.OutboundEventsFailed.WithLabelValues(ev.Audience).Inc()
			if err := w.markFailed(ctx, ev); err != nil {
				logger.Error("failed to record outbound event failure",
					zap.Uint("event_id", ev.ID), zap.Error(err))
			}
			continue
		}

		metrics.OutboundEventsPublished.WithLabelValues(ev.Audience).Inc()
		if err := w.markPublished(ctx, ev.ID); err != nil {
			logger.Error("failed to mark outbound event published",
				zap.Uint("event_id", ev.ID), zap.Error(err))
		}
	}
	return nil
}

func (w *Worker) dispatch(ctx context.Context, ev *model.OutboundEvent) error {
	args, err := ev.Args()
	if err != nil {
		return err
	}
	switch ev.Audience {
	case model.AudienceGroup:
		return w.dispatcher.GroupCast(ctx, ev.Target, ev.EventName, args...)
	case model.AudienceUser:
		userID, err := strconv.ParseUint(ev.Target, 10, 64)
		if err != nil {
			return fmt.Errorf("malformed user target %q: %w", ev.Target, err)
		}
		return w.dispatcher.UserCast(ctx, uint(userID), ev.EventName, args...)
	default:
		return fmt.Errorf("unknown audience %q", ev.Audience)
	}
}

func (w *Worker) pending(ctx context.Context) ([]*model.OutboundEvent, error) {
	var events []*model.OutboundEvent
	err := w.db.WithContext(ctx).
		Where("status = ?", model.EventStatusPending).
		Order("created_at ASC, id ASC").
		Limit(w.batchSize).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("load pending outbound events: %w", err)
	}
	return events, nil
}

// requeueStale re-queues events whose PROCESSING claim outlived
// staleClaimAfter, so a worker crash between claim and publish cannot
// strand them forever. An event republished this way may reach the
// audience twice; delivery is at-least-once.
func (w *Worker) requeueStale(ctx context.Context) error {
	result := w.db.WithContext(ctx).Model(&model.OutboundEvent{}).
		Where("status = ? AND updated_at < ?",
			model.EventStatusProcessing, time.Now().Add(-staleClaimAfter)).
		Update("status", model.EventStatusPending)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Warn("requeued stale outbound event claims",
			zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// markProcessing claims the event; the status guard keeps two workers
// from dispatching the same row.
func (w *Worker) markProcessing(ctx context.Context, id uint) error {
	result := w.db.WithContext(ctx).Model(&model.OutboundEvent{}).
		Where("id = ? AND status = ?", id, model.EventStatusPending).
		Update("status", model.EventStatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event %d not pending", id)
	}
	return nil
}

func (w *Worker) markPublished(ctx context.Context, id uint) error {
	return w.db.WithContext(ctx).Model(&model.OutboundEvent{}).
		Where("id = ?", id).
		Update("status", model.EventStatusPublished).Error
}

// markFailed re-queues the event until maxRetries is exhausted, then
// parks it as FAILED.
func (w *Worker) markFailed(ctx context.Context, ev *model.OutboundEvent) error {
	retries := ev.RetryCount + 1
	status := model.EventStatusPending
	if retries >= w.maxRetries {
		status = model.EventStatusFailed
	}
	return w.db.WithContext(ctx).Model(&model.OutboundEvent{}).
		Where("id = ?", ev.ID).
		Updates(map[string]any{
			"status":      status,
			"retry_count": retries,
		}).Error
}
