package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/provider"
	"github.com/buyv-ledger/internal/queue"
	"github.com/buyv-ledger/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPromoterTally, c.handlePromoterTally)
	mux.HandleFunc(queue.TaskLedgerEventPublish, c.handleLedgerEventPublish)
}

func (c *Consumer) handlePromoterTally(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promoter_tally_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PromoterTallyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promoter_tally_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.PromoterUID) == "" || strings.TrimSpace(payload.Kind) == "" {
		logger.Debugw("worker_promoter_tally_skip_invalid_payload", "kind", payload.Kind, "promoter_uid", payload.PromoterUID)
		return nil
	}
	if c.TrackingService == nil {
		logger.Warnw("worker_promoter_tally_skip_service_nil", "promoter_uid", payload.PromoterUID)
		return nil
	}
	var at time.Time
	if payload.OccurredAt > 0 {
		at = time.Unix(payload.OccurredAt, 0)
	}
	if err := c.TrackingService.ApplyTally(payload.Kind, payload.PromoterUID, at); err != nil {
		if errors.Is(err, service.ErrTrackingInputInvalid) {
			logger.Debugw("worker_promoter_tally_skip_invalid_input", "promoter_uid", payload.PromoterUID)
			return nil
		}
		logger.Warnw("worker_promoter_tally_failed",
			"kind", payload.Kind,
			"promoter_uid", payload.PromoterUID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleLedgerEventPublish(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_ledger_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LedgerEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_ledger_event_unmarshal_failed", "error", err)
		return err
	}
	if payload.Event.ID == "" || payload.Event.Type == "" {
		logger.Debugw("worker_ledger_event_skip_invalid_payload", "event_id", payload.Event.ID, "event_type", payload.Event.Type)
		return nil
	}
	if c.EventSink == nil {
		logger.Warnw("worker_ledger_event_skip_sink_nil", "event_id", payload.Event.ID)
		return nil
	}
	// 投递失败返回错误，交给 asynq 重试
	return c.EventSink.PublishNow(ctx, payload.Event)
}
