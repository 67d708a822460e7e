package queue

import (
	"context"
	"errors"

	"github.com/buyv-ledger/internal/events"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"

	"github.com/hibiken/asynq"
)

// LedgerEventSink 账本事件出口：队列可用时异步投递，否则直接发布
type LedgerEventSink struct {
	client    *Client
	publisher events.Publisher
}

// NewLedgerEventSink 创建账本事件出口
func NewLedgerEventSink(client *Client, publisher events.Publisher) *LedgerEventSink {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LedgerEventSink{client: client, publisher: publisher}
}

// Emit 投递事件，失败只记录日志，不影响已提交的账本变更
func (s *LedgerEventSink) Emit(ctx context.Context, event events.Event) {
	if s == nil {
		return
	}
	if s.client.Enabled() {
		err := s.client.EnqueueLedgerEvent(LedgerEventPayload{Event: event})
		if err == nil {
			metrics.EventsPublishedTotal.WithLabelValues(event.Type, "queued").Inc()
			return
		}
		// 同一事件已在队列中
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return
		}
		logger.Warnw("ledger_event_enqueue_failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
	}
	_ = s.PublishNow(ctx, event)
}

// PublishNow 同步发布事件
func (s *LedgerEventSink) PublishNow(ctx context.Context, event events.Event) error {
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(event.Type, "failed").Inc()
		logger.Warnw("ledger_event_publish_failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		return err
	}
	metrics.EventsPublishedTotal.WithLabelValues(event.Type, "published").Inc()
	return nil
}

// Close 关闭发布器
func (s *LedgerEventSink) Close() error {
	if s == nil {
		return nil
	}
	return s.publisher.Close()
}
