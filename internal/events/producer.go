package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher 事件投递接口
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Producer kafka 事件生产者
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewPublisher 根据配置创建投递器，未启用 kafka 时返回空实现
func NewPublisher(cfg *config.KafkaConfig) Publisher {
	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		return NopPublisher{}
	}
	return NewProducer(cfg.Brokers, cfg.Topic)
}

// NewProducer 创建 kafka 生产者
func NewProducer(brokers []string, topic string) *Producer {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "ledger-events"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &Producer{writer: writer, topic: topic}
}

// Publish 投递事件
func (p *Producer) Publish(ctx context.Context, event Event) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}
	logger.Debugw("ledger_event_published",
		"topic", p.topic,
		"event_id", event.ID,
		"event_type", event.Type,
		"key", event.Key,
	)
	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func buildMessage(event Event) (kafka.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return kafka.Message{
		Key:   []byte(event.Key),
		Value: body,
		Time:  occurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}, nil
}

// NopPublisher kafka 未启用时的空实现
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(_ context.Context, event Event) error {
	logger.Debugw("ledger_event_dropped", "event_type", event.Type, "key", event.Key)
	return nil
}

// Close 无操作
func (NopPublisher) Close() error { return nil }
