package events

import (
	"time"

	"github.com/google/uuid"
)

// Event 账本领域事件
type Event struct {
	ID         string                 `json:"event_id"`
	Type       string                 `json:"event_type"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// New 创建事件，Key 决定 kafka 分区
func New(eventType, key string, payload map[string]interface{}) Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
