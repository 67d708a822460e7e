package queue

import (
	"encoding/json"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/events"

	"github.com/hibiken/asynq"
)

const (
	// TaskPromoterTally 推广统计累加任务
	TaskPromoterTally = constants.TaskPromoterTally
	// TaskLedgerEventPublish 账本事件投递任务
	TaskLedgerEventPublish = constants.TaskLedgerEventPublish
)

// PromoterTallyPayload 推广统计任务载荷
type PromoterTallyPayload struct {
	Kind        string `json:"kind"`
	PromoterUID string `json:"promoter_uid"`
	OccurredAt  int64  `json:"occurred_at"`
}

// LedgerEventPayload 账本事件任务载荷
type LedgerEventPayload struct {
	Event events.Event `json:"event"`
}

// NewPromoterTallyTask 创建推广统计任务
func NewPromoterTallyTask(payload PromoterTallyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromoterTally, body), nil
}

// NewLedgerEventTask 创建账本事件投递任务
func NewLedgerEventTask(payload LedgerEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerEventPublish, body), nil
}
