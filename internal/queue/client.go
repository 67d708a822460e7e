package queue

import (
	"time"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 推广统计等可丢弃任务
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 账本事件队列
	CriticalQueue = constants.QueueCritical

	ledgerEventMaxRetry = 8
	ledgerEventTimeout  = 30 * time.Second
	defaultConcurrency  = 10
)

// Client 队列客户端封装，未启用时所有投递都是空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueuePromoterTally 推送推广统计任务，统计丢失可接受，不重试
func (c *Client) EnqueuePromoterTally(payload PromoterTallyPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewPromoterTallyTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, tallyOptions(), opts)
}

// EnqueueLedgerEvent 推送账本事件投递任务，事件 ID 作为任务 ID 防止重复入队
func (c *Client) EnqueueLedgerEvent(payload LedgerEventPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewLedgerEventTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, ledgerEventOptions(payload.Event.ID), opts)
}

func (c *Client) enqueue(task *asynq.Task, base, extra []asynq.Option) error {
	_, err := c.client.Enqueue(task, append(base, extra...)...)
	return err
}

func tallyOptions() []asynq.Option {
	return []asynq.Option{asynq.Queue(DefaultQueue), asynq.MaxRetry(0)}
}

func ledgerEventOptions(eventID string) []asynq.Option {
	options := []asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(ledgerEventMaxRetry),
		asynq.Timeout(ledgerEventTimeout),
	}
	if eventID != "" {
		options = append(options, asynq.TaskID("ledger-event:"+eventID))
	}
	return options
}

// BuildServerConfig 生成队列服务配置，账本事件队列权重更高
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 6, DefaultQueue: 3},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), serverCfg
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		return asynq.RedisClientOpt{Addr: config.RedisEndpoint{}.Addr()}
	}
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
