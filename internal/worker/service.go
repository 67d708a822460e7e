package worker

import (
	"context"
	"errors"
	"time"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/queue"
	"github.com/buyv-ledger/internal/service"

	"github.com/hibiken/asynq"
)

const defaultReconcileInterval = 10 * time.Minute

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动消费并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束，超时返回 ctx 错误
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.server.Shutdown()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReconcileLoop 定时钱包对账，只记录差异不修正
type ReconcileLoop struct {
	reconciler *service.ReconcileService
	interval   time.Duration
	stop       chan struct{}
}

// NewReconcileLoop 创建对账循环，intervalSeconds 小于等于 0 时使用默认间隔
func NewReconcileLoop(reconciler *service.ReconcileService, intervalSeconds int) *ReconcileLoop {
	interval := time.Duration(intervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &ReconcileLoop{
		reconciler: reconciler,
		interval:   interval,
		stop:       make(chan struct{}),
	}
}

// Name 服务名称
func (l *ReconcileLoop) Name() string {
	return "reconcile"
}

// Start 启动对账循环，阻塞直到 ctx 结束或 Stop
func (l *ReconcileLoop) Start(ctx context.Context) error {
	if l == nil || l.reconciler == nil {
		return errors.New("reconcile loop not initialized")
	}
	l.RunOnce(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		case <-ticker.C:
			l.RunOnce(ctx)
		}
	}
}

// Stop 停止对账循环
func (l *ReconcileLoop) Stop(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	return nil
}

// RunOnce 执行一轮全量对账
func (l *ReconcileLoop) RunOnce(ctx context.Context) *service.ReconcileSummary {
	start := time.Now()
	summary, err := l.reconciler.ReconcileAll(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warnw("worker_reconcile_failed", "error", err)
		}
		return summary
	}
	logger.Debugw("worker_reconcile_elapsed", "elapsed_ms", time.Since(start).Milliseconds())
	return summary
}
