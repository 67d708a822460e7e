package app

import (
	"context"
	"errors"

	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/provider"
	"github.com/buyv-ledger/internal/router"
	"github.com/buyv-ledger/internal/tracing"
	"github.com/buyv-ledger/internal/worker"
)

// BuildRunner 按启动模式装配服务
func BuildRunner(opts Options) (*Runner, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	opts.Mode = mode

	shutdownTracing, err := tracing.Init(&cfg.Tracing)
	if err != nil {
		return nil, err
	}
	container := provider.NewContainer(cfg)

	var services []Service
	if opts.runsAPI() {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}

	// 队列消费按配置启用，对账循环始终运行
	if opts.runsWorker() {
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				container.Close()
				_ = shutdownTracing(context.Background())
				return nil, err
			}
			services = append(services, workerService)
		} else {
			logger.Warnw("app_queue_worker_disabled", "mode", mode)
		}
		services = append(services, worker.NewReconcileLoop(container.ReconcileService, cfg.Ledger.ReconcileIntervalSeconds))
	}

	runner := NewRunner(services...)
	runner.OnShutdown(shutdownTracing)
	runner.OnShutdown(func(context.Context) error {
		container.Close()
		return nil
	})
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	opts.Mode = mode
	runner, err := BuildRunner(opts)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Addr(),
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
		"kafka_enabled", opts.Config.Kafka.Enabled,
	)
	return RunWithOptions(runner, opts)
}
