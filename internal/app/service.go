package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultStopTimeout = 10 * time.Second

// Service 可启动/停止的长期运行组件
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 统一管理服务生命周期
// 任一服务出错或收到退出信号时逆序停止全部服务，再逆序执行清理函数
type Runner struct {
	services []Service
	closers  []func(ctx context.Context) error
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// OnShutdown 注册清理函数，后注册的先执行
func (r *Runner) OnShutdown(fn func(ctx context.Context) error) {
	if r == nil || fn == nil {
		return
	}
	r.closers = append(r.closers, fn)
}

// RunWithOptions 运行服务并监听系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 阻塞运行直到 ctx 结束或某个服务返回错误；正常退出返回 nil
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		if svc == nil {
			return errors.New("service is nil")
		}
		group.Go(func() error {
			log.Infow("service_start", "service", svc.Name())
			defer log.Infow("service_exit", "service", svc.Name())
			if err := svc.Start(groupCtx); err != nil {
				return fmt.Errorf("%s: %w", svc.Name(), err)
			}
			return nil
		})
	}
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()

	var runErr error
	select {
	case <-groupCtx.Done():
	case runErr = <-done:
		done <- runErr
	}

	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	r.stopAll(stopCtx, log)

	select {
	case runErr = <-done:
	case <-stopCtx.Done():
		log.Warnw("service_stop_timeout", "timeout", stopTimeout.String())
	}
	r.runClosers(stopCtx, log)

	if runErr == nil || errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// stopAll 逆序停止：先停 API 不再接收新请求，再停后台任务
func (r *Runner) stopAll(ctx context.Context, log *zap.SugaredLogger) {
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(ctx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}

func (r *Runner) runClosers(ctx context.Context, log *zap.SugaredLogger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			log.Errorw("service_cleanup_failed", "error", err)
		}
	}
}
