package provider

import (
	"github.com/buyv-ledger/internal/authz"
	"github.com/buyv-ledger/internal/cache"
	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/events"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/queue"
	"github.com/buyv-ledger/internal/repository"
	"github.com/buyv-ledger/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	EventSink   *queue.LedgerEventSink

	// Repositories
	UserRepo       repository.UserRepository
	OrderRepo      repository.OrderRepository
	CommissionRepo repository.CommissionRepository
	WalletRepo     repository.WalletRepository
	WithdrawalRepo repository.WithdrawalRepository
	ProductRepo    repository.ProductRepository
	TrackingRepo   repository.TrackingRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	RateResolver      *service.CommissionRateResolver
	CommissionEngine  *service.CommissionEngine
	ProductService    *service.ProductService
	OrderService      *service.OrderService
	CommissionService *service.CommissionService
	WalletService     *service.WalletService
	WithdrawalService *service.WithdrawalService
	TrackingService   *service.TrackingService
	ReconcileService  *service.ReconcileService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		EventSink:   queue.NewLedgerEventSink(queueClient, events.NewPublisher(&cfg.Kafka)),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.TrackingRepo = repository.NewTrackingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	ledgerCfg := c.Config.Ledger
	c.AuthService = service.NewAuthService(c.Config.JWT, c.UserRepo)
	c.RateResolver = service.NewCommissionRateResolver(c.ProductRepo, ledgerCfg.Commission)
	c.CommissionEngine = service.NewCommissionEngine(c.CommissionRepo, c.UserRepo, c.WalletRepo, c.RateResolver)
	c.ProductService = service.NewProductService(c.ProductRepo, c.RateResolver)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CommissionRepo, c.WalletRepo, c.CommissionEngine, c.EventSink)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.WalletRepo, c.EventSink)
	c.WalletService = service.NewWalletService(c.WalletRepo)
	c.WithdrawalService = service.NewWithdrawalService(c.WithdrawalRepo, c.WalletRepo, ledgerCfg.Withdrawal, c.EventSink)
	c.TrackingService = service.NewTrackingService(
		c.TrackingRepo,
		c.OrderRepo,
		c.CommissionRepo,
		c.WalletRepo,
		c.CommissionEngine,
		c.QueueClient,
		c.Config.Tracking,
		c.EventSink,
	)
	c.ReconcileService = service.NewReconcileService(c.WalletRepo, c.CommissionRepo, c.WithdrawalRepo)
}

// Close 释放队列客户端与事件发布器
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.EventSink.Close(); err != nil {
		logger.Warnw("provider_close_event_sink_failed", "error", err)
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
