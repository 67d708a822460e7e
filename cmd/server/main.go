package main

import (
	"errors"
	"flag"
	"os"
	"strings"
	"syscall"

	"github.com/buyv-ledger/internal/app"
	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/models"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"
)

var errWeakSecret = errors.New("jwt secret is weak or still the default value")

func main() {
	var (
		mode        string
		migrateOnly bool
	)
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.BoolVar(&migrateOnly, "migrate-only", false, "执行数据库迁移后退出")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if _, err := app.ParseMode(mode); err != nil {
		stdLog.Fatalf("启动模式无效: %v", err)
	}
	if err := checkSecret(cfg); err != nil {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("生产环境必须配置强随机 JWT secret: %v", err)
		}
		logger.Warnw("jwt_secret_weak", "mode", cfg.Server.Mode)
	}

	if err := prepareDatabase(cfg); err != nil {
		stdLog.Fatalf("数据库准备失败: %v", err)
	}
	if migrateOnly {
		logger.Infow("migrate_only_done", "driver", cfg.Database.Driver)
		return
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// prepareDatabase 连接数据库、迁移表结构并确保存在管理员账号
func prepareDatabase(cfg *config.Config) error {
	gormLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		gormLevel = gormlogger.Info
	}
	pool := cfg.Database.Pool
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           pool.MaxOpenConns,
		MaxIdleConns:           pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: pool.ConnMaxIdleTimeSeconds,
	}, gormLevel); err != nil {
		return err
	}
	if err := models.AutoMigrate(); err != nil {
		return err
	}
	if _, err := models.InitDefaultAdmin(os.Getenv("LEDGER_DEFAULT_ADMIN_EMAIL")); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
	}
	return nil
}

func checkSecret(cfg *config.Config) error {
	if isWeakSecret(cfg.JWT.SecretKey) {
		return errWeakSecret
	}
	return nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key", "secret-secret"} {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
