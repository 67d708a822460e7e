package main

import (
	"fmt"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"
	"github.com/buyv-ledger/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type seedUser struct {
	Email       string
	DisplayName string
	Role        string
}

type seedProduct struct {
	ID          string
	Name        string
	Price       string
	RatePercent string
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, 0); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	userRepo := repository.NewUserRepository(models.DB)
	productRepo := repository.NewProductRepository(models.DB)
	authService := service.NewAuthService(cfg.JWT, userRepo)

	users := []seedUser{
		{Email: "admin@buyv.local", DisplayName: "Admin", Role: constants.RoleAdmin},
		{Email: "finance@buyv.local", DisplayName: "Finance", Role: constants.RoleFinance},
		{Email: "support@buyv.local", DisplayName: "Support", Role: constants.RoleSupport},
		{Email: "promoter@buyv.local", DisplayName: "Promoter", Role: constants.RolePromoter},
		{Email: "buyer@buyv.local", DisplayName: "Buyer", Role: constants.RoleUser},
	}
	for _, item := range users {
		user, err := userRepo.GetByEmail(item.Email)
		if err != nil {
			stdLog.Fatalf("Failed to load user %s: %v", item.Email, err)
		}
		if user == nil {
			user = &models.User{
				UID:         uuid.NewString(),
				Email:       item.Email,
				DisplayName: item.DisplayName,
				Role:        item.Role,
				Status:      constants.UserStatusActive,
			}
			if err := models.DB.Create(user).Error; err != nil {
				stdLog.Fatalf("Failed to create user %s: %v", item.Email, err)
			}
			stdLog.Printf("Created user: %s (%s)", item.Email, item.Role)
		} else {
			stdLog.Printf("User already exists: %s", item.Email)
		}

		token, expiresAt, err := authService.IssueToken(user)
		if err != nil {
			stdLog.Printf("Failed to issue token for %s: %v", item.Email, err)
			continue
		}
		fmt.Printf("%-10s uid=%s expires=%s\n  Bearer %s\n", user.Role, user.UID, expiresAt.Format("2006-01-02 15:04"), token)
	}

	// 推广商品及佣金比例
	products := []seedProduct{
		{ID: "demo-hoodie", Name: "Demo Hoodie", Price: "59.00", RatePercent: "10"},
		{ID: "demo-sneaker", Name: "Demo Sneaker", Price: "129.00", RatePercent: "12.5"},
		{ID: "demo-cap", Name: "Demo Cap", Price: "19.90", RatePercent: "8"},
	}
	for _, item := range products {
		product := &models.MarketplaceProduct{
			ID:             item.ID,
			Name:           item.Name,
			Price:          models.NewMoneyFromDecimal(decimal.RequireFromString(item.Price)),
			CommissionRate: models.NewMoneyFromDecimal(decimal.RequireFromString(item.RatePercent)),
			Status:         constants.ProductStatusActive,
		}
		if err := productRepo.Upsert(product); err != nil {
			stdLog.Printf("Failed to upsert product %s: %v", item.ID, err)
			continue
		}
		stdLog.Printf("Upserted product: %s (%s%%)", item.ID, item.RatePercent)
	}

	stdLog.Println("Seed completed")
}
