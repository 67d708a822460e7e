package repository

import (
	"bytes"
	"log"
	"testing"

	"github.com/buyv-ledger/internal/models"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestFirstOrNilMissIsSilent(t *testing.T) {
	var buf bytes.Buffer
	db := setupLedgerRepositoryTest(t).Session(&gorm.Session{
		Logger: gormlogger.New(log.New(&buf, "", 0), gormlogger.Config{LogLevel: gormlogger.Error}),
	})

	wallet, err := firstOrNil[models.PromoterWallet](db.Where("user_uid = ?", "nobody"))
	if err != nil || wallet != nil {
		t.Fatalf("miss want nil, nil got %+v, %v", wallet, err)
	}
	order, err := firstOrNil[models.Order](lockForUpdate(db), 404)
	if err != nil || order != nil {
		t.Fatalf("miss by id want nil, nil got %+v, %v", order, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("miss should not log, got %q", buf.String())
	}
}

func TestFirstOrNilReturnsLowestID(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	rows := []models.MarketplaceProduct{
		{ID: "p-b", Name: "B", Price: money("2"), CommissionRate: money("5"), Status: "active"},
		{ID: "p-a", Name: "A", Price: money("1"), CommissionRate: money("5"), Status: "active"},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed products failed: %v", err)
	}
	product, err := firstOrNil[models.MarketplaceProduct](db.Where("status = ?", "active"))
	if err != nil || product == nil {
		t.Fatalf("lookup failed: %+v, %v", product, err)
	}
	if product.ID != "p-a" {
		t.Fatalf("want primary key order p-a got %s", product.ID)
	}
}
