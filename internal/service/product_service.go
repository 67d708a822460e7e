package service

import (
	"context"
	"strings"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 推广商品目录服务
type ProductService struct {
	repo  repository.ProductRepository
	rates *CommissionRateResolver
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, rates *CommissionRateResolver) *ProductService {
	return &ProductService{repo: repo, rates: rates}
}

// UpsertProductInput 创建/更新商品输入
type UpsertProductInput struct {
	ID                    string
	Name                  string
	Price                 decimal.Decimal
	CommissionRatePercent decimal.Decimal
	Status                string
}

// UpsertProduct 创建或更新商品及佣金比例（百分比，0-100）
func (s *ProductService) UpsertProduct(ctx context.Context, principal *Principal, input UpsertProductInput) (*models.MarketplaceProduct, error) {
	if err := requireStaff(principal); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(input.ID)
	name := strings.TrimSpace(input.Name)
	if id == "" || name == "" || input.Price.IsNegative() {
		return nil, ErrProductInvalid
	}
	rate := input.CommissionRatePercent.Round(2)
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return nil, ErrCommissionRateInvalid
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	switch status {
	case "":
		status = constants.ProductStatusActive
	case constants.ProductStatusActive, constants.ProductStatusInactive:
	default:
		return nil, ErrProductInvalid
	}

	product := &models.MarketplaceProduct{
		ID:             id,
		Name:           name,
		Price:          models.NewMoneyFromDecimal(input.Price),
		CommissionRate: models.NewMoneyFromDecimal(rate),
		Status:         status,
	}
	if err := s.repo.Upsert(product); err != nil {
		return nil, err
	}
	if s.rates != nil {
		s.rates.Invalidate(ctx, id)
	}
	logger.Infow("marketplace_product_upserted",
		"product_id", id,
		"commission_rate_percent", rate.String(),
		"actor", principal.Actor(),
	)
	return s.GetProduct(id)
}

// GetProduct 获取商品
func (s *ProductService) GetProduct(id string) (*models.MarketplaceProduct, error) {
	product, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListProducts 商品列表
func (s *ProductService) ListProducts(filter repository.ProductListFilter) ([]models.MarketplaceProduct, int64, error) {
	return s.repo.List(filter)
}
