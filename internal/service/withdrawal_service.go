package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/events"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"
	"github.com/buyv-ledger/internal/tracing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultWithdrawMinAmount = 50
	defaultWithdrawMaxAmount = 10000
	minRejectReasonLength    = 10
	minTransactionIDLength   = 5
)

var bankTransferRequiredFields = []string{"account_holder_name", "bank_name", "account_number", "routing_number"}

// CreateWithdrawalInput 提现申请输入
type CreateWithdrawalInput struct {
	Amount         models.Money
	PaymentMethod  string
	PaymentDetails map[string]string
}

// WithdrawalStats 推广者提现概览
type WithdrawalStats struct {
	AvailableAmount         models.Money `json:"available_amount"`
	PendingWithdrawalAmount models.Money `json:"pending_withdrawal_amount"`
	WithdrawnAmount         models.Money `json:"withdrawn_amount"`
	PendingCount            int64        `json:"pending_count"`
	ProcessedCount          int64        `json:"processed_count"`
	TotalCount              int64        `json:"total_count"`
}

// WithdrawalService 提现申请处理
type WithdrawalService struct {
	withdrawalRepo repository.WithdrawalRepository
	walletRepo     repository.WalletRepository
	ledger         *walletLedger
	sink           EventSink
	minAmount      decimal.Decimal
	maxAmount      decimal.Decimal
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	walletRepo repository.WalletRepository,
	cfg config.WithdrawalConfig,
	sink EventSink,
) *WithdrawalService {
	minAmount := cfg.MinAmount
	if minAmount <= 0 {
		minAmount = defaultWithdrawMinAmount
	}
	maxAmount := cfg.MaxAmount
	if maxAmount <= 0 {
		maxAmount = defaultWithdrawMaxAmount
	}
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		walletRepo:     walletRepo,
		ledger:         newWalletLedger(walletRepo),
		sink:           sink,
		minAmount:      decimal.NewFromFloat(minAmount).Round(2),
		maxAmount:      decimal.NewFromFloat(maxAmount).Round(2),
	}
}

// Create 提交提现申请并冻结可提现余额
func (s *WithdrawalService) Create(ctx context.Context, principal *Principal, input CreateWithdrawalInput) (*models.WithdrawalRequest, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "withdrawal.create")
	defer span.End()

	amount := input.Amount.Decimal.Round(2)
	if amount.LessThan(s.minAmount) || amount.GreaterThan(s.maxAmount) {
		return nil, ErrWithdrawAmountInvalid
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	details, err := normalizePaymentDetails(method, input.PaymentDetails)
	if err != nil {
		return nil, err
	}

	var created *models.WithdrawalRequest
	err = s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		// 先锁钱包，同一推广者的提现申请串行执行
		wallet, err := s.ledger.lockWallet(tx, principal.UID)
		if err != nil {
			return err
		}
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)
		exists, err := withdrawalRepo.HasStatusByUser(principal.UID, constants.WithdrawalStatusPending)
		if err != nil {
			return err
		}
		if exists {
			return ErrWithdrawalPendingExists
		}
		if amount.GreaterThan(wallet.AvailableAmount.Decimal) {
			return ErrInsufficientBalance
		}

		weekStart, weekEnd := isoWeekBounds(time.Now())
		req := &models.WithdrawalRequest{
			WalletID:       wallet.ID,
			UserUID:        principal.UID,
			Amount:         models.NewMoneyFromDecimal(amount),
			PaymentMethod:  method,
			PaymentDetails: details,
			Status:         constants.WithdrawalStatusPending,
			WeekStartDate:  &weekStart,
			WeekEndDate:    &weekEnd,
		}
		if err := withdrawalRepo.Create(req); err != nil {
			return err
		}
		if _, err := s.applyWithdrawal(tx, req, moveHold, constants.WalletTxnTypeWithdrawalHold, "提现申请冻结"); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		logger.Warnw("withdrawal_create_failed", "user_uid", principal.UID, "amount", amount.String(), "error", err)
		return nil, err
	}

	s.record(ctx, created, constants.LedgerEventWithdrawalCreated, principal)
	logger.Infow("withdrawal_created",
		"withdrawal_id", created.ID,
		"user_uid", created.UserUID,
		"amount", created.Amount.String(),
		"payment_method", created.PaymentMethod,
	)
	return created, nil
}

// Approve 审核通过，资金仍处于冻结状态
func (s *WithdrawalService) Approve(ctx context.Context, principal *Principal, withdrawalID uint, notes string) (*models.WithdrawalRequest, error) {
	if err := requireFinance(principal); err != nil {
		return nil, err
	}
	return s.process(ctx, principal, withdrawalID, constants.LedgerEventWithdrawalApproved, func(tx *gorm.DB, req *models.WithdrawalRequest, updates map[string]interface{}) error {
		if req.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalStatusInvalid
		}
		updates["status"] = constants.WithdrawalStatusApproved
		if notes = strings.TrimSpace(notes); notes != "" {
			updates["admin_notes"] = notes
		}
		return nil
	})
}

// Reject 驳回申请并退回冻结金额
func (s *WithdrawalService) Reject(ctx context.Context, principal *Principal, withdrawalID uint, reason string) (*models.WithdrawalRequest, error) {
	if err := requireFinance(principal); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < minRejectReasonLength {
		return nil, ErrRejectReasonInvalid
	}
	return s.process(ctx, principal, withdrawalID, constants.LedgerEventWithdrawalRejected, func(tx *gorm.DB, req *models.WithdrawalRequest, updates map[string]interface{}) error {
		if req.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalStatusInvalid
		}
		updates["status"] = constants.WithdrawalStatusRejected
		updates["rejection_reason"] = reason
		_, err := s.applyWithdrawal(tx, req, moveRelease, constants.WalletTxnTypeWithdrawalRelease, "提现驳回退回")
		return err
	})
}

// Complete 确认打款完成，冻结金额转入已提现
func (s *WithdrawalService) Complete(ctx context.Context, principal *Principal, withdrawalID uint, transactionID, notes string) (*models.WithdrawalRequest, error) {
	if err := requireFinance(principal); err != nil {
		return nil, err
	}
	transactionID = strings.TrimSpace(transactionID)
	if utf8.RuneCountInString(transactionID) < minTransactionIDLength {
		return nil, ErrTransactionIDInvalid
	}
	return s.process(ctx, principal, withdrawalID, constants.LedgerEventWithdrawalCompleted, func(tx *gorm.DB, req *models.WithdrawalRequest, updates map[string]interface{}) error {
		switch req.Status {
		case constants.WithdrawalStatusPending, constants.WithdrawalStatusApproved:
		default:
			return ErrWithdrawalStatusInvalid
		}
		updates["status"] = constants.WithdrawalStatusCompleted
		updates["transaction_id"] = transactionID
		if notes = strings.TrimSpace(notes); notes != "" {
			updates["admin_notes"] = notes
		}
		_, err := s.applyWithdrawal(tx, req, movePayout, constants.WalletTxnTypeWithdrawalComplete, "提现打款完成")
		return err
	})
}

type withdrawalStep func(tx *gorm.DB, req *models.WithdrawalRequest, updates map[string]interface{}) error

func (s *WithdrawalService) process(ctx context.Context, principal *Principal, withdrawalID uint, eventType string, step withdrawalStep) (*models.WithdrawalRequest, error) {
	var fromStatus string
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)
		req, err := withdrawalRepo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrWithdrawalNotFound
		}
		fromStatus = req.Status
		now := time.Now()
		updates := map[string]interface{}{
			"processed_by": principal.UID,
			"processed_at": now,
			"updated_at":   now,
		}
		if err := step(tx, req, updates); err != nil {
			return err
		}
		return withdrawalRepo.UpdateFields(req.ID, updates)
	})
	if err != nil {
		return nil, err
	}

	req, err := s.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrWithdrawalNotFound
	}
	s.record(ctx, req, eventType, principal)
	logger.Infow("withdrawal_status_changed",
		"withdrawal_id", req.ID,
		"user_uid", req.UserUID,
		"from", fromStatus,
		"to", req.Status,
		"actor", principal.Actor(),
	)
	return req, nil
}

func (s *WithdrawalService) applyWithdrawal(tx *gorm.DB, req *models.WithdrawalRequest, move walletMove, txnType, remark string) (*models.PromoterWallet, error) {
	withdrawalID := req.ID
	wallet, _, err := s.ledger.apply(tx, req.UserUID, ledgerEntry{
		Move:         move,
		Amount:       req.Amount.Decimal,
		TxnType:      txnType,
		Reference:    withdrawalReference(req.ID, move),
		WithdrawalID: &withdrawalID,
		Remark:       remark,
	})
	return wallet, err
}

func (s *WithdrawalService) record(ctx context.Context, req *models.WithdrawalRequest, eventType string, principal *Principal) {
	metrics.WithdrawalsTotal.WithLabelValues(req.Status).Inc()
	metrics.AddAmount(metrics.WithdrawalAmountTotal, req.Status, req.Amount.InexactFloat64())
	emitEvents(ctx, s.sink, events.New(eventType, req.UserUID, map[string]interface{}{
		"withdrawal_id":  req.ID,
		"user_uid":       req.UserUID,
		"amount":         req.Amount.String(),
		"status":         req.Status,
		"payment_method": req.PaymentMethod,
		"actor":          principal.Actor(),
	}))
}

// ListMine 当前推广者的提现记录
func (s *WithdrawalService) ListMine(principal *Principal, status string, page, pageSize int) ([]models.WithdrawalRequest, int64, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, 0, err
	}
	return s.withdrawalRepo.List(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		UserUID:  principal.UID,
		Status:   strings.TrimSpace(status),
	})
}

// ListAdmin 后台提现列表
func (s *WithdrawalService) ListAdmin(principal *Principal, filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	if err := requireStaff(principal); err != nil {
		return nil, 0, err
	}
	return s.withdrawalRepo.List(filter)
}

// Stats 提现概览
func (s *WithdrawalService) Stats(principal *Principal) (*WithdrawalStats, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	stats := &WithdrawalStats{}
	wallet, err := s.walletRepo.GetByUserUID(principal.UID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		stats.AvailableAmount = wallet.AvailableAmount
		stats.PendingWithdrawalAmount = wallet.PendingWithdrawalAmount
		stats.WithdrawnAmount = wallet.WithdrawnAmount
	}
	if stats.PendingCount, err = s.withdrawalRepo.CountByUserAndStatuses(principal.UID, []string{constants.WithdrawalStatusPending}); err != nil {
		return nil, err
	}
	if stats.ProcessedCount, err = s.withdrawalRepo.CountByUserAndStatuses(principal.UID, []string{
		constants.WithdrawalStatusApproved,
		constants.WithdrawalStatusCompleted,
	}); err != nil {
		return nil, err
	}
	if stats.TotalCount, err = s.withdrawalRepo.CountByUserAndStatuses(principal.UID, nil); err != nil {
		return nil, err
	}
	return stats, nil
}

// normalizePaymentDetails 校验收款信息并序列化为 JSON
func normalizePaymentDetails(method string, raw map[string]string) (string, error) {
	details := make(map[string]string, len(raw))
	for key, value := range raw {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		details[key] = strings.TrimSpace(value)
	}
	switch method {
	case constants.WithdrawalMethodPaypal:
		if !strings.Contains(details["email"], "@") {
			return "", ErrWithdrawDetailsInvalid
		}
	case constants.WithdrawalMethodBankTransfer:
		for _, field := range bankTransferRequiredFields {
			if details[field] == "" {
				return "", ErrWithdrawDetailsInvalid
			}
		}
	default:
		return "", ErrWithdrawMethodInvalid
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("encode payment details: %w", err)
	}
	return string(payload), nil
}

// isoWeekBounds 返回所在 ISO 周的周一 00:00 与周日 23:59:59
func isoWeekBounds(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1-weekday)
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return start, end
}
