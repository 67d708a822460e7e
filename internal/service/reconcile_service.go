package service

import (
	"context"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"
)

const reconcilePageSize = 200

// 对账的钱包桶
const (
	BucketPendingCommission = "pending_commission"
	BucketPendingWithdrawal = "pending_withdrawal"
)

// BucketDiff 钱包桶与来源记录的差异
type BucketDiff struct {
	Bucket   string       `json:"bucket"`
	Wallet   models.Money `json:"wallet"`
	Expected models.Money `json:"expected"`
}

// ReconcileReport 单个钱包对账结果
type ReconcileReport struct {
	UserUID    string       `json:"user_uid"`
	Balanced   bool         `json:"balanced"`
	Mismatches []BucketDiff `json:"mismatches"`
}

// ReconcileSummary 全量对账汇总
type ReconcileSummary struct {
	Checked    int `json:"checked"`
	Mismatched int `json:"mismatched"`
}

// ReconcileService 钱包对账，只读
type ReconcileService struct {
	walletRepo     repository.WalletRepository
	commissionRepo repository.CommissionRepository
	withdrawalRepo repository.WithdrawalRepository
}

// NewReconcileService 创建对账服务
func NewReconcileService(
	walletRepo repository.WalletRepository,
	commissionRepo repository.CommissionRepository,
	withdrawalRepo repository.WithdrawalRepository,
) *ReconcileService {
	return &ReconcileService{
		walletRepo:     walletRepo,
		commissionRepo: commissionRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// ReconcileWallet 比对待结算佣金与提现冻结两个桶
func (s *ReconcileService) ReconcileWallet(principal *Principal, userUID string) (*ReconcileReport, error) {
	if err := requireStaff(principal); err != nil {
		return nil, err
	}
	wallet, err := s.walletRepo.GetByUserUID(userUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return s.reconcile(wallet)
}

func (s *ReconcileService) reconcile(wallet *models.PromoterWallet) (*ReconcileReport, error) {
	pendingCommissions, err := s.commissionRepo.SumAmountByUserAndStatuses(wallet.UserUID, []string{constants.CommissionStatusPending})
	if err != nil {
		return nil, err
	}
	heldWithdrawals, err := s.withdrawalRepo.SumAmountByUserAndStatuses(wallet.UserUID, []string{
		constants.WithdrawalStatusPending,
		constants.WithdrawalStatusApproved,
	})
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{UserUID: wallet.UserUID, Mismatches: []BucketDiff{}}
	if !wallet.PendingCommissionAmount.Decimal.Equal(pendingCommissions.Decimal) {
		report.Mismatches = append(report.Mismatches, BucketDiff{
			Bucket:   BucketPendingCommission,
			Wallet:   wallet.PendingCommissionAmount,
			Expected: pendingCommissions,
		})
	}
	if !wallet.PendingWithdrawalAmount.Decimal.Equal(heldWithdrawals.Decimal) {
		report.Mismatches = append(report.Mismatches, BucketDiff{
			Bucket:   BucketPendingWithdrawal,
			Wallet:   wallet.PendingWithdrawalAmount,
			Expected: heldWithdrawals,
		})
	}
	report.Balanced = len(report.Mismatches) == 0
	return report, nil
}

// ReconcileAll 遍历所有钱包对账，差异记录日志与指标
func (s *ReconcileService) ReconcileAll(ctx context.Context) (*ReconcileSummary, error) {
	summary := &ReconcileSummary{}
	for page := 1; ; page++ {
		if ctx != nil && ctx.Err() != nil {
			return summary, ctx.Err()
		}
		wallets, total, err := s.walletRepo.List(repository.WalletListFilter{Page: page, PageSize: reconcilePageSize})
		if err != nil {
			return summary, err
		}
		for i := range wallets {
			report, err := s.reconcile(&wallets[i])
			if err != nil {
				return summary, err
			}
			summary.Checked++
			if report.Balanced {
				continue
			}
			summary.Mismatched++
			for _, diff := range report.Mismatches {
				metrics.ReconcileMismatchTotal.WithLabelValues(diff.Bucket).Inc()
				logger.Warnw("wallet_reconcile_mismatch",
					"user_uid", report.UserUID,
					"bucket", diff.Bucket,
					"wallet", diff.Wallet.String(),
					"expected", diff.Expected.String(),
				)
			}
		}
		if len(wallets) < reconcilePageSize || int64(page*reconcilePageSize) >= total {
			break
		}
	}
	metrics.ReconcileRunsTotal.Inc()
	logger.Infow("wallet_reconcile_finished", "checked", summary.Checked, "mismatched", summary.Mismatched)
	return summary, nil
}
