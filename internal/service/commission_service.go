package service

import (
	"context"
	"strings"
	"time"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"gorm.io/gorm"
)

// commissionGroup 佣金状态分组，管理员改状态按分组决定资金移动
type commissionGroup int

const (
	groupAccruing commissionGroup = iota // pending
	groupEarned                          // approved / paid
	groupVoid                            // canceled
)

func groupOf(status string) (commissionGroup, bool) {
	switch status {
	case constants.CommissionStatusPending:
		return groupAccruing, true
	case constants.CommissionStatusApproved, constants.CommissionStatusPaid:
		return groupEarned, true
	case constants.CommissionStatusCanceled:
		return groupVoid, true
	default:
		return 0, false
	}
}

// overrideMove 返回分组间的资金移动，同组返回空；backward 表示回退已完成的资金流转
func overrideMove(from, to commissionGroup) (move walletMove, backward bool) {
	switch {
	case from == to:
		return "", false
	case from == groupAccruing && to == groupEarned:
		return moveSettle, false
	case from == groupAccruing && to == groupVoid:
		return moveVoid, false
	case from == groupEarned && to == groupAccruing:
		return moveUnsettle, true
	case from == groupEarned && to == groupVoid:
		return moveRevoke, true
	case from == groupVoid && to == groupAccruing:
		return moveRestore, true
	default:
		return moveReinstate, true
	}
}

// CommissionService 佣金查询与后台状态调整
type CommissionService struct {
	commissionRepo repository.CommissionRepository
	ledger         *walletLedger
	sink           EventSink
}

// NewCommissionService 创建佣金服务
func NewCommissionService(commissionRepo repository.CommissionRepository, walletRepo repository.WalletRepository, sink EventSink) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		ledger:         newWalletLedger(walletRepo),
		sink:           sink,
	}
}

// AdminSetStatus 管理员强制设置佣金状态，允许回退
func (s *CommissionService) AdminSetStatus(ctx context.Context, principal *Principal, commissionID uint, status string) (*models.Commission, error) {
	if err := requireFinance(principal); err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	toGroup, ok := groupOf(status)
	if !ok {
		return nil, ErrCommissionStatusUnknown
	}

	var (
		updated    *models.Commission
		fromStatus string
	)
	err := s.commissionRepo.Transaction(func(tx *gorm.DB) error {
		commissionRepo := s.commissionRepo.WithTx(tx)
		commission, err := commissionRepo.GetByIDForUpdate(commissionID)
		if err != nil {
			return err
		}
		if commission == nil {
			return ErrCommissionNotFound
		}
		fromStatus = commission.Status
		if fromStatus == status {
			updated = commission
			return nil
		}
		fromGroup, ok := groupOf(fromStatus)
		if !ok {
			return ErrCommissionStatusInvalid
		}

		now := time.Now()
		updates := map[string]interface{}{"updated_at": now}
		if status == constants.CommissionStatusPaid {
			updates["paid_at"] = now
			commission.PaidAt = &now
		}
		if err := commissionRepo.UpdateStatus(commission.ID, status, updates); err != nil {
			return err
		}
		commission.Status = status

		move, backward := overrideMove(fromGroup, toGroup)
		if backward {
			logger.Warnw("commission_override_backward",
				"commission_id", commission.ID,
				"user_uid", commission.UserUID,
				"from", fromStatus,
				"to", status,
				"amount", commission.CommissionAmount.String(),
				"actor", principal.Actor(),
			)
		}
		if move != "" {
			txnType := constants.WalletTxnTypeCommissionOverride
			if move == moveSettle {
				txnType = constants.WalletTxnTypeCommissionSettle
			}
			remark := "管理员调整佣金状态 " + fromStatus + " -> " + status
			if _, err := s.ledger.applyCommission(tx, commission, move, txnType, remark); err != nil {
				return err
			}
		}
		updated = commission
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fromStatus != status {
		metrics.CommissionTransitionsTotal.WithLabelValues(fromStatus, status).Inc()
		emitEvents(ctx, s.sink, commissionStatusEvent(updated, fromStatus))
		logger.Infow("commission_status_overridden",
			"commission_id", updated.ID,
			"from", fromStatus,
			"to", status,
			"actor", principal.Actor(),
		)
	}
	return updated, nil
}

// ListMine 当前推广者的佣金列表
func (s *CommissionService) ListMine(principal *Principal, status string, page, pageSize int) ([]models.Commission, int64, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, 0, err
	}
	return s.commissionRepo.List(repository.CommissionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserUID:  principal.UID,
		Status:   strings.TrimSpace(status),
	})
}

// ListAdmin 后台佣金列表
func (s *CommissionService) ListAdmin(principal *Principal, filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	if err := requireStaff(principal); err != nil {
		return nil, 0, err
	}
	return s.commissionRepo.List(filter)
}

// Get 获取佣金详情，推广者只能查看自己的
func (s *CommissionService) Get(principal *Principal, commissionID uint) (*models.Commission, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	commission, err := s.commissionRepo.GetByID(commissionID)
	if err != nil {
		return nil, err
	}
	if commission == nil || (!principal.IsStaff() && commission.UserUID != principal.UID) {
		return nil, ErrCommissionNotFound
	}
	return commission, nil
}
