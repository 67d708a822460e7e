package service

import (
	"fmt"
	"strings"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// walletMove 钱包桶之间的资金移动
type walletMove string

const (
	moveAccrue    walletMove = "accrue"    // 佣金产生：+待结算 +成交数
	moveSettle    walletMove = "settle"    // 佣金结算：待结算 -> 可提现，累计收益增加
	moveVoid      walletMove = "void"      // 佣金作废：-待结算 -成交数
	moveUnsettle  walletMove = "unsettle"  // 已结算退回待结算
	moveRevoke    walletMove = "revoke"    // 已结算作废
	moveRestore   walletMove = "restore"   // 作废恢复为待结算
	moveReinstate walletMove = "reinstate" // 作废恢复为已结算
	moveHold      walletMove = "hold"      // 提现冻结：可提现 -> 提现冻结
	moveRelease   walletMove = "release"   // 提现驳回：提现冻结 -> 可提现
	movePayout    walletMove = "payout"    // 提现完成：提现冻结 -> 已提现
)

// ledgerEntry 一次钱包变动
type ledgerEntry struct {
	Move         walletMove
	Amount       decimal.Decimal
	TxnType      string
	Reference    string
	CommissionID *uint
	WithdrawalID *uint
	OrderID      *uint
	Remark       string
}

// walletLedger 钱包资金桶的唯一写入口，调用方必须处于事务中
type walletLedger struct {
	walletRepo repository.WalletRepository
}

func newWalletLedger(walletRepo repository.WalletRepository) *walletLedger {
	return &walletLedger{walletRepo: walletRepo}
}

// lockWallet 获取（必要时创建）并锁定推广者钱包
func (l *walletLedger) lockWallet(tx *gorm.DB, userUID string) (*models.PromoterWallet, error) {
	userUID = strings.TrimSpace(userUID)
	if userUID == "" {
		return nil, ErrWalletNotFound
	}
	repo := l.walletRepo.WithTx(tx)
	wallet, err := repo.GetByUserUIDForUpdate(userUID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	if err := repo.CreateIfAbsent(userUID); err != nil {
		return nil, err
	}
	wallet, err = repo.GetByUserUIDForUpdate(userUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// apply 在已锁定的钱包上执行一次资金移动，参考号重复时不做任何变更
func (l *walletLedger) apply(tx *gorm.DB, userUID string, entry ledgerEntry) (*models.PromoterWallet, bool, error) {
	repo := l.walletRepo.WithTx(tx)
	wallet, err := l.lockWallet(tx, userUID)
	if err != nil {
		return nil, false, err
	}
	if ref := strings.TrimSpace(entry.Reference); ref != "" {
		existing, err := repo.GetTransactionByReference(ref)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return wallet, false, nil
		}
	}

	amount := entry.Amount.Round(2)
	if amount.IsNegative() {
		return nil, false, ErrValidation
	}
	direction, err := applyMove(wallet, entry.Move, amount)
	if err != nil {
		return nil, false, err
	}
	if err := repo.Update(wallet); err != nil {
		return nil, false, err
	}

	txn := &models.WalletTransaction{
		WalletID:               wallet.ID,
		UserUID:                wallet.UserUID,
		Type:                   entry.TxnType,
		Direction:              direction,
		Amount:                 models.NewMoneyFromDecimal(amount),
		AvailableAfter:         wallet.AvailableAmount,
		PendingCommissionAfter: wallet.PendingCommissionAmount,
		PendingWithdrawalAfter: wallet.PendingWithdrawalAmount,
		Reference:              entry.Reference,
		CommissionID:           entry.CommissionID,
		WithdrawalID:           entry.WithdrawalID,
		OrderID:                entry.OrderID,
		Remark:                 entry.Remark,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, false, err
	}
	return wallet, true, nil
}

// applyMove 按移动类型调整资金桶，所有扣减都截断到 0
func applyMove(wallet *models.PromoterWallet, move walletMove, amount decimal.Decimal) (string, error) {
	pendingCommission := wallet.PendingCommissionAmount.Decimal
	pendingWithdrawal := wallet.PendingWithdrawalAmount.Decimal
	available := wallet.AvailableAmount.Decimal
	withdrawn := wallet.WithdrawnAmount.Decimal
	earned := wallet.TotalEarned.Decimal
	sales := wallet.TotalSalesCount

	var direction string
	switch move {
	case moveAccrue:
		pendingCommission = pendingCommission.Add(amount)
		sales++
		direction = constants.WalletTxnDirectionIn
	case moveSettle:
		pendingCommission = pendingCommission.Sub(amount)
		available = available.Add(amount)
		earned = earned.Add(amount)
		direction = constants.WalletTxnDirectionMove
	case moveVoid:
		pendingCommission = pendingCommission.Sub(amount)
		sales--
		direction = constants.WalletTxnDirectionOut
	case moveUnsettle:
		pendingCommission = pendingCommission.Add(amount)
		available = available.Sub(amount)
		earned = earned.Sub(amount)
		direction = constants.WalletTxnDirectionMove
	case moveRevoke:
		available = available.Sub(amount)
		earned = earned.Sub(amount)
		sales--
		direction = constants.WalletTxnDirectionOut
	case moveRestore:
		pendingCommission = pendingCommission.Add(amount)
		sales++
		direction = constants.WalletTxnDirectionIn
	case moveReinstate:
		available = available.Add(amount)
		earned = earned.Add(amount)
		sales++
		direction = constants.WalletTxnDirectionIn
	case moveHold:
		if amount.GreaterThan(available) {
			return "", ErrInsufficientBalance
		}
		available = available.Sub(amount)
		pendingWithdrawal = pendingWithdrawal.Add(amount)
		direction = constants.WalletTxnDirectionMove
	case moveRelease:
		pendingWithdrawal = pendingWithdrawal.Sub(amount)
		available = available.Add(amount)
		direction = constants.WalletTxnDirectionMove
	case movePayout:
		pendingWithdrawal = pendingWithdrawal.Sub(amount)
		withdrawn = withdrawn.Add(amount)
		direction = constants.WalletTxnDirectionOut
	default:
		return "", fmt.Errorf("unknown wallet move: %s", move)
	}

	wallet.PendingCommissionAmount = models.ClampedMoney(pendingCommission)
	wallet.PendingWithdrawalAmount = models.ClampedMoney(pendingWithdrawal)
	wallet.AvailableAmount = models.ClampedMoney(available)
	wallet.WithdrawnAmount = models.ClampedMoney(withdrawn)
	wallet.TotalEarned = models.ClampedMoney(earned)
	if sales < 0 {
		sales = 0
	}
	wallet.TotalSalesCount = sales
	return direction, nil
}

// commissionReference 生成佣金流水参考号，同一佣金的每次变动序号递增
func (l *walletLedger) commissionReference(tx *gorm.DB, commissionID uint, move walletMove) (string, error) {
	count, err := l.walletRepo.WithTx(tx).CountTransactionsByCommission(commissionID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("commission:%d:%s:%d", commissionID, move, count+1), nil
}

func withdrawalReference(withdrawalID uint, move walletMove) string {
	return fmt.Sprintf("withdrawal:%d:%s", withdrawalID, move)
}

// applyCommission 对单条佣金执行资金移动
func (l *walletLedger) applyCommission(tx *gorm.DB, commission *models.Commission, move walletMove, txnType, remark string) (*models.PromoterWallet, error) {
	reference, err := l.commissionReference(tx, commission.ID, move)
	if err != nil {
		return nil, err
	}
	commissionID := commission.ID
	orderID := commission.OrderID
	wallet, _, err := l.apply(tx, commission.UserUID, ledgerEntry{
		Move:         move,
		Amount:       commission.CommissionAmount.Decimal,
		TxnType:      txnType,
		Reference:    reference,
		CommissionID: &commissionID,
		OrderID:      &orderID,
		Remark:       remark,
	})
	return wallet, err
}
