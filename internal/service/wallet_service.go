package service

import (
	"strings"
	"time"

	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"gorm.io/gorm"
)

// WalletService 推广者钱包服务
type WalletService struct {
	walletRepo repository.WalletRepository
	ledger     *walletLedger
}

// UpdateBankDetailsInput 银行卡信息输入
type UpdateBankDetailsInput struct {
	BankName          string
	BankAccountHolder string
	BankAccountNumber string
	BankSwiftCode     string
}

// NewWalletService 创建钱包服务
func NewWalletService(walletRepo repository.WalletRepository) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		ledger:     newWalletLedger(walletRepo),
	}
}

// GetWallet 获取当前推广者钱包（不存在时自动创建）
func (s *WalletService) GetWallet(principal *Principal) (*models.PromoterWallet, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	return s.getOrCreate(principal.UID)
}

// AdminGetWallet 后台按推广者UID查看钱包
func (s *WalletService) AdminGetWallet(principal *Principal, userUID string) (*models.PromoterWallet, error) {
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
	return wallet, nil
}

// ListTransactions 查询当前推广者钱包流水
func (s *WalletService) ListTransactions(principal *Principal, filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, 0, err
	}
	filter.UserUID = principal.UID
	return s.walletRepo.ListTransactions(filter)
}

// UpdateBankDetails 更新收款银行信息，不涉及余额
func (s *WalletService) UpdateBankDetails(principal *Principal, input UpdateBankDetailsInput) (*models.PromoterWallet, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	holder := strings.TrimSpace(input.BankAccountHolder)
	number := strings.TrimSpace(input.BankAccountNumber)
	if holder == "" || number == "" || strings.TrimSpace(input.BankName) == "" {
		return nil, ErrWithdrawDetailsInvalid
	}

	var updated *models.PromoterWallet
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.ledger.lockWallet(tx, principal.UID)
		if err != nil {
			return err
		}
		wallet.BankName = strings.TrimSpace(input.BankName)
		wallet.BankAccountHolder = holder
		wallet.BankAccountNumber = number
		wallet.BankSwiftCode = strings.ToUpper(strings.TrimSpace(input.BankSwiftCode))
		wallet.UpdatedAt = time.Now()
		if err := s.walletRepo.WithTx(tx).Update(wallet); err != nil {
			return err
		}
		updated = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *WalletService) getOrCreate(userUID string) (*models.PromoterWallet, error) {
	wallet, err := s.walletRepo.GetByUserUID(userUID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	if err := s.walletRepo.CreateIfAbsent(userUID); err != nil {
		return nil, err
	}
	wallet, err = s.walletRepo.GetByUserUID(userUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}
