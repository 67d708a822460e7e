package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNumber string
	PromoterUID string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CommissionListFilter 查询佣金列表的过滤条件
type CommissionListFilter struct {
	Page        int
	PageSize    int
	UserUID     string
	Status      string
	OrderID     uint
	OrderNumber string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter 查询提现申请列表的过滤条件
type WithdrawalListFilter struct {
	Page          int
	PageSize      int
	UserUID       string
	Status        string
	PaymentMethod string
}

// WalletListFilter 查询钱包列表的过滤条件
type WalletListFilter struct {
	Page     int
	PageSize int
	UserUID  string
}

// WalletTransactionListFilter 查询钱包流水列表的过滤条件
type WalletTransactionListFilter struct {
	Page         int
	PageSize     int
	UserUID      string
	Type         string
	CommissionID uint
	WithdrawalID uint
}

// ProductListFilter 查询推广商品列表的过滤条件
type ProductListFilter struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
	Status   string
}
