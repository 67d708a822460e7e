package service

import (
	"strings"

	"github.com/buyv-ledger/internal/constants"
)

// Principal 已认证调用方
type Principal struct {
	ID   uint
	UID  string
	Role string
}

// IsStaff 是否为后台人员（admin/finance/support），可查看后台账本数据
func (p *Principal) IsStaff() bool {
	return p.hasRole(constants.RoleAdmin, constants.RoleFinance, constants.RoleSupport)
}

func (p *Principal) hasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	role := strings.ToLower(strings.TrimSpace(p.Role))
	for _, candidate := range roles {
		if role == candidate {
			return true
		}
	}
	return false
}

// Actor 用于日志与审计的操作人标识
func (p *Principal) Actor() string {
	if p == nil {
		return "system"
	}
	if p.UID != "" {
		return p.UID
	}
	return p.Role
}

func requirePrincipal(p *Principal) error {
	if p == nil || p.ID == 0 || strings.TrimSpace(p.UID) == "" {
		return ErrPrincipalRequired
	}
	return nil
}

func requireRole(p *Principal, roles ...string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.hasRole(roles...) {
		return ErrAdminRequired
	}
	return nil
}

func requireStaff(p *Principal) error {
	return requireRole(p, constants.RoleAdmin, constants.RoleFinance, constants.RoleSupport)
}

// requireFinance 资金操作：提现审核/打款、佣金强制改状态
func requireFinance(p *Principal) error {
	return requireRole(p, constants.RoleAdmin, constants.RoleFinance)
}

// requireSupport 订单履约：订单状态与物流
func requireSupport(p *Principal) error {
	return requireRole(p, constants.RoleAdmin, constants.RoleSupport)
}
