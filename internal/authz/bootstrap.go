package authz

import (
	"fmt"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

const roleReadonlyAuditor = "readonly_auditor"

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: roleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleSupport,
			Inherits: []string{roleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/orders/:id/status", Action: "PATCH"},
				{Object: "/admin/orders/:id/tracking", Action: "PATCH"},
			},
		},
		{
			Role:     constants.RoleFinance,
			Inherits: []string{roleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/commissions/:id/status", Action: "PATCH"},
				{Object: "/admin/withdrawals/:id/approve", Action: "POST"},
				{Object: "/admin/withdrawals/:id/reject", Action: "POST"},
				{Object: "/admin/withdrawals/:id/complete", Action: "POST"},
			},
		},
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// seedRules 把预置角色展开为 g 规则与 p 规则
func seedRules(seeds []RoleSeed) (groupings, policies [][]string, err error) {
	for _, seed := range seeds {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return nil, nil, err
		}
		groupings = append(groupings, []string{role, roleAnchor})
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return nil, nil, err
			}
			groupings = append(groupings, []string{role, parentRole})
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return nil, nil, fmt.Errorf("builtin policy for %s has no action", role)
			}
			policies = append(policies, []string{role, NormalizeObject(policy.Object), action})
		}
	}
	return groupings, policies, nil
}

// BootstrapBuiltinRoles 写入预置角色，已存在的规则跳过
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	groupings, policies, err := seedRules(BuiltinRoleSeeds())
	if err != nil {
		return err
	}

	added := 0
	for _, rule := range groupings {
		ok, err := s.enforcer.AddNamedGroupingPolicy("g", rule[0], rule[1])
		if err != nil {
			return fmt.Errorf("link builtin role %s: %w", rule[0], err)
		}
		if ok {
			added++
		}
	}
	for _, rule := range policies {
		ok, err := s.enforcer.AddPolicy(rule[0], rule[1], rule[2])
		if err != nil {
			return fmt.Errorf("add builtin policy for %s: %w", rule[0], err)
		}
		if ok {
			added++
		}
	}
	if added > 0 {
		logger.Infow("authz_builtin_roles_seeded", "rules_added", added)
	}
	return nil
}
