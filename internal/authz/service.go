package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	adminPrefix     = "/admin/"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
	roleAnchor      = "role:__anchor__"
)

// 授权错误
var (
	ErrUnavailable   = errors.New("authz service unavailable")
	ErrInvalidPolicy = errors.New("invalid authz policy")
	ErrProtectedRole = errors.New("role policies are protected")
)

const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy 权限策略
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// RoleInfo 角色、继承关系与直连策略
type RoleInfo struct {
	Role     string   `json:"role"`
	Inherits []string `json:"inherits"`
	Policies []Policy `json:"policies"`
}

// Service 后台接口授权
// 主体为用户角色（role:<role>），策略按 /admin 路由模板授予，角色之间可继承
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务，策略持久化在 casbin_rule 表
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// EnforceRole 按用户角色判定对后台路由的访问，未知或保留角色一律拒绝
func (s *Service) EnforceRole(role, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := NormalizeRole(strings.ToLower(role))
	if err != nil || subject == roleAnchor {
		return false, nil
	}
	return s.enforcer.Enforce(subject, NormalizeObject(obj), NormalizeAction(act))
}

// EnsureRole 确保角色存在
func (s *Service) EnsureRole(role string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", fmt.Errorf("%w: reserved role", ErrInvalidPolicy)
	}
	exists, err := s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if !exists {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
			return "", fmt.Errorf("create role failed: %w", err)
		}
	}
	return normalized, nil
}

// ListRoles 列出已登记的角色
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roleSet := make(map[string]struct{})
	for _, rule := range rules {
		for i := 0; i < len(rule) && i < 2; i++ {
			if strings.HasPrefix(rule[i], rolePrefix) && rule[i] != roleAnchor {
				roleSet[rule[i]] = struct{}{}
			}
		}
	}
	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// Roles 全部角色及其继承关系与直连策略
func (s *Service) Roles() ([]RoleInfo, error) {
	roles, err := s.ListRoles()
	if err != nil {
		return nil, err
	}
	items := make([]RoleInfo, 0, len(roles))
	for _, role := range roles {
		parents, err := s.enforcer.GetRolesForUser(role)
		if err != nil {
			return nil, fmt.Errorf("get role parents failed: %w", err)
		}
		inherits := make([]string, 0, len(parents))
		for _, parent := range parents {
			if parent != roleAnchor {
				inherits = append(inherits, parent)
			}
		}
		sort.Strings(inherits)
		policies, err := s.GetRolePolicies(role)
		if err != nil {
			return nil, err
		}
		items = append(items, RoleInfo{Role: role, Inherits: inherits, Policies: policies})
	}
	return items, nil
}

// GetRolePolicies 查询角色直连策略（不含继承）
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	return convertPolicies(rules), nil
}

// EffectivePolicies 角色实际生效的策略，包含继承自上级角色的部分
func (s *Service) EffectivePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetImplicitPermissionsForUser(normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("get effective policies failed: %w", err)
	}
	return convertPolicies(rules), nil
}

// GrantRolePolicy 为角色授予后台路由策略
func (s *Service) GrantRolePolicy(actor, role, object, action string) error {
	normalizedRole, policy, err := s.validateChange(role, object, action)
	if err != nil {
		return err
	}
	if _, err := s.EnsureRole(normalizedRole); err != nil {
		return err
	}
	added, err := s.enforcer.AddPolicy(normalizedRole, policy.Object, policy.Action)
	if err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	if added {
		logger.Infow("authz_policy_granted",
			"actor", actor,
			"role", normalizedRole,
			"object", policy.Object,
			"action", policy.Action,
		)
	}
	return nil
}

// RevokeRolePolicy 撤销角色策略
func (s *Service) RevokeRolePolicy(actor, role, object, action string) error {
	normalizedRole, policy, err := s.validateChange(role, object, action)
	if err != nil {
		return err
	}
	removed, err := s.enforcer.RemovePolicy(normalizedRole, policy.Object, policy.Action)
	if err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	if removed {
		logger.Warnw("authz_policy_revoked",
			"actor", actor,
			"role", normalizedRole,
			"object", policy.Object,
			"action", policy.Action,
		)
	}
	return nil
}

// validateChange 只允许调整 /admin 路由，管理员角色不可修改
func (s *Service) validateChange(role, object, action string) (string, Policy, error) {
	if err := s.ready(); err != nil {
		return "", Policy{}, err
	}
	normalizedRole, err := NormalizeRole(strings.ToLower(role))
	if err != nil {
		return "", Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if normalizedRole == rolePrefix+constants.RoleAdmin || normalizedRole == roleAnchor {
		return "", Policy{}, ErrProtectedRole
	}
	policy := Policy{Subject: normalizedRole, Object: NormalizeObject(object), Action: NormalizeAction(action)}
	if !strings.HasPrefix(policy.Object, adminPrefix) {
		return "", Policy{}, fmt.Errorf("%w: object must be an /admin route", ErrInvalidPolicy)
	}
	if policy.Action == "" {
		return "", Policy{}, fmt.Errorf("%w: action is required", ErrInvalidPolicy)
	}
	return normalizedRole, policy, nil
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object == policies[j].Object {
			return policies[i].Action < policies[j].Action
		}
		return policies[i].Object < policies[j].Object
	})
	return policies
}

// NormalizeRole 统一角色名称为 role:<name>
func NormalizeRole(role string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", fmt.Errorf("role is required")
	}
	return normalized, nil
}

// NormalizeObject 统一授权资源路径，去掉 /api/v1 前缀
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return strings.TrimPrefix(normalized, apiV1Prefix)
}

// NormalizeAction 统一授权动作
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
