package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceRoleWithGrantedPolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("uid-admin", "auditor", "/admin/withdrawals/:id/approve", "POST"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("auditor", "/api/v1/admin/withdrawals/42/approve", "post")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceRole("auditor", "/api/v1/admin/withdrawals/42/reject", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}

	if err := svc.RevokeRolePolicy("uid-admin", "auditor", "/admin/withdrawals/:id/approve", "POST"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, err = svc.EnforceRole("auditor", "/api/v1/admin/withdrawals/42/approve", "POST")
	if err != nil {
		t.Fatalf("enforce after revoke failed: %v", err)
	}
	if allow {
		t.Fatalf("expected revoked policy to deny")
	}
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	// 重复初始化不报错
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:support":          true,
		"role:finance":          true,
		"role:admin":            true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	cases := []struct {
		role, path, method string
		allow              bool
	}{
		{"admin", "/api/v1/admin/products/p-1", "PUT", true},
		{"finance", "/api/v1/admin/withdrawals/7/complete", "POST", true},
		{"finance", "/api/v1/admin/commissions", "GET", true},
		{"finance", "/api/v1/admin/orders/7/status", "PATCH", false},
		{"support", "/api/v1/admin/orders/7/status", "PATCH", true},
		{"support", "/api/v1/admin/withdrawals/7/approve", "POST", false},
		{"support", "/api/v1/admin/products/p-1", "PUT", false},
		{"user", "/api/v1/admin/orders", "GET", false},
		{"promoter", "/api/v1/admin/wallets/u-1", "GET", false},
		{"__anchor__", "/api/v1/admin/orders", "GET", false},
		{"", "/api/v1/admin/orders", "GET", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.method, tc.path, err)
		}
		if allow != tc.allow {
			t.Fatalf("enforce %s %s %s: want %v got %v", tc.role, tc.method, tc.path, tc.allow, allow)
		}
	}

	policies, err := svc.GetRolePolicies("finance")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 4 || policies[0].Object != "/admin/commissions/:id/status" {
		t.Fatalf("unexpected finance policies: %+v", policies)
	}

	effective, err := svc.EffectivePolicies("finance")
	if err != nil {
		t.Fatalf("effective policies failed: %v", err)
	}
	inherited := false
	for _, policy := range effective {
		if policy.Subject == "role:readonly_auditor" && policy.Object == "/admin/*" && policy.Action == "GET" {
			inherited = true
		}
	}
	if len(effective) != 5 || !inherited {
		t.Fatalf("finance should inherit auditor GET: %+v", effective)
	}

	infos, err := svc.Roles()
	if err != nil {
		t.Fatalf("roles failed: %v", err)
	}
	for _, info := range infos {
		if info.Role != "role:support" {
			continue
		}
		if len(info.Inherits) != 1 || info.Inherits[0] != "role:readonly_auditor" || len(info.Policies) != 2 {
			t.Fatalf("unexpected support role info: %+v", info)
		}
	}
}

func TestRolePolicyChangeGuards(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	if err := svc.RevokeRolePolicy("uid-admin", "admin", "/admin/*", "*"); !errors.Is(err, ErrProtectedRole) {
		t.Fatalf("revoke admin want ErrProtectedRole got %v", err)
	}
	if err := svc.GrantRolePolicy("uid-admin", "support", "/user/wallet", "GET"); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("non admin route want ErrInvalidPolicy got %v", err)
	}
	if err := svc.GrantRolePolicy("uid-admin", "__anchor__", "/admin/orders", "GET"); !errors.Is(err, ErrProtectedRole) {
		t.Fatalf("anchor role want ErrProtectedRole got %v", err)
	}

	// 撤销不存在的策略是空操作
	if err := svc.RevokeRolePolicy("uid-admin", "support", "/admin/products/:id", "PUT"); err != nil {
		t.Fatalf("revoke missing policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("uid-admin", "support", "/api/v1/admin/products/:id", "put"); err != nil {
		t.Fatalf("grant support product write failed: %v", err)
	}
	allow, err := svc.EnforceRole("support", "/api/v1/admin/products/p-1", "PUT")
	if err != nil || !allow {
		t.Fatalf("granted policy should allow: allow=%v err=%v", allow, err)
	}
}

func TestNilServiceUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceRole("admin", "/admin/orders", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("bootstrap want ErrUnavailable got %v", err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/api/v1":              "/",
		"/api/v1/admin/orders": "/admin/orders",
		"admin/orders":         "/admin/orders",
		"/admin/wallets/:uid":  "/admin/wallets/:uid",
	}
	for in, want := range cases {
		if got := NormalizeObject(in); got != want {
			t.Fatalf("NormalizeObject(%q) want %q got %q", in, want, got)
		}
	}
}

func TestSeedRulesExpandBuiltinRoles(t *testing.T) {
	groupings, policies, err := seedRules(BuiltinRoleSeeds())
	if err != nil {
		t.Fatalf("seed rules failed: %v", err)
	}
	// 4 个角色各挂锚点，support 与 finance 各继承一次
	if len(groupings) != 6 {
		t.Fatalf("want 6 grouping rules got %d", len(groupings))
	}
	if len(policies) != 8 {
		t.Fatalf("want 8 policy rules got %d", len(policies))
	}
	for _, rule := range policies {
		if !strings.HasPrefix(rule[0], rolePrefix) || !strings.HasPrefix(rule[1], "/admin/") {
			t.Fatalf("unexpected policy rule %v", rule)
		}
	}

	if _, _, err := seedRules([]RoleSeed{{Role: "broken", Policies: []Policy{{Object: "/admin/x"}}}}); err == nil {
		t.Fatalf("expected error for policy without action")
	}
}
