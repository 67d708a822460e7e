package admin

import (
	"errors"

	"github.com/buyv-ledger/internal/authz"
	"github.com/buyv-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RolePolicyRequest 授予/撤销角色策略请求
type RolePolicyRequest struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// ListAuthzRoles 角色、继承关系及直连策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.Roles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzMe 当前调用方角色与生效策略（含继承）
func (h *Handler) GetAuthzMe(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.EffectivePolicies(principal.Role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"uid":      principal.UID,
		"role":     principal.Role,
		"policies": policies,
	})
}

// GrantRolePolicy 授予角色策略
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	h.changeRolePolicy(c, h.AuthzService.GrantRolePolicy)
}

// RevokeRolePolicy 撤销角色策略
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	h.changeRolePolicy(c, h.AuthzService.RevokeRolePolicy)
}

func (h *Handler) changeRolePolicy(c *gin.Context, apply func(actor, role, object, action string) error) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role := c.Param("role")
	if err := apply(principal.Actor(), role, req.Object, req.Action); err != nil {
		switch {
		case errors.Is(err, authz.ErrProtectedRole):
			respondError(c, response.CodeForbidden, "error.forbidden", nil)
		case errors.Is(err, authz.ErrInvalidPolicy):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, policies)
}
