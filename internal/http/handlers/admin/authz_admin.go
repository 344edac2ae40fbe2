package admin

import (
	"strconv"

	"github.com/astra-preschool/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListRoles lists the staff roles known to the authorizer.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role list failed", err)
		return
	}
	response.Success(c, roles)
}

// GetRolePolicies lists one role's allow rules.
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "role policies fetch failed", err)
		return
	}
	response.Success(c, policies)
}

type setAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAdminRoles replaces an admin account's staff roles.
func (h *Handler) SetAdminRoles(c *gin.Context) {
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid account id", nil)
		return
	}
	var req setAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.AuthzService.SetAdminRoles(uint(adminID), req.Roles); err != nil {
		respondError(c, response.CodeInternal, "role assignment failed", err)
		return
	}
	response.SuccessWithMsg(c, "roles updated", nil)
}

// GetAdminRoles lists an admin account's staff roles.
func (h *Handler) GetAdminRoles(c *gin.Context) {
	adminID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid account id", nil)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(uint(adminID))
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	response.Success(c, roles)
}
