package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/shared/authorization"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/utils"
)

// PermissionHandler manages the role policies that decide which permission
// strings callers carry into feature evaluation.
type PermissionHandler struct {
	policies rolePolicyService
	logger   logger.Interface
}

func NewPermissionHandler(policies rolePolicyService, logger logger.Interface) *PermissionHandler {
	return &PermissionHandler{
		policies: policies,
		logger:   logger,
	}
}

type RolePolicyRequest struct {
	Role       string `json:"role" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

type RolePermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type PermissionCheckResponse struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

func parseRole(raw string) (authorization.UserRole, error) {
	role := authorization.UserRole(raw)
	if !role.IsValid() {
		return "", errors.NewValidationError("invalid role", raw)
	}
	return role, nil
}

// GetRolePermissions handles GET /admin/permissions/:role
func (h *PermissionHandler) GetRolePermissions(c *gin.Context) {
	role, err := parseRole(c.Param("role"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.respondPermissions(c, role, "")
}

// CheckPermission handles GET /admin/permissions/:role/check?permission=
func (h *PermissionHandler) CheckPermission(c *gin.Context) {
	role, err := parseRole(c.Param("role"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	permission := c.Query("permission")
	if permission == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("permission query parameter is required"))
		return
	}

	allowed, err := h.policies.Enforce(role.String(), permission)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", PermissionCheckResponse{
		Role:       role.String(),
		Permission: permission,
		Allowed:    allowed,
	})
}

// GrantPermission handles POST /admin/permissions
func (h *PermissionHandler) GrantPermission(c *gin.Context) {
	req, role, ok := h.bindPolicy(c)
	if !ok {
		return
	}
	if err := h.policies.AddPolicy(role.String(), req.Permission); err != nil {
		h.logger.Warnw("failed to grant permission", "role", role, "permission", req.Permission, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.logger.Infow("permission granted", "role", role, "permission", req.Permission, "actor", actor(c))
	h.respondPermissions(c, role, "permission granted")
}

// RevokePermission handles DELETE /admin/permissions
func (h *PermissionHandler) RevokePermission(c *gin.Context) {
	req, role, ok := h.bindPolicy(c)
	if !ok {
		return
	}
	if err := h.policies.RemovePolicy(role.String(), req.Permission); err != nil {
		h.logger.Warnw("failed to revoke permission", "role", role, "permission", req.Permission, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.logger.Infow("permission revoked", "role", role, "permission", req.Permission, "actor", actor(c))
	h.respondPermissions(c, role, "permission revoked")
}

// ReloadPolicies handles POST /admin/permissions/reload. Peers sharing the
// policy table pick up another instance's grants this way.
func (h *PermissionHandler) ReloadPolicies(c *gin.Context) {
	if err := h.policies.LoadPolicy(); err != nil {
		h.logger.Errorw("failed to reload policies", "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("failed to reload policies"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "policies reloaded", nil)
}

func (h *PermissionHandler) bindPolicy(c *gin.Context) (RolePolicyRequest, authorization.UserRole, bool) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return req, "", false
	}
	role, err := parseRole(req.Role)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return req, "", false
	}
	return req, role, true
}

func (h *PermissionHandler) respondPermissions(c *gin.Context, role authorization.UserRole, message string) {
	perms, err := h.policies.PermissionsForRole(role.String())
	if err != nil {
		h.logger.Errorw("failed to list role permissions", "role", role, "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("failed to list permissions"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, RolePermissionsResponse{
		Role:        role.String(),
		Permissions: perms,
	})
}
