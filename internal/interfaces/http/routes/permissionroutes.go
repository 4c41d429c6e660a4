package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/interfaces/http/handlers/admin"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/middleware"
	"github.com/bodrix-ai/bodrix/internal/shared/authorization"
)

// PermissionRouteConfig holds dependencies for role policy routes.
type PermissionRouteConfig struct {
	PermissionHandler *admin.PermissionHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// SetupPermissionRoutes configures the admin role policy routes.
func SetupPermissionRoutes(engine *gin.Engine, cfg *PermissionRouteConfig) {
	permissions := engine.Group("/admin/permissions")
	permissions.Use(cfg.AuthMiddleware.RequireAuth(), authorization.RequireAdmin())
	{
		permissions.POST("", cfg.PermissionHandler.GrantPermission)
		permissions.DELETE("", cfg.PermissionHandler.RevokePermission)
		permissions.POST("/reload", cfg.PermissionHandler.ReloadPolicies)
		permissions.GET("/:role", cfg.PermissionHandler.GetRolePermissions)
		permissions.GET("/:role/check", cfg.PermissionHandler.CheckPermission)
	}
}
