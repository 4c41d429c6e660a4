package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/interfaces/http/handlers"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/handlers/admin"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/middleware"
	"github.com/bodrix-ai/bodrix/internal/shared/authorization"
)

// FeatureRouteConfig holds dependencies for feature routes.
type FeatureRouteConfig struct {
	FeatureHandler       *handlers.FeatureHandler
	AdminFeatureHandler  *admin.FeatureHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	FeatureGate          *middleware.FeatureGateMiddleware
	LoadRateLimiter      *middleware.RateLimiter
}

// Feature ids gating routes of the subsystem itself.
const (
	liveUpdatesFeature       = "notifications"
	usageAnalyticsFeature    = "usage-analytics"
	advancedAnalyticsFeature = "advanced-analytics"
)

// SetupFeatureRoutes configures the public and admin feature routes.
func SetupFeatureRoutes(engine *gin.Engine, cfg *FeatureRouteConfig) {
	features := engine.Group("/features")
	features.Use(cfg.AuthMiddleware.OptionalAuth(), cfg.PermissionMiddleware.EvalContext())
	{
		features.GET("", cfg.FeatureHandler.ListFeatures)
		features.GET("/categories", cfg.FeatureHandler.ListCategories)
		features.GET("/:id", cfg.FeatureHandler.GetFeature)
		features.GET("/:id/watch", cfg.FeatureGate.RequireFeature(liveUpdatesFeature), cfg.FeatureHandler.WatchFeature)
		features.POST("/:id/load", cfg.LoadRateLimiter.Limit(), cfg.FeatureHandler.LoadFeature)
	}

	analytics := cfg.FeatureGate.RequireAnyFeature(usageAnalyticsFeature, advancedAnalyticsFeature)

	adminFeatures := engine.Group("/admin/features")
	adminFeatures.Use(
		cfg.AuthMiddleware.RequireAuth(),
		cfg.PermissionMiddleware.EvalContext(),
		authorization.RequireAdmin(),
	)
	{
		// Collection operations
		adminFeatures.GET("", cfg.AdminFeatureHandler.ListFeatures)
		adminFeatures.GET("/stats", analytics, cfg.AdminFeatureHandler.GetStats)
		adminFeatures.GET("/statuses", cfg.AdminFeatureHandler.GetStatuses)
		adminFeatures.GET("/validate", cfg.AdminFeatureHandler.Validate)

		// Overrides and snapshots (must come BEFORE /:id to avoid conflicts)
		adminFeatures.GET("/overrides", cfg.AdminFeatureHandler.ListOverrides)
		adminFeatures.PUT("/overrides", cfg.AdminFeatureHandler.BulkSetOverrides)
		adminFeatures.DELETE("/overrides", cfg.AdminFeatureHandler.ClearOverrides)
		adminFeatures.GET("/export", cfg.AdminFeatureHandler.Export)
		adminFeatures.POST("/import", cfg.AdminFeatureHandler.Import)

		// Loader cache
		adminFeatures.GET("/loading-stats", analytics, cfg.AdminFeatureHandler.GetLoadingStats)
		adminFeatures.DELETE("/loaded", cfg.AdminFeatureHandler.ClearLoaded)

		// Per-feature operations
		adminFeatures.GET("/:id", cfg.AdminFeatureHandler.GetFeature)
		adminFeatures.POST("/:id/enable", cfg.AdminFeatureHandler.EnableFeature)
		adminFeatures.POST("/:id/disable", cfg.AdminFeatureHandler.DisableFeature)
		adminFeatures.GET("/:id/config", cfg.AdminFeatureHandler.GetConfig)
		adminFeatures.PUT("/:id/config", cfg.AdminFeatureHandler.UpdateConfig)
		adminFeatures.PUT("/:id/override", cfg.AdminFeatureHandler.SetOverride)
		adminFeatures.DELETE("/:id/override", cfg.AdminFeatureHandler.RemoveOverride)
	}
}
