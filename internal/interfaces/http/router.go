package http

import (
	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/interfaces/http/middleware"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/routes"
)

// Router owns the gin engine and the container it routes into.
type Router struct {
	*Container
}

// NewRouter creates a router over c. Call SetupRoutes before serving.
func NewRouter(c *Container) *Router {
	return &Router{Container: c}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.RequestLogger(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(r.metrics.GinMiddleware())

	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	routes.SetupFeatureRoutes(r.engine, &routes.FeatureRouteConfig{
		FeatureHandler:       r.featureHandler,
		AdminFeatureHandler:  r.adminFeatureHandler,
		AuthMiddleware:       r.authMiddleware,
		PermissionMiddleware: r.permissionMiddleware,
		FeatureGate:          r.featureGate,
		LoadRateLimiter:      r.loadRateLimiter,
	})
	routes.SetupPermissionRoutes(r.engine, &routes.PermissionRouteConfig{
		PermissionHandler: r.permissionHandler,
		AuthMiddleware:    r.authMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
