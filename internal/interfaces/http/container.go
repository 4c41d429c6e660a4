package http

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	featureApp "github.com/bodrix-ai/bodrix/internal/application/feature"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/application/feature/usecases"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/auth"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/catalog"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/config"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/metrics"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/permission"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/pubsub"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/ratelimit"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/repository"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/resolver"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/handlers"
	adminHandlers "github.com/bodrix-ai/bodrix/internal/interfaces/http/handlers/admin"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/middleware"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/services/markdown"
)

const loadRateLimitScope = "feature-load"

// Container holds the infrastructure, feature subsystem, middlewares and handlers,
// wires them together and owns their shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	metrics  *metrics.Metrics
	jwtSvc   *auth.JWTService
	enforcer *permission.Enforcer
	resolver *resolver.Registry

	// Feature subsystem
	registry       *registry.Registry
	flags          *flags.Flags
	loader         *loader.Loader
	featureService *featureApp.ServiceDDD

	// Cross-instance override relay
	flagBus         *pubsub.RedisFlagBus
	flagBusCancel   context.CancelFunc
	flagBusCancelMu sync.Mutex

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	featureGate          *middleware.FeatureGateMiddleware
	loadRateLimiter      *middleware.RateLimiter

	// Handlers
	featureHandler      *handlers.FeatureHandler
	adminFeatureHandler *adminHandlers.FeatureHandler
	permissionHandler   *adminHandlers.PermissionHandler
	healthHandler       *handlers.HealthHandler
}

// NewContainer wires every component. Nothing is loaded from storage until Start.
// redisClient may be nil; it is required only when override sync is enabled.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	if err := c.initFeatures(); err != nil {
		return nil, err
	}
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	c.metrics = metrics.New()
	c.jwtSvc = auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.AccessExpMinutes)
	c.resolver = resolver.NewRegistry()

	enforcer, err := permission.NewEnforcer(c.db, c.cfg.Permission, c.log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	c.enforcer = enforcer
	return nil
}

func (c *Container) initFeatures() error {
	featureRepo := repository.NewFeatureRepository(c.db, c.log)
	configRepo := repository.NewFeatureConfigRepository(c.db, c.log)
	overrideRepo := repository.NewFeatureOverrideRepository(c.db, c.log)

	c.registry = registry.New(c.log.Named("registry"))
	c.flags = flags.New(c.registry, c.log.Named("flags"))
	c.flags.Initialize(flags.EvalContext{Environment: flags.ParseEnvironment(c.cfg.Features.Environment)})

	c.loader = loader.New(c.registry, c.resolver, loader.Options{
		ResolveTimeout: c.cfg.Features.Loader.ResolveTimeout,
		Metrics:        c.metrics,
	}, c.log.Named("loader"))

	c.featureService = featureApp.NewServiceDDD(
		featureRepo,
		configRepo,
		overrideRepo,
		catalog.Source{Path: c.cfg.Features.CatalogPath},
		c.registry,
		c.flags,
		c.loader,
		markdown.NewMarkdownService(),
		c.log.Named("feature"),
	)

	if c.cfg.Features.Sync.Enabled {
		if c.redis == nil {
			return fmt.Errorf("features.sync.enabled requires redis")
		}
		c.flagBus = pubsub.NewRedisFlagBus(c.redis, c.cfg.Features.Sync.Channel, c.log.Named("flag-bus"))
		c.flags.SetPublisher(c.flagBus)
	}
	return nil
}

func (c *Container) initHandlers() {
	environment := flags.ParseEnvironment(c.cfg.Features.Environment)

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, environment, c.log)
	c.featureGate = middleware.NewFeatureGateMiddleware(c.flags, c.log)
	var limiter ratelimit.RateLimiter
	if c.redis != nil {
		limiter = ratelimit.NewRedisRateLimiter(c.redis)
	}
	c.loadRateLimiter = middleware.NewRateLimiter(
		limiter,
		loadRateLimitScope,
		c.cfg.Features.LoadRateLimit.Limit,
		c.cfg.Features.LoadRateLimit.Window,
		c.log,
	)

	c.featureHandler = handlers.NewFeatureHandler(c.featureService, c.flags, c.log)
	c.adminFeatureHandler = adminHandlers.NewFeatureHandler(c.featureService, c.log)
	c.permissionHandler = adminHandlers.NewPermissionHandler(c.enforcer, c.log)

	checks := map[string]handlers.Pinger{
		"database": handlers.PingerFunc(func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if c.redis != nil {
		checks["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}
	c.healthHandler = handlers.NewHealthHandler(checks)
}

// Bootstrap loads the catalog and persisted state and registers component
// bundles for every feature carrying a locator.
func (c *Container) Bootstrap(ctx context.Context) (*usecases.BootstrapResult, error) {
	result, err := c.featureService.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap features: %w", err)
	}

	bundles := resolver.RegisterAssetManifests(c.resolver, c.cfg.Features.AssetBaseURL, c.registry.GetAllFeatures())
	c.log.Infow("feature subsystem ready",
		"features", result.Registered,
		"seeded", result.Seeded,
		"overrides", result.Overrides,
		"bundles", bundles,
	)
	return result, nil
}

// Start bootstraps, optionally preloads enabled features and begins relaying
// override changes from peers.
func (c *Container) Start(ctx context.Context) error {
	if _, err := c.Bootstrap(ctx); err != nil {
		return err
	}

	if c.cfg.Features.Preload {
		loaded := c.featureService.PreloadEnabled(ctx)
		c.log.Infow("enabled features preloaded", "loaded", loaded)
	}

	if c.flagBus != nil {
		c.flagBusCancelMu.Lock()
		busCtx, cancel := context.WithCancel(context.Background())
		c.flagBusCancel = cancel
		c.flagBusCancelMu.Unlock()

		c.flagBus.Start(busCtx, c.flags.ApplyRemoteChange)
	}
	return nil
}

// Shutdown stops the override relay. The database and Redis clients belong to
// the caller.
func (c *Container) Shutdown() {
	c.flagBusCancelMu.Lock()
	defer c.flagBusCancelMu.Unlock()
	if c.flagBusCancel != nil {
		c.flagBusCancel()
		c.flagBusCancel = nil
	}
}

// FeatureService exposes the feature subsystem to in-process callers.
func (c *Container) FeatureService() *featureApp.ServiceDDD {
	return c.featureService
}
