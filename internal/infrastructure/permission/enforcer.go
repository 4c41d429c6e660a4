package permission

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/bodrix-ai/bodrix/internal/shared/authorization"
	"github.com/bodrix-ai/bodrix/internal/shared/config"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

const defaultCacheTTL = 5 * time.Minute

// Enforcer expands user roles into the permission strings feature gates check.
type Enforcer struct {
	enforcer   *casbin.Enforcer
	persistent bool
	cache      *gocache.Cache
	mu         sync.RWMutex
	logger     logger.Interface
}

// NewEnforcer builds an enforcer. With cfg.UseDatabase the policy lives in the
// casbin_rule table through the gorm adapter; otherwise it is held in memory.
// The default role policies are seeded in both cases.
func NewEnforcer(db *gorm.DB, cfg config.PermissionConfig, log logger.Interface) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if cfg.UseDatabase {
		if db == nil {
			return nil, fmt.Errorf("permission: database policy storage requires a database")
		}
		adapter, err := gormadapter.NewAdapterByDB(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
		}
		enforcer, err = casbin.NewEnforcer(m, adapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
		}
		if err := enforcer.LoadPolicy(); err != nil {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
	} else {
		enforcer, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
		}
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	e := &Enforcer{
		enforcer:   enforcer,
		persistent: cfg.UseDatabase,
		cache:      gocache.New(ttl, 2*ttl),
		logger:     log,
	}
	if err := e.seedDefaults(); err != nil {
		return nil, err
	}
	return e, nil
}

// seedDefaults adds the built-in policies. Existing rules are left as they are.
func (e *Enforcer) seedDefaults() error {
	for role, perms := range defaultPolicies {
		for _, perm := range perms {
			obj, act, err := splitPermission(perm)
			if err != nil {
				return err
			}
			if _, err := e.enforcer.AddPolicy(role.String(), obj, act); err != nil {
				e.logger.Errorw("failed to add permission policy",
					"error", err,
					"role", role,
					"permission", perm)
				return fmt.Errorf("failed to add policy [%s, %s]: %w", role, perm, err)
			}
		}
	}

	for _, link := range defaultInheritance {
		if _, err := e.enforcer.AddGroupingPolicy(link[0].String(), link[1].String()); err != nil {
			return fmt.Errorf("failed to add role inheritance %s -> %s: %w", link[0], link[1], err)
		}
	}

	e.logger.Info("feature permissions initialized")
	return nil
}

// PermissionsForRole returns the sorted permission strings granted to role,
// including inherited ones. Unknown roles resolve as the default user role.
func (e *Enforcer) PermissionsForRole(role string) ([]string, error) {
	key := authorization.ParseUserRole(role).String()
	if cached, ok := e.cache.Get(key); ok {
		return slices.Clone(cached.([]string)), nil
	}

	e.mu.RLock()
	rules, err := e.enforcer.GetImplicitPermissionsForUser(key)
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for role %s: %w", key, err)
	}

	perms := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		perms = append(perms, rule[1]+":"+rule[2])
	}
	slices.Sort(perms)
	perms = slices.Compact(perms)

	e.cache.Set(key, perms, gocache.DefaultExpiration)
	return slices.Clone(perms), nil
}

// Enforce reports whether role holds permission ("resource:action").
func (e *Enforcer) Enforce(role, permission string) (bool, error) {
	obj, act, err := splitPermission(permission)
	if err != nil {
		return false, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(role, obj, act)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "role", role, "permission", permission)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

func (e *Enforcer) AddPolicy(role, permission string) error {
	obj, act, err := splitPermission(permission)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(role, obj, act); err != nil {
		e.logger.Errorw("failed to add policy", "error", err)
		return fmt.Errorf("failed to add policy: %w", err)
	}
	e.cache.Flush()
	return nil
}

func (e *Enforcer) RemovePolicy(role, permission string) error {
	obj, act, err := splitPermission(permission)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(role, obj, act); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	e.cache.Flush()
	return nil
}

// LoadPolicy reloads rules from storage and drops cached expansions. An
// in-memory enforcer only drops the cache.
func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.persistent {
		e.cache.Flush()
		return nil
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	e.cache.Flush()

	e.logger.Info("policy reloaded successfully")
	return nil
}

func splitPermission(permission string) (obj, act string, err error) {
	obj, act, ok := strings.Cut(permission, ":")
	if !ok || obj == "" || act == "" {
		return "", "", errors.NewValidationError("invalid permission", fmt.Sprintf("%q: expected resource:action", permission))
	}
	return obj, act, nil
}
