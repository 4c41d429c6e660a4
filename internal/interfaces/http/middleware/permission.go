package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/shared/constants"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// ContextKeyEvalContext holds the flags.EvalContext built for the request.
const ContextKeyEvalContext = "eval_context"

// RolePermissions expands a role into the permissions it grants.
type RolePermissions interface {
	PermissionsForRole(role string) ([]string, error)
}

// PermissionMiddleware builds the evaluation context every public feature
// decision is made against.
type PermissionMiddleware struct {
	roles       RolePermissions
	environment flags.Environment
	logger      logger.Interface
}

func NewPermissionMiddleware(roles RolePermissions, environment flags.Environment, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		roles:       roles,
		environment: environment,
		logger:      logger,
	}
}

// EvalContext must run after AuthMiddleware.OptionalAuth or RequireAuth.
// Anonymous callers are evaluated with no permissions granted.
func (m *PermissionMiddleware) EvalContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		evalCtx := flags.EvalContext{
			UserPermissions: []string{},
			Environment:     m.environment,
		}

		if userID := c.GetString(constants.ContextKeyUserID); userID != "" {
			role := c.GetString(constants.ContextKeyUserRole)
			evalCtx.UserID = userID
			evalCtx.UserRole = role

			granted, err := m.roles.PermissionsForRole(role)
			if err != nil {
				m.logger.Errorw("failed to expand role permissions",
					"user_id", userID,
					"role", role,
					"error", err,
				)
			}
			granted = append(granted, c.GetStringSlice(ContextKeyPermissions)...)
			slices.Sort(granted)
			evalCtx.UserPermissions = slices.Compact(granted)
			if evalCtx.UserPermissions == nil {
				evalCtx.UserPermissions = []string{}
			}
		}

		c.Set(ContextKeyEvalContext, evalCtx)
		c.Next()
	}
}

// GetEvalContext returns the request's evaluation context, falling back to an
// anonymous development context when the middleware did not run.
func GetEvalContext(c *gin.Context) flags.EvalContext {
	if v, ok := c.Get(ContextKeyEvalContext); ok {
		if evalCtx, ok := v.(flags.EvalContext); ok {
			return evalCtx
		}
	}
	return flags.EvalContext{UserPermissions: []string{}, Environment: flags.EnvDevelopment}
}
