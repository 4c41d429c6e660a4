package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/utils"
)

// FlagChecker decides a feature for a caller.
type FlagChecker interface {
	IsEnabledFor(evalCtx flags.EvalContext, id string) bool
}

// FeatureGateMiddleware guards routes behind feature flags. It reads the context
// built by PermissionMiddleware.EvalContext.
type FeatureGateMiddleware struct {
	flags  FlagChecker
	logger logger.Interface
}

func NewFeatureGateMiddleware(flags FlagChecker, logger logger.Interface) *FeatureGateMiddleware {
	return &FeatureGateMiddleware{
		flags:  flags,
		logger: logger,
	}
}

func (m *FeatureGateMiddleware) RequireFeature(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		evalCtx := GetEvalContext(c)
		if !m.flags.IsEnabledFor(evalCtx, id) {
			m.logger.Debugw("feature gate closed",
				"feature_id", id,
				"user_id", evalCtx.UserID,
			)
			utils.ErrorResponse(c, http.StatusForbidden, "feature not available: "+id)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *FeatureGateMiddleware) RequireAnyFeature(ids ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		evalCtx := GetEvalContext(c)
		for _, id := range ids {
			if m.flags.IsEnabledFor(evalCtx, id) {
				c.Next()
				return
			}
		}
		m.logger.Debugw("feature gate closed",
			"feature_ids", ids,
			"user_id", evalCtx.UserID,
		)
		utils.ErrorResponse(c, http.StatusForbidden, "none of the required features are available")
		c.Abort()
	}
}
