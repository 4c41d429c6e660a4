package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/middleware"
	"github.com/bodrix-ai/bodrix/internal/shared/constants"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/utils"
)

const (
	watchKeepaliveInterval = 30 * time.Second
	watchEventName         = "flag"
)

// FeatureHandler serves the caller-facing feature endpoints. Every decision is
// made against the evaluation context built by middleware.
type FeatureHandler struct {
	service           featureService
	watcher           flagWatcher
	keepaliveInterval time.Duration
	logger            logger.Interface
}

func NewFeatureHandler(service featureService, watcher flagWatcher, logger logger.Interface) *FeatureHandler {
	return &FeatureHandler{
		service:           service,
		watcher:           watcher,
		keepaliveInterval: watchKeepaliveInterval,
		logger:            logger,
	}
}

func requestLocale(c *gin.Context) dto.Locale {
	return dto.ParseLocale(c.GetHeader(constants.HeaderAcceptLanguage))
}

// ListFeatures handles GET /features
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	features := h.service.ListEnabled(middleware.GetEvalContext(c), requestLocale(c))
	utils.SuccessResponse(c, http.StatusOK, "", features)
}

// ListCategories handles GET /features/categories
func (h *FeatureHandler) ListCategories(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.service.Categories())
}

// GetFeature handles GET /features/:id
func (h *FeatureHandler) GetFeature(c *gin.Context) {
	status, err := h.service.GetStatus(middleware.GetEvalContext(c), c.Param("id"), requestLocale(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// LoadFeature handles POST /features/:id/load. A failed load is still a 200 with
// success=false in the result; only unknown or unavailable features are errors.
func (h *FeatureHandler) LoadFeature(c *gin.Context) {
	result, err := h.service.LoadFeature(c.Request.Context(), middleware.GetEvalContext(c), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

type flagStateEvent struct {
	FeatureID string `json:"feature_id"`
	Enabled   bool   `json:"enabled"`
}

// WatchFeature handles GET /features/:id/watch as a server-sent event stream. The
// current decision is sent first, then one event each time it flips.
func (h *FeatureHandler) WatchFeature(c *gin.Context) {
	id := c.Param("id")
	evalCtx := middleware.GetEvalContext(c)

	if _, err := h.service.GetStatus(evalCtx, id, requestLocale(c)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// Listeners must not block, so changes coalesce into one pending signal.
	changed := make(chan struct{}, 1)
	unsubscribe := h.watcher.Subscribe(id, func(bool) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	last := h.watcher.IsEnabledFor(evalCtx, id)
	c.SSEvent(watchEventName, flagStateEvent{FeatureID: id, Enabled: last})
	c.Writer.Flush()

	keepalive := time.NewTicker(h.keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debugw("feature watch closed by client",
				"feature_id", id,
				"user_id", evalCtx.UserID,
			)
			return

		case <-changed:
			enabled := h.watcher.IsEnabledFor(evalCtx, id)
			if enabled == last {
				continue
			}
			last = enabled
			c.SSEvent(watchEventName, flagStateEvent{FeatureID: id, Enabled: enabled})
			c.Writer.Flush()

		case <-keepalive.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				h.logger.Warnw("feature watch keepalive failed", "feature_id", id, "error", err)
				return
			}
			c.Writer.Flush()
		}
	}
}
