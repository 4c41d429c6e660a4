package admin

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
	"github.com/bodrix-ai/bodrix/internal/shared/constants"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/utils"
)

// maxSnapshotBytes bounds an imported snapshot body.
const maxSnapshotBytes = 1 << 20

// FeatureHandler handles feature administration. Routes are mounted behind
// RequireAuth and RequireAdmin.
type FeatureHandler struct {
	service featureAdminService
	logger  logger.Interface
}

func NewFeatureHandler(service featureAdminService, logger logger.Interface) *FeatureHandler {
	return &FeatureHandler{
		service: service,
		logger:  logger,
	}
}

func locale(c *gin.Context) dto.Locale {
	return dto.ParseLocale(c.GetHeader(constants.HeaderAcceptLanguage))
}

func actor(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUserID)
}

// ListFeatures handles GET /admin/features?category=&status=
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	var req dto.ListFeaturesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warnw("invalid query for list features", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid filter", err.Error()))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", h.service.ListAdmin(req, locale(c)))
}

// GetFeature handles GET /admin/features/:id
func (h *FeatureHandler) GetFeature(c *gin.Context) {
	result, err := h.service.GetAdmin(c.Param("id"), locale(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetStats handles GET /admin/features/stats
func (h *FeatureHandler) GetStats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.service.Stats())
}

// GetStatuses handles GET /admin/features/statuses
func (h *FeatureHandler) GetStatuses(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.service.Statuses(locale(c)))
}

// GetLoadingStats handles GET /admin/features/loading-stats
func (h *FeatureHandler) GetLoadingStats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.service.LoadingStats())
}

// Validate handles GET /admin/features/validate
func (h *FeatureHandler) Validate(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.service.ValidateCatalog())
}

// EnableFeature handles POST /admin/features/:id/enable
func (h *FeatureHandler) EnableFeature(c *gin.Context) {
	result, err := h.service.EnableFeature(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Feature enabled", result)
}

// DisableFeature handles POST /admin/features/:id/disable
func (h *FeatureHandler) DisableFeature(c *gin.Context) {
	result, err := h.service.DisableFeature(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Feature disabled", result)
}

// GetConfig handles GET /admin/features/:id/config
func (h *FeatureHandler) GetConfig(c *gin.Context) {
	result, err := h.service.GetConfig(c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdateConfig handles PUT /admin/features/:id/config
func (h *FeatureHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update config", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.service.UpdateConfig(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Feature config updated", result)
}

// ListOverrides handles GET /admin/features/overrides
func (h *FeatureHandler) ListOverrides(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.service.ListOverrides())
}

// SetOverride handles PUT /admin/features/:id/override
func (h *FeatureHandler) SetOverride(c *gin.Context) {
	var req dto.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for set override", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.service.SetOverride(c.Request.Context(), c.Param("id"), *req.Enabled, actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Override set", result)
}

// RemoveOverride handles DELETE /admin/features/:id/override
func (h *FeatureHandler) RemoveOverride(c *gin.Context) {
	result, err := h.service.RemoveOverride(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Override removed", result)
}

// BulkSetOverrides handles PUT /admin/features/overrides
func (h *FeatureHandler) BulkSetOverrides(c *gin.Context) {
	var req dto.BulkOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for bulk overrides", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.service.BulkSetOverrides(c.Request.Context(), req.Overrides, actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Overrides updated", result)
}

// ClearOverrides handles DELETE /admin/features/overrides
func (h *FeatureHandler) ClearOverrides(c *gin.Context) {
	if err := h.service.ClearOverrides(c.Request.Context(), actor(c)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// Export handles GET /admin/features/export as a JSON file download.
func (h *FeatureHandler) Export(c *gin.Context) {
	data, err := h.service.ExportSnapshot()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	filename := fmt.Sprintf("bodrix-flags-%s.json", biztime.NowUTC().Format("20060102-150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /admin/features/import. The body is an exported snapshot.
func (h *FeatureHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSnapshotBytes))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("snapshot body is too large or unreadable", err.Error()))
		return
	}

	result, err := h.service.ImportSnapshot(c.Request.Context(), data, actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Snapshot imported", result)
}

// ClearLoaded handles DELETE /admin/features/loaded
func (h *FeatureHandler) ClearLoaded(c *gin.Context) {
	h.service.ClearLoaded()
	h.logger.Infow("loader cache cleared by admin", "actor", actor(c))
	utils.NoContentResponse(c)
}
