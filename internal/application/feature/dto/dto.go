package dto

import (
	"time"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

type FeatureResponse struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	DescriptionHTML     string           `json:"description_html,omitempty"`
	Locale              Locale           `json:"locale"`
	Direction           string           `json:"dir"`
	Category            feature.Category `json:"category"`
	Status              feature.Status   `json:"status"`
	Enabled             bool             `json:"enabled"`
	Beta                bool             `json:"beta"`
	RequiredPermissions []string         `json:"required_permissions,omitempty"`
	Dependencies        []string         `json:"dependencies,omitempty"`
	Metadata            map[string]any   `json:"metadata,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// AdminFeatureResponse carries both language variants alongside the effective flag
// decision.
type AdminFeatureResponse struct {
	FeatureResponse
	NameEn           string `json:"name_en"`
	NameAr           string `json:"name_ar,omitempty"`
	DescriptionEn    string `json:"description_en,omitempty"`
	DescriptionAr    string `json:"description_ar,omitempty"`
	EffectiveEnabled bool   `json:"effective_enabled"`
	Overridden       bool   `json:"overridden"`
	Override         *bool  `json:"override,omitempty"`
}

type FeatureStatusResponse struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name,omitempty"`
	Enabled             bool           `json:"enabled"`
	RegistryEnabled     bool           `json:"registry_enabled"`
	Overridden          bool           `json:"overridden"`
	Override            *bool          `json:"override,omitempty"`
	Beta                bool           `json:"beta"`
	Status              feature.Status `json:"status,omitempty"`
	RequiredPermissions []string       `json:"required_permissions,omitempty"`
}

type ListFeaturesRequest struct {
	Category string `form:"category" binding:"omitempty,oneof=analytics security payments communications automation users marketing settings integrations design"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive beta deprecated coming_soon"`
}

type FeatureConfigResponse struct {
	FeatureID   string         `json:"feature_id"`
	Enabled     bool           `json:"enabled"`
	Settings    map[string]any `json:"settings,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type UpdateConfigRequest struct {
	Enabled     *bool          `json:"enabled"`
	Settings    map[string]any `json:"settings"`
	Permissions []string       `json:"permissions" binding:"omitempty,unique,dive,required"`
}

type SetOverrideRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type BulkOverridesRequest struct {
	Overrides map[string]bool `json:"overrides" binding:"required"`
}

type OverridesResponse struct {
	Overrides map[string]bool `json:"overrides"`
}

type LoadResultResponse struct {
	FeatureID  string   `json:"feature_id"`
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Component  string   `json:"component,omitempty"`
	LoadTimeMs float64  `json:"load_time_ms,omitempty"`
}

type SlowFeatureResponse struct {
	ID         string  `json:"id"`
	LoadTimeMs float64 `json:"load_time_ms"`
}

type LoadingStatsResponse struct {
	TotalLoaded       int                   `json:"total_loaded"`
	TotalLoadTimeMs   float64               `json:"total_load_time_ms"`
	AverageLoadTimeMs float64               `json:"average_load_time_ms"`
	Slowest           []SlowFeatureResponse `json:"slowest"`
}

type CategoriesResponse struct {
	Categories []feature.Category `json:"categories"`
}

type ValidationReport struct {
	Valid               bool                `json:"valid"`
	Features            int                 `json:"features"`
	MissingDependencies map[string][]string `json:"missing_dependencies,omitempty"`
	Cycles              [][]string          `json:"cycles,omitempty"`
}

type ImportSnapshotResponse struct {
	Overrides       int  `json:"overrides"`
	ContextReplaced bool `json:"context_replaced"`
}
