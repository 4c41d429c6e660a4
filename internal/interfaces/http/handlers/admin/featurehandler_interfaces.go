package admin

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

// featureAdminService is the subset of feature.ServiceDDD used by FeatureHandler.
type featureAdminService interface {
	ListAdmin(req dto.ListFeaturesRequest, locale dto.Locale) []*dto.AdminFeatureResponse
	GetAdmin(id string, locale dto.Locale) (*dto.AdminFeatureResponse, error)
	Statuses(locale dto.Locale) []*dto.FeatureStatusResponse
	Stats() feature.Stats
	LoadingStats() *dto.LoadingStatsResponse
	ValidateCatalog() *dto.ValidationReport

	EnableFeature(ctx context.Context, id string) (*dto.FeatureConfigResponse, error)
	DisableFeature(ctx context.Context, id string) (*dto.FeatureConfigResponse, error)
	GetConfig(id string) (*dto.FeatureConfigResponse, error)
	UpdateConfig(ctx context.Context, id string, req dto.UpdateConfigRequest) (*dto.FeatureConfigResponse, error)

	ListOverrides() *dto.OverridesResponse
	SetOverride(ctx context.Context, id string, enabled bool, actor string) (*dto.OverridesResponse, error)
	RemoveOverride(ctx context.Context, id, actor string) (*dto.OverridesResponse, error)
	BulkSetOverrides(ctx context.Context, overrides map[string]bool, actor string) (*dto.OverridesResponse, error)
	ClearOverrides(ctx context.Context, actor string) error

	ExportSnapshot() ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte, actor string) (*dto.ImportSnapshotResponse, error)

	ClearLoaded()
}
