package feature

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/application/feature/usecases"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// ServiceDDD is the entry point the HTTP handlers and CLI commands use. The
// registry, flags and loader it wraps are owned by the caller.
type ServiceDDD struct {
	logger logger.Interface

	registry *registry.Registry
	flags    *flags.Flags

	bootstrap    *usecases.BootstrapCatalogUseCase
	toggle       *usecases.ToggleFeatureUseCase
	updateConfig *usecases.UpdateFeatureConfigUseCase
	overrides    *usecases.ManageOverridesUseCase
	snapshot     *usecases.SnapshotUseCase
	validate     *usecases.ValidateCatalogUseCase
	query        *usecases.QueryFeaturesUseCase
	load         *usecases.LoadFeatureUseCase
}

func NewServiceDDD(
	featureRepo feature.Repository,
	configRepo feature.ConfigRepository,
	overrideRepo feature.OverrideRepository,
	source usecases.CatalogSource,
	reg *registry.Registry,
	fl *flags.Flags,
	l *loader.Loader,
	markdownService dto.MarkdownService,
	logger logger.Interface,
) *ServiceDDD {
	return &ServiceDDD{
		logger: logger,

		registry: reg,
		flags:    fl,

		bootstrap:    usecases.NewBootstrapCatalogUseCase(featureRepo, configRepo, overrideRepo, source, reg, fl, logger),
		toggle:       usecases.NewToggleFeatureUseCase(featureRepo, configRepo, reg, fl, logger),
		updateConfig: usecases.NewUpdateFeatureConfigUseCase(configRepo, reg, logger),
		overrides:    usecases.NewManageOverridesUseCase(overrideRepo, reg, fl, logger),
		snapshot:     usecases.NewSnapshotUseCase(overrideRepo, fl, logger),
		validate:     usecases.NewValidateCatalogUseCase(reg, logger),
		query:        usecases.NewQueryFeaturesUseCase(reg, fl, markdownService, logger),
		load:         usecases.NewLoadFeatureUseCase(l, reg, fl, logger),
	}
}

func (s *ServiceDDD) Registry() *registry.Registry {
	return s.registry
}

func (s *ServiceDDD) Flags() *flags.Flags {
	return s.flags
}

// Bootstrap fills the registry and flags from storage and the catalog source.
func (s *ServiceDDD) Bootstrap(ctx context.Context) (*usecases.BootstrapResult, error) {
	return s.bootstrap.Execute(ctx)
}

func (s *ServiceDDD) ListEnabled(evalCtx flags.EvalContext, locale dto.Locale) []*dto.FeatureResponse {
	return s.query.ListEnabled(evalCtx, locale)
}

func (s *ServiceDDD) GetStatus(evalCtx flags.EvalContext, id string, locale dto.Locale) (*dto.FeatureStatusResponse, error) {
	return s.query.GetStatus(evalCtx, id, locale)
}

func (s *ServiceDDD) ListAdmin(req dto.ListFeaturesRequest, locale dto.Locale) []*dto.AdminFeatureResponse {
	return s.query.ListAdmin(req, locale)
}

func (s *ServiceDDD) GetAdmin(id string, locale dto.Locale) (*dto.AdminFeatureResponse, error) {
	return s.query.GetAdmin(id, locale)
}

func (s *ServiceDDD) Statuses(locale dto.Locale) []*dto.FeatureStatusResponse {
	return s.query.Statuses(locale)
}

func (s *ServiceDDD) Stats() feature.Stats {
	return s.query.Stats()
}

func (s *ServiceDDD) Categories() *dto.CategoriesResponse {
	return s.query.Categories()
}

func (s *ServiceDDD) EnableFeature(ctx context.Context, id string) (*dto.FeatureConfigResponse, error) {
	return s.toggle.Execute(ctx, id, true)
}

func (s *ServiceDDD) DisableFeature(ctx context.Context, id string) (*dto.FeatureConfigResponse, error) {
	return s.toggle.Execute(ctx, id, false)
}

func (s *ServiceDDD) GetConfig(id string) (*dto.FeatureConfigResponse, error) {
	return s.updateConfig.GetConfig(id)
}

func (s *ServiceDDD) UpdateConfig(ctx context.Context, id string, req dto.UpdateConfigRequest) (*dto.FeatureConfigResponse, error) {
	return s.updateConfig.Execute(ctx, id, req)
}

func (s *ServiceDDD) ListOverrides() *dto.OverridesResponse {
	return s.overrides.List()
}

func (s *ServiceDDD) SetOverride(ctx context.Context, id string, enabled bool, actor string) (*dto.OverridesResponse, error) {
	return s.overrides.Set(ctx, id, enabled, actor)
}

func (s *ServiceDDD) RemoveOverride(ctx context.Context, id, actor string) (*dto.OverridesResponse, error) {
	return s.overrides.Remove(ctx, id, actor)
}

func (s *ServiceDDD) BulkSetOverrides(ctx context.Context, overrides map[string]bool, actor string) (*dto.OverridesResponse, error) {
	return s.overrides.BulkSet(ctx, overrides, actor)
}

func (s *ServiceDDD) ClearOverrides(ctx context.Context, actor string) error {
	return s.overrides.Clear(ctx, actor)
}

func (s *ServiceDDD) ExportSnapshot() ([]byte, error) {
	return s.snapshot.ExportJSON()
}

func (s *ServiceDDD) ImportSnapshot(ctx context.Context, data []byte, actor string) (*dto.ImportSnapshotResponse, error) {
	return s.snapshot.Import(ctx, data, actor)
}

func (s *ServiceDDD) ValidateCatalog() *dto.ValidationReport {
	return s.validate.Execute()
}

func (s *ServiceDDD) ValidateDefinitions(defs []feature.Definition) (*dto.ValidationReport, error) {
	return s.validate.ExecuteDefinitions(defs)
}

func (s *ServiceDDD) LoadFeature(ctx context.Context, evalCtx flags.EvalContext, id string) (*dto.LoadResultResponse, error) {
	return s.load.Execute(ctx, evalCtx, id)
}

func (s *ServiceDDD) PreloadEnabled(ctx context.Context) int {
	return s.load.PreloadEnabled(ctx)
}

func (s *ServiceDDD) LoadingStats() *dto.LoadingStatsResponse {
	return s.load.Stats()
}

func (s *ServiceDDD) ClearLoaded() {
	s.load.Clear()
}
