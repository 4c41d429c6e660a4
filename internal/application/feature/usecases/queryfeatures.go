package usecases

import (
	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// QueryFeaturesUseCase serves read-only views of the registry and flag decisions.
type QueryFeaturesUseCase struct {
	registry        *registry.Registry
	flags           *flags.Flags
	markdownService dto.MarkdownService
	logger          logger.Interface
}

func NewQueryFeaturesUseCase(
	reg *registry.Registry,
	fl *flags.Flags,
	markdownService dto.MarkdownService,
	logger logger.Interface,
) *QueryFeaturesUseCase {
	return &QueryFeaturesUseCase{
		registry:        reg,
		flags:           fl,
		markdownService: markdownService,
		logger:          logger,
	}
}

// ListEnabled returns the features that are on for evalCtx.
func (uc *QueryFeaturesUseCase) ListEnabled(evalCtx flags.EvalContext, locale dto.Locale) []*dto.FeatureResponse {
	all := uc.registry.GetAllFeatures()
	enabled := make([]*feature.Feature, 0, len(all))
	for _, f := range all {
		if uc.flags.IsEnabledFor(evalCtx, f.ID()) {
			enabled = append(enabled, f)
		}
	}
	return dto.ToFeatureResponses(enabled, locale, nil)
}

func (uc *QueryFeaturesUseCase) GetStatus(evalCtx flags.EvalContext, id string, locale dto.Locale) (*dto.FeatureStatusResponse, error) {
	f, ok := uc.registry.GetFeature(id)
	if !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}
	return dto.ToFeatureStatusResponse(uc.flags.GetStatusFor(evalCtx, id), f, locale), nil
}

// ListAdmin lists the catalog filtered by category and status, with descriptions
// rendered to HTML.
func (uc *QueryFeaturesUseCase) ListAdmin(req dto.ListFeaturesRequest, locale dto.Locale) []*dto.AdminFeatureResponse {
	var features []*feature.Feature
	if req.Category != "" {
		features = uc.registry.GetFeaturesByCategory(feature.Category(req.Category))
	} else {
		features = uc.registry.GetAllFeatures()
	}

	out := make([]*dto.AdminFeatureResponse, 0, len(features))
	for _, f := range features {
		if req.Status != "" && f.Status() != feature.Status(req.Status) {
			continue
		}
		out = append(out, dto.ToAdminFeatureResponse(f, uc.flags.GetStatus(f.ID()), locale, uc.markdownService))
	}
	return out
}

func (uc *QueryFeaturesUseCase) GetAdmin(id string, locale dto.Locale) (*dto.AdminFeatureResponse, error) {
	f, ok := uc.registry.GetFeature(id)
	if !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}
	return dto.ToAdminFeatureResponse(f, uc.flags.GetStatus(id), locale, uc.markdownService), nil
}

func (uc *QueryFeaturesUseCase) Statuses(locale dto.Locale) []*dto.FeatureStatusResponse {
	return dto.ToFeatureStatusResponses(uc.flags.GetAllStatuses(), uc.registry.GetFeature, locale)
}

func (uc *QueryFeaturesUseCase) Stats() feature.Stats {
	return uc.registry.GetStats()
}

func (uc *QueryFeaturesUseCase) Categories() *dto.CategoriesResponse {
	return &dto.CategoriesResponse{Categories: uc.registry.GetCategories()}
}
