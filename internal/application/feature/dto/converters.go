package dto

import (
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

type MarkdownService interface {
	ToHTMLSanitized(markdown string) (string, error)
}

// ToFeatureResponse renders f for locale. Arabic falls back to the English text
// when no translation exists. markdownSvc may be nil.
func ToFeatureResponse(f *feature.Feature, locale Locale, markdownSvc MarkdownService) *FeatureResponse {
	if f == nil {
		return nil
	}

	name, description := f.Name(), f.Description()
	if locale == LocaleArabic {
		if f.NameAr() != "" {
			name = f.NameAr()
		}
		if f.DescriptionAr() != "" {
			description = f.DescriptionAr()
		}
	}

	descriptionHTML := ""
	if markdownSvc != nil && description != "" {
		if html, err := markdownSvc.ToHTMLSanitized(description); err == nil {
			descriptionHTML = html
		}
	}

	return &FeatureResponse{
		ID:                  f.ID(),
		Name:                name,
		Description:         description,
		DescriptionHTML:     descriptionHTML,
		Locale:              locale,
		Direction:           locale.Direction(),
		Category:            f.Category(),
		Status:              f.Status(),
		Enabled:             f.IsEnabled(),
		Beta:                f.IsBeta(),
		RequiredPermissions: f.RequiredPermissions(),
		Dependencies:        f.Dependencies(),
		Metadata:            f.Metadata(),
		CreatedAt:           f.CreatedAt(),
		UpdatedAt:           f.UpdatedAt(),
	}
}

func ToFeatureResponses(features []*feature.Feature, locale Locale, markdownSvc MarkdownService) []*FeatureResponse {
	out := make([]*FeatureResponse, 0, len(features))
	for _, f := range features {
		out = append(out, ToFeatureResponse(f, locale, markdownSvc))
	}
	return out
}

func ToAdminFeatureResponse(f *feature.Feature, st flags.Status, locale Locale, markdownSvc MarkdownService) *AdminFeatureResponse {
	if f == nil {
		return nil
	}
	return &AdminFeatureResponse{
		FeatureResponse:  *ToFeatureResponse(f, locale, markdownSvc),
		NameEn:           f.Name(),
		NameAr:           f.NameAr(),
		DescriptionEn:    f.Description(),
		DescriptionAr:    f.DescriptionAr(),
		EffectiveEnabled: st.Enabled,
		Overridden:       st.Overridden,
		Override:         st.Override,
	}
}

func ToFeatureStatusResponses(statuses []flags.Status, catalog func(id string) (*feature.Feature, bool), locale Locale) []*FeatureStatusResponse {
	out := make([]*FeatureStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		f, _ := catalog(st.ID)
		out = append(out, ToFeatureStatusResponse(st, f, locale))
	}
	return out
}

func ToFeatureStatusResponse(st flags.Status, f *feature.Feature, locale Locale) *FeatureStatusResponse {
	resp := &FeatureStatusResponse{
		ID:                  st.ID,
		Enabled:             st.Enabled,
		RegistryEnabled:     st.RegistryEnabled,
		Overridden:          st.Overridden,
		Override:            st.Override,
		Beta:                st.Beta,
		Status:              st.Status,
		RequiredPermissions: st.Permissions,
	}
	if f != nil {
		resp.Name = f.Name()
		if locale == LocaleArabic && f.NameAr() != "" {
			resp.Name = f.NameAr()
		}
	}
	return resp
}

func ToFeatureConfigResponse(cfg feature.Config) *FeatureConfigResponse {
	cfg = cfg.Clone()
	return &FeatureConfigResponse{
		FeatureID:   cfg.FeatureID,
		Enabled:     cfg.Enabled,
		Settings:    cfg.Settings,
		Permissions: cfg.Permissions,
		UpdatedAt:   cfg.UpdatedAt,
	}
}

func (r UpdateConfigRequest) ToPatch() feature.ConfigPatch {
	return feature.ConfigPatch{
		Enabled:     r.Enabled,
		Settings:    r.Settings,
		Permissions: r.Permissions,
	}
}

// ToLoadResultResponse describes res without exposing the component value; only
// the locator it was resolved from is reported.
func ToLoadResultResponse(id string, res loader.Result, lf *loader.LoadedFeature) *LoadResultResponse {
	resp := &LoadResultResponse{
		FeatureID: id,
		Success:   res.Success,
		Error:     res.Error,
		Warnings:  res.Warnings,
	}
	if res.Feature != nil {
		if locator, ok := res.Feature.ComponentLocator(); ok {
			resp.Component = locator
		}
	}
	if lf != nil {
		resp.LoadTimeMs = float64(lf.LoadTime.Microseconds()) / 1000
	}
	return resp
}

func ToLoadingStatsResponse(stats loader.LoadingStats) *LoadingStatsResponse {
	slowest := make([]SlowFeatureResponse, 0, len(stats.Slowest))
	for _, s := range stats.Slowest {
		slowest = append(slowest, SlowFeatureResponse{
			ID:         s.ID,
			LoadTimeMs: float64(s.LoadTime.Microseconds()) / 1000,
		})
	}
	return &LoadingStatsResponse{
		TotalLoaded:       stats.TotalLoaded,
		TotalLoadTimeMs:   float64(stats.TotalLoadTime.Microseconds()) / 1000,
		AverageLoadTimeMs: float64(stats.AverageLoadTime.Microseconds()) / 1000,
		Slowest:           slowest,
	}
}
