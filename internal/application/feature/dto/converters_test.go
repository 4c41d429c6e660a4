package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/services/markdown"
)

type failingMarkdown struct{}

func (failingMarkdown) ToHTMLSanitized(string) (string, error) { return "", errors.New("boom") }

func newTestFeature(t *testing.T, def feature.Definition) *feature.Feature {
	t.Helper()
	f, err := feature.NewFeature(def)
	require.NoError(t, err)
	return f
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", LocaleEnglish},
		{"ar", LocaleArabic},
		{"ar-SA,ar;q=0.9,en;q=0.8", LocaleArabic},
		{"en-US,en;q=0.9", LocaleEnglish},
		{"fr-FR", LocaleEnglish},
		{"en;q=0.5,ar;q=0.9", LocaleArabic},
		{";;;garbage", LocaleEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocale(tt.header))
		})
	}
}

func TestLocaleDirection(t *testing.T) {
	assert.Equal(t, "rtl", LocaleArabic.Direction())
	assert.Equal(t, "ltr", LocaleEnglish.Direction())
}

func TestToFeatureResponse(t *testing.T) {
	f := newTestFeature(t, feature.Definition{
		ID:           "ai-chat",
		Name:         "AI Chat",
		NameAr:       "الدردشة الذكية",
		Description:  "Chat with **AI** agents",
		Category:     feature.CategoryCommunications,
		Enabled:      true,
		Dependencies: []string{"webhooks"},
		Metadata:     map[string]any{"component": "communications/ai-chat"},
	})

	t.Run("english", func(t *testing.T) {
		resp := ToFeatureResponse(f, LocaleEnglish, markdown.NewMarkdownService())
		require.NotNil(t, resp)
		assert.Equal(t, "AI Chat", resp.Name)
		assert.Equal(t, "ltr", resp.Direction)
		assert.Contains(t, resp.DescriptionHTML, "<strong>AI</strong>")
		assert.Equal(t, []string{"webhooks"}, resp.Dependencies)
	})

	t.Run("arabic falls back to english description", func(t *testing.T) {
		resp := ToFeatureResponse(f, LocaleArabic, nil)
		assert.Equal(t, "الدردشة الذكية", resp.Name)
		assert.Equal(t, "Chat with **AI** agents", resp.Description)
		assert.Equal(t, "rtl", resp.Direction)
		assert.Empty(t, resp.DescriptionHTML)
	})

	t.Run("markdown failure leaves html empty", func(t *testing.T) {
		resp := ToFeatureResponse(f, LocaleEnglish, failingMarkdown{})
		assert.Empty(t, resp.DescriptionHTML)
	})

	t.Run("nil feature", func(t *testing.T) {
		assert.Nil(t, ToFeatureResponse(nil, LocaleEnglish, nil))
	})
}

func TestToAdminFeatureResponse(t *testing.T) {
	f := newTestFeature(t, feature.Definition{ID: "webhooks", Name: "Webhooks", NameAr: "خطافات الويب", Category: feature.CategoryIntegrations, Enabled: true})
	off := false

	resp := ToAdminFeatureResponse(f, flags.Status{ID: "webhooks", Enabled: false, Overridden: true, Override: &off}, LocaleArabic, nil)
	require.NotNil(t, resp)
	assert.Equal(t, "خطافات الويب", resp.Name)
	assert.Equal(t, "Webhooks", resp.NameEn)
	assert.True(t, resp.Enabled)
	assert.False(t, resp.EffectiveEnabled)
	assert.True(t, resp.Overridden)
	require.NotNil(t, resp.Override)
	assert.False(t, *resp.Override)
}

func TestToFeatureStatusResponses(t *testing.T) {
	f := newTestFeature(t, feature.Definition{ID: "a", Name: "Alpha", NameAr: "ألفا", Category: feature.CategoryDesign})
	lookup := func(id string) (*feature.Feature, bool) {
		if id == "a" {
			return f, true
		}
		return nil, false
	}

	out := ToFeatureStatusResponses([]flags.Status{{ID: "a", Enabled: true}, {ID: "ghost"}}, lookup, LocaleArabic)
	require.Len(t, out, 2)
	assert.Equal(t, "ألفا", out[0].Name)
	assert.True(t, out[0].Enabled)
	assert.Empty(t, out[1].Name)
}

func TestToLoadResultResponse(t *testing.T) {
	f := newTestFeature(t, feature.Definition{
		ID:       "usage",
		Name:     "Usage",
		Category: feature.CategoryAnalytics,
		Enabled:  true,
		Metadata: map[string]any{"component": "analytics/usage"},
	})

	resp := ToLoadResultResponse("usage", loader.Result{Success: true, Feature: f, Warnings: []string{"w"}}, &loader.LoadedFeature{LoadTime: 1500 * time.Microsecond})
	assert.True(t, resp.Success)
	assert.Equal(t, "analytics/usage", resp.Component)
	assert.Equal(t, 1.5, resp.LoadTimeMs)
	assert.Equal(t, []string{"w"}, resp.Warnings)

	failed := ToLoadResultResponse("ghost", loader.Result{Error: "Feature ghost not found"}, nil)
	assert.False(t, failed.Success)
	assert.Equal(t, "Feature ghost not found", failed.Error)
	assert.Zero(t, failed.LoadTimeMs)
}

func TestToLoadingStatsResponse(t *testing.T) {
	resp := ToLoadingStatsResponse(loader.LoadingStats{
		TotalLoaded:     2,
		TotalLoadTime:   3 * time.Millisecond,
		AverageLoadTime: 1500 * time.Microsecond,
		Slowest:         []loader.SlowFeature{{ID: "b", LoadTime: 2 * time.Millisecond}, {ID: "a", LoadTime: time.Millisecond}},
	})
	assert.Equal(t, 2, resp.TotalLoaded)
	assert.Equal(t, 3.0, resp.TotalLoadTimeMs)
	assert.Equal(t, 1.5, resp.AverageLoadTimeMs)
	assert.Equal(t, []SlowFeatureResponse{{ID: "b", LoadTimeMs: 2}, {ID: "a", LoadTimeMs: 1}}, resp.Slowest)
}

func TestUpdateConfigRequest_ToPatch(t *testing.T) {
	on := true
	patch := UpdateConfigRequest{Enabled: &on, Settings: map[string]any{"limit": 5}}.ToPatch()
	assert.Equal(t, &on, patch.Enabled)
	assert.Equal(t, map[string]any{"limit": 5}, patch.Settings)
	assert.Nil(t, patch.Permissions)
}
