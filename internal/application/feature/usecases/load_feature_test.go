package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	apperrors "github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

type stubResolver struct {
	err error
}

func (r stubResolver) Resolve(ctx context.Context, locator string) (feature.Component, error) {
	if r.err != nil {
		return nil, r.err
	}
	return "bundle:" + locator, nil
}

func newLoadUseCase(t *testing.T, resolver loader.ComponentResolver) (*LoadFeatureUseCase, *flags.Flags) {
	t.Helper()
	reg, fl := newRuntime(t,
		feature.Definition{ID: "ai-chat", Enabled: true, Metadata: map[string]any{feature.MetadataComponentKey: "chat/index.js"}},
		feature.Definition{ID: "api-keys", Enabled: true, RequiredPermissions: []string{"settings:api"}},
		feature.Definition{ID: "webhooks", Enabled: false},
		feature.Definition{ID: "chat-history", Enabled: true, Dependencies: []string{"webhooks"}},
	)
	l := loader.New(reg, resolver, loader.Options{}, logger.NewNop())
	return NewLoadFeatureUseCase(l, reg, fl, logger.NewNop()), fl
}

func TestLoadFeatureUseCase_Execute(t *testing.T) {
	uc, _ := newLoadUseCase(t, stubResolver{})

	resp, err := uc.Execute(context.Background(), flags.DefaultContext(), "ai-chat")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ai-chat", resp.FeatureID)
	assert.Equal(t, "chat/index.js", resp.Component)
	assert.Empty(t, resp.Warnings)

	stats := uc.Stats()
	assert.Equal(t, 1, stats.TotalLoaded)

	uc.Clear()
	assert.Equal(t, 0, uc.Stats().TotalLoaded)
}

func TestLoadFeatureUseCase_Gating(t *testing.T) {
	uc, fl := newLoadUseCase(t, stubResolver{})

	_, err := uc.Execute(context.Background(), flags.DefaultContext(), "ghost")
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = uc.Execute(context.Background(), flags.EvalContext{UserPermissions: []string{}}, "api-keys")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.GetAppError(err).Type)

	_, err = uc.Execute(context.Background(), flags.DefaultContext(), "webhooks")
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.GetAppError(err).Type)

	// An override opens the gate, but the loader still refuses disabled features.
	fl.SetOverride("webhooks", true)
	resp, err := uc.Execute(context.Background(), flags.DefaultContext(), "webhooks")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Feature webhooks is disabled", resp.Error)

	resp, err = uc.Execute(context.Background(), flags.DefaultContext(), "chat-history")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Feature dependencies not met: webhooks", resp.Error)
}

func TestLoadFeatureUseCase_ResolverFailureDegrades(t *testing.T) {
	uc, _ := newLoadUseCase(t, stubResolver{err: errors.New("404")})

	resp, err := uc.Execute(context.Background(), flags.DefaultContext(), "ai-chat")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "Failed to load component for feature ai-chat")
}

func TestLoadFeatureUseCase_PreloadEnabled(t *testing.T) {
	uc, fl := newLoadUseCase(t, stubResolver{})
	fl.SetOverride("api-keys", false)

	assert.Equal(t, 1, uc.PreloadEnabled(context.Background()), "only ai-chat is on and loadable")
	assert.Equal(t, 1, uc.Stats().TotalLoaded)
}
