package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	apperrors "github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

func TestToggleFeatureUseCase_Execute(t *testing.T) {
	reg, fl := newRuntime(t, feature.Definition{ID: "ai-chat", Enabled: true})

	var persisted *feature.Config
	var stored bool
	featureRepo := &mockFeatureRepository{
		SetEnabledFunc: func(ctx context.Context, id string, enabled bool) error {
			stored = enabled
			return nil
		},
	}
	configRepo := &mockConfigRepository{
		UpsertFunc: func(ctx context.Context, cfg *feature.Config) error {
			persisted = cfg
			return nil
		},
	}

	uc := NewToggleFeatureUseCase(featureRepo, configRepo, reg, fl, logger.NewNop())

	resp, err := uc.Execute(context.Background(), "ai-chat", false)
	require.NoError(t, err)
	assert.False(t, resp.Enabled)
	assert.False(t, stored)
	assert.False(t, reg.IsFeatureEnabled("ai-chat"))
	require.NotNil(t, persisted)
	assert.Equal(t, "ai-chat", persisted.FeatureID)
	assert.False(t, persisted.Enabled)

	resp, err = uc.Execute(context.Background(), "ai-chat", true)
	require.NoError(t, err)
	assert.True(t, resp.Enabled)
	assert.True(t, reg.IsFeatureEnabled("ai-chat"))
}

func TestToggleFeatureUseCase_NotFound(t *testing.T) {
	reg, fl := newRuntime(t)
	uc := NewToggleFeatureUseCase(&mockFeatureRepository{}, &mockConfigRepository{}, reg, fl, logger.NewNop())

	_, err := uc.Execute(context.Background(), "ghost", true)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestToggleFeatureUseCase_PersistFailureLeavesRegistry(t *testing.T) {
	reg, fl := newRuntime(t, feature.Definition{ID: "ai-chat", Enabled: true})
	featureRepo := &mockFeatureRepository{
		SetEnabledFunc: func(context.Context, string, bool) error { return errors.New("db down") },
	}
	uc := NewToggleFeatureUseCase(featureRepo, &mockConfigRepository{}, reg, fl, logger.NewNop())

	_, err := uc.Execute(context.Background(), "ai-chat", false)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(err).Type)
	assert.True(t, reg.IsFeatureEnabled("ai-chat"))
}

func TestToggleFeatureUseCase_ConfigFailureIsTolerated(t *testing.T) {
	reg, fl := newRuntime(t, feature.Definition{ID: "ai-chat", Enabled: true})
	configRepo := &mockConfigRepository{
		UpsertFunc: func(context.Context, *feature.Config) error { return errors.New("db down") },
	}
	uc := NewToggleFeatureUseCase(&mockFeatureRepository{}, configRepo, reg, fl, logger.NewNop())

	resp, err := uc.Execute(context.Background(), "ai-chat", false)
	require.NoError(t, err)
	assert.False(t, resp.Enabled)
}

func TestToggleFeatureUseCase_NotifiesSubscribers(t *testing.T) {
	reg, fl := newRuntime(t, feature.Definition{ID: "ai-chat", Enabled: true})
	uc := NewToggleFeatureUseCase(&mockFeatureRepository{}, &mockConfigRepository{}, reg, fl, logger.NewNop())

	var seen []bool
	unsubscribe := fl.Subscribe("ai-chat", func(enabled bool) { seen = append(seen, enabled) })
	defer unsubscribe()

	_, err := uc.Execute(context.Background(), "ai-chat", false)
	require.NoError(t, err)
	assert.False(t, fl.IsEnabled("ai-chat"))
	assert.Equal(t, []bool{false}, seen)

	_, err = uc.Execute(context.Background(), "ai-chat", true)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, seen)
}

func TestToggleFeatureUseCase_PersistFailureNotifiesNobody(t *testing.T) {
	reg, fl := newRuntime(t, feature.Definition{ID: "ai-chat", Enabled: true})
	featureRepo := &mockFeatureRepository{
		SetEnabledFunc: func(context.Context, string, bool) error { return errors.New("db down") },
	}
	uc := NewToggleFeatureUseCase(featureRepo, &mockConfigRepository{}, reg, fl, logger.NewNop())

	var seen []bool
	defer fl.Subscribe("ai-chat", func(enabled bool) { seen = append(seen, enabled) })()

	_, err := uc.Execute(context.Background(), "ai-chat", false)
	require.Error(t, err)
	assert.Empty(t, seen)
}
