package usecases

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// ToggleFeatureUseCase enables or disables a feature in storage and then in the
// registry through flags, so subscribers and peer instances see the change. The
// new state is mirrored into the feature's config.
type ToggleFeatureUseCase struct {
	featureRepo feature.Repository
	configRepo  feature.ConfigRepository
	registry    *registry.Registry
	flags       *flags.Flags
	logger      logger.Interface
}

func NewToggleFeatureUseCase(
	featureRepo feature.Repository,
	configRepo feature.ConfigRepository,
	reg *registry.Registry,
	fl *flags.Flags,
	logger logger.Interface,
) *ToggleFeatureUseCase {
	return &ToggleFeatureUseCase{
		featureRepo: featureRepo,
		configRepo:  configRepo,
		registry:    reg,
		flags:       fl,
		logger:      logger,
	}
}

func (uc *ToggleFeatureUseCase) Execute(ctx context.Context, id string, enabled bool) (*dto.FeatureConfigResponse, error) {
	uc.logger.Infow("executing toggle feature use case", "feature_id", id, "enabled", enabled)

	if _, ok := uc.registry.GetFeature(id); !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}

	if err := uc.featureRepo.SetEnabled(ctx, id, enabled); err != nil {
		uc.logger.Errorw("failed to persist feature state", "feature_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update feature")
	}

	uc.flags.SetFeatureEnabled(id, enabled)

	cfg, _ := uc.registry.GetFeatureConfig(id)
	if err := uc.configRepo.Upsert(ctx, &cfg); err != nil {
		uc.logger.Warnw("failed to persist feature config", "feature_id", id, "error", err)
	}

	return dto.ToFeatureConfigResponse(cfg), nil
}
