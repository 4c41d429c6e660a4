package usecases

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

type UpdateFeatureConfigUseCase struct {
	configRepo feature.ConfigRepository
	registry   *registry.Registry
	logger     logger.Interface
}

func NewUpdateFeatureConfigUseCase(
	configRepo feature.ConfigRepository,
	reg *registry.Registry,
	logger logger.Interface,
) *UpdateFeatureConfigUseCase {
	return &UpdateFeatureConfigUseCase{
		configRepo: configRepo,
		registry:   reg,
		logger:     logger,
	}
}

func (uc *UpdateFeatureConfigUseCase) Execute(ctx context.Context, id string, req dto.UpdateConfigRequest) (*dto.FeatureConfigResponse, error) {
	uc.logger.Infow("executing update feature config use case", "feature_id", id)

	if _, ok := uc.registry.GetFeature(id); !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}

	cfg := uc.registry.UpdateFeatureConfig(id, req.ToPatch())
	if err := uc.configRepo.Upsert(ctx, &cfg); err != nil {
		uc.logger.Errorw("failed to persist feature config", "feature_id", id, "error", err)
		return nil, errors.NewInternalError("failed to save feature config")
	}

	return dto.ToFeatureConfigResponse(cfg), nil
}

// GetConfig returns the stored config for id, or the default when none exists.
func (uc *UpdateFeatureConfigUseCase) GetConfig(id string) (*dto.FeatureConfigResponse, error) {
	if _, ok := uc.registry.GetFeature(id); !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}
	cfg, ok := uc.registry.GetFeatureConfig(id)
	if !ok {
		cfg = feature.DefaultConfig(id)
	}
	return dto.ToFeatureConfigResponse(cfg), nil
}
