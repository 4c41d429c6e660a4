package usecases

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// LoadFeatureUseCase loads a feature on behalf of a caller. The caller's flag
// decision gates the load; the loader then applies its own registry checks.
type LoadFeatureUseCase struct {
	loader   *loader.Loader
	registry *registry.Registry
	flags    *flags.Flags
	logger   logger.Interface
}

func NewLoadFeatureUseCase(l *loader.Loader, reg *registry.Registry, fl *flags.Flags, logger logger.Interface) *LoadFeatureUseCase {
	return &LoadFeatureUseCase{
		loader:   l,
		registry: reg,
		flags:    fl,
		logger:   logger,
	}
}

func (uc *LoadFeatureUseCase) Execute(ctx context.Context, evalCtx flags.EvalContext, id string) (*dto.LoadResultResponse, error) {
	if _, ok := uc.registry.GetFeature(id); !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}
	if !uc.flags.IsEnabledFor(evalCtx, id) {
		return nil, errors.NewForbiddenError("feature is not available")
	}

	res := uc.loader.LoadFeature(ctx, id)
	if !res.Success {
		uc.logger.Warnw("feature load failed", "feature_id", id, "error", res.Error)
	}
	lf, _ := uc.loader.GetLoadedFeature(id)
	return dto.ToLoadResultResponse(id, res, lf), nil
}

// PreloadEnabled loads every feature that is on under the instance context and
// returns how many succeeded.
func (uc *LoadFeatureUseCase) PreloadEnabled(ctx context.Context) int {
	var ids []string
	for _, f := range uc.registry.GetAllFeatures() {
		if uc.flags.IsEnabled(f.ID()) {
			ids = append(ids, f.ID())
		}
	}
	return uc.loader.PreloadFeatures(ctx, ids)
}

func (uc *LoadFeatureUseCase) Stats() *dto.LoadingStatsResponse {
	return dto.ToLoadingStatsResponse(uc.loader.GetLoadingStats())
}

func (uc *LoadFeatureUseCase) Clear() {
	uc.loader.ClearLoadedFeatures()
	uc.logger.Infow("loader cache cleared")
}
