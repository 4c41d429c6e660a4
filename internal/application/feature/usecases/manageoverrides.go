package usecases

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// ManageOverridesUseCase persists administrator overrides before applying them
// to flags, which in turn publishes them to peer instances.
type ManageOverridesUseCase struct {
	overrideRepo feature.OverrideRepository
	registry     *registry.Registry
	flags        *flags.Flags
	logger       logger.Interface
}

func NewManageOverridesUseCase(
	overrideRepo feature.OverrideRepository,
	reg *registry.Registry,
	fl *flags.Flags,
	logger logger.Interface,
) *ManageOverridesUseCase {
	return &ManageOverridesUseCase{
		overrideRepo: overrideRepo,
		registry:     reg,
		flags:        fl,
		logger:       logger,
	}
}

func (uc *ManageOverridesUseCase) Set(ctx context.Context, id string, enabled bool, actor string) (*dto.OverridesResponse, error) {
	uc.logger.Infow("setting feature override", "feature_id", id, "enabled", enabled, "actor", actor)

	if _, ok := uc.registry.GetFeature(id); !ok {
		return nil, errors.NewNotFoundError("feature not found", id)
	}

	o := &feature.Override{FeatureID: id, Enabled: enabled, UpdatedBy: actor, UpdatedAt: biztime.NowUTC()}
	if err := uc.overrideRepo.Upsert(ctx, o); err != nil {
		uc.logger.Errorw("failed to persist override", "feature_id", id, "error", err)
		return nil, errors.NewInternalError("failed to save override")
	}

	uc.flags.SetOverride(id, enabled)
	return uc.List(), nil
}

// Remove drops the override for id. Removing an absent override succeeds.
func (uc *ManageOverridesUseCase) Remove(ctx context.Context, id, actor string) (*dto.OverridesResponse, error) {
	uc.logger.Infow("removing feature override", "feature_id", id, "actor", actor)

	if err := uc.overrideRepo.Delete(ctx, id); err != nil {
		uc.logger.Errorw("failed to delete override", "feature_id", id, "error", err)
		return nil, errors.NewInternalError("failed to remove override")
	}

	uc.flags.RemoveOverride(id)
	return uc.List(), nil
}

func (uc *ManageOverridesUseCase) Clear(ctx context.Context, actor string) error {
	uc.logger.Infow("clearing feature overrides", "actor", actor)

	if err := uc.overrideRepo.DeleteAll(ctx); err != nil {
		uc.logger.Errorw("failed to clear overrides", "error", err)
		return errors.NewInternalError("failed to clear overrides")
	}

	uc.flags.ClearOverrides()
	return nil
}

// BulkSet merges overrides into the current set. Every id must be registered.
func (uc *ManageOverridesUseCase) BulkSet(ctx context.Context, overrides map[string]bool, actor string) (*dto.OverridesResponse, error) {
	uc.logger.Infow("bulk setting feature overrides", "count", len(overrides), "actor", actor)

	var unknown []string
	for id := range overrides {
		if _, ok := uc.registry.GetFeature(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, errors.NewValidationError("unknown feature ids", strings.Join(unknown, ", "))
	}

	for _, o := range toOverrides(overrides, actor) {
		if err := uc.overrideRepo.Upsert(ctx, o); err != nil {
			uc.logger.Errorw("failed to persist override", "feature_id", o.FeatureID, "error", err)
			return nil, errors.NewInternalError("failed to save overrides")
		}
	}

	uc.flags.BulkSetOverrides(overrides)
	return uc.List(), nil
}

func (uc *ManageOverridesUseCase) List() *dto.OverridesResponse {
	return &dto.OverridesResponse{Overrides: uc.flags.GetOverrides()}
}

func toOverrides(m map[string]bool, actor string) []*feature.Override {
	now := biztime.NowUTC()
	out := make([]*feature.Override, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, &feature.Override{FeatureID: id, Enabled: m[id], UpdatedBy: actor, UpdatedAt: now})
	}
	return out
}
