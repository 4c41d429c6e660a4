package usecases

import (
	"context"
	"fmt"
	"slices"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

type BootstrapResult struct {
	Registered int
	Seeded     int
	Configs    int
	Overrides  int
}

// BootstrapCatalogUseCase fills the registry and flags from storage. Catalog
// entries not yet stored are inserted; stored rows win over the catalog file so
// administrator toggles survive restarts.
type BootstrapCatalogUseCase struct {
	featureRepo  feature.Repository
	configRepo   feature.ConfigRepository
	overrideRepo feature.OverrideRepository
	source       CatalogSource
	registry     *registry.Registry
	flags        *flags.Flags
	logger       logger.Interface
}

func NewBootstrapCatalogUseCase(
	featureRepo feature.Repository,
	configRepo feature.ConfigRepository,
	overrideRepo feature.OverrideRepository,
	source CatalogSource,
	reg *registry.Registry,
	fl *flags.Flags,
	logger logger.Interface,
) *BootstrapCatalogUseCase {
	return &BootstrapCatalogUseCase{
		featureRepo:  featureRepo,
		configRepo:   configRepo,
		overrideRepo: overrideRepo,
		source:       source,
		registry:     reg,
		flags:        fl,
		logger:       logger,
	}
}

func (uc *BootstrapCatalogUseCase) Execute(ctx context.Context) (*BootstrapResult, error) {
	uc.logger.Infow("executing bootstrap catalog use case")

	stored, err := uc.featureRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored features: %w", err)
	}

	seeded, err := uc.seedMissing(ctx, stored)
	if err != nil {
		return nil, err
	}
	all := slices.Concat(stored, seeded)

	uc.registry.Clear()
	result := &BootstrapResult{
		Registered: uc.registry.RegisterFeatures(all),
		Seeded:     len(seeded),
	}

	configs, err := uc.configRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature configs: %w", err)
	}
	restored := make([]feature.Config, 0, len(configs))
	for _, cfg := range configs {
		restored = append(restored, *cfg)
	}
	uc.registry.RestoreConfigs(restored)
	result.Configs = len(restored)

	overrides, err := uc.overrideRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature overrides: %w", err)
	}
	m := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		m[o.FeatureID] = o.Enabled
	}
	uc.flags.RestoreOverrides(m)
	result.Overrides = len(m)

	uc.logger.Infow("feature catalog bootstrapped",
		"registered", result.Registered,
		"seeded", result.Seeded,
		"configs", result.Configs,
		"overrides", result.Overrides,
	)
	return result, nil
}

func (uc *BootstrapCatalogUseCase) seedMissing(ctx context.Context, stored []*feature.Feature) ([]*feature.Feature, error) {
	defs, err := uc.source.Definitions()
	if err != nil {
		return nil, fmt.Errorf("failed to read feature catalog: %w", err)
	}

	known := make(map[string]struct{}, len(stored))
	for _, f := range stored {
		known[f.ID()] = struct{}{}
	}

	var missing []*feature.Feature
	for _, def := range defs {
		if _, ok := known[def.ID]; ok {
			continue
		}
		f, err := feature.NewFeature(def)
		if err != nil {
			uc.logger.Warnw("skipping invalid catalog entry", "feature_id", def.ID, "error", err)
			continue
		}
		known[def.ID] = struct{}{}
		missing = append(missing, f)
	}

	if len(missing) == 0 {
		return nil, nil
	}
	if err := uc.featureRepo.SaveAll(ctx, missing); err != nil {
		return nil, fmt.Errorf("failed to seed feature catalog: %w", err)
	}
	return missing, nil
}
