package usecases

import (
	"fmt"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// ValidateCatalogUseCase reports dependency ids that are not registered and
// dependency cycles. The registry itself tolerates both.
type ValidateCatalogUseCase struct {
	registry *registry.Registry
	logger   logger.Interface
}

func NewValidateCatalogUseCase(reg *registry.Registry, logger logger.Interface) *ValidateCatalogUseCase {
	return &ValidateCatalogUseCase{registry: reg, logger: logger}
}

// Execute validates the live registry.
func (uc *ValidateCatalogUseCase) Execute() *dto.ValidationReport {
	return report(uc.registry)
}

// ExecuteDefinitions validates defs in isolation from the live registry.
func (uc *ValidateCatalogUseCase) ExecuteDefinitions(defs []feature.Definition) (*dto.ValidationReport, error) {
	scratch := registry.New(uc.logger)
	for _, def := range defs {
		f, err := feature.NewFeature(def)
		if err != nil {
			return nil, errors.NewValidationError("invalid feature definition", fmt.Sprintf("%s: %v", def.ID, err))
		}
		if !scratch.RegisterFeature(f) {
			return nil, errors.NewValidationError("duplicate feature id", def.ID)
		}
	}
	return report(scratch), nil
}

func report(reg *registry.Registry) *dto.ValidationReport {
	missing := reg.MissingDependencies()
	cycles := reg.DependencyCycles()
	return &dto.ValidationReport{
		Valid:               len(missing) == 0 && len(cycles) == 0,
		Features:            len(reg.GetAllFeatures()),
		MissingDependencies: missing,
		Cycles:              cycles,
	}
}
