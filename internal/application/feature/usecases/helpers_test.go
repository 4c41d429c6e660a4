package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

func newFeature(t *testing.T, def feature.Definition) *feature.Feature {
	t.Helper()
	if def.Category == "" {
		def.Category = feature.CategoryAutomation
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	f, err := feature.NewFeature(def)
	require.NoError(t, err)
	return f
}

func newRuntime(t *testing.T, defs ...feature.Definition) (*registry.Registry, *flags.Flags) {
	t.Helper()
	reg := registry.New(logger.NewNop())
	for _, def := range defs {
		require.True(t, reg.RegisterFeature(newFeature(t, def)))
	}
	return reg, flags.New(reg, logger.NewNop())
}
