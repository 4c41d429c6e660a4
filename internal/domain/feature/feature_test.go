package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() Definition {
	return Definition{
		ID:                  "advanced-analytics",
		Name:                "Advanced Analytics",
		NameAr:              "تحليلات متقدمة",
		Category:            CategoryAnalytics,
		Enabled:             true,
		RequiredPermissions: []string{"analytics:read"},
		Dependencies:        []string{"basic-analytics"},
		Metadata:            map[string]any{MetadataComponentKey: "analytics/advanced"},
	}
}

func TestNewFeature(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr error
	}{
		{name: "valid", mutate: func(d *Definition) {}},
		{name: "empty id", mutate: func(d *Definition) { d.ID = "" }, wantErr: ErrInvalidFeatureID},
		{name: "id with space", mutate: func(d *Definition) { d.ID = "ai chat" }, wantErr: ErrInvalidFeatureID},
		{name: "unknown category", mutate: func(d *Definition) { d.Category = "games" }, wantErr: ErrInvalidCategory},
		{name: "unknown status", mutate: func(d *Definition) { d.Status = "retired" }, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(&def)

			f, err := NewFeature(def)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, def.ID, f.ID())
			assert.Equal(t, StatusActive, f.Status())
			assert.False(t, f.CreatedAt().IsZero())
			assert.Equal(t, f.CreatedAt(), f.UpdatedAt())
		})
	}
}

func TestNewFeature_CopiesInput(t *testing.T) {
	def := validDefinition()
	f, err := NewFeature(def)
	require.NoError(t, err)

	def.Dependencies[0] = "mutated"
	def.Metadata["extra"] = true

	assert.Equal(t, []string{"basic-analytics"}, f.Dependencies())
	_, ok := f.Metadata()["extra"]
	assert.False(t, ok)
}

func TestFeature_EnableDisableBumpsUpdatedAt(t *testing.T) {
	f := ReconstructFeature(validDefinition(), time.Unix(0, 0).UTC(), time.Unix(0, 0).UTC())

	f.Disable()
	assert.False(t, f.IsEnabled())
	assert.True(t, f.UpdatedAt().After(f.CreatedAt()))

	before := f.UpdatedAt()
	f.Enable()
	assert.True(t, f.IsEnabled())
	assert.False(t, f.UpdatedAt().Before(before))
}

func TestFeature_ComponentLocator(t *testing.T) {
	f, err := NewFeature(validDefinition())
	require.NoError(t, err)

	locator, ok := f.ComponentLocator()
	assert.True(t, ok)
	assert.Equal(t, "analytics/advanced", locator)

	f.SetMetadata(MetadataComponentKey, nil)
	_, ok = f.ComponentLocator()
	assert.False(t, ok)

	f.SetMetadata(MetadataComponentKey, 42)
	_, ok = f.ComponentLocator()
	assert.False(t, ok, "non-string locator is ignored")
}

func TestFeature_PermitsAll(t *testing.T) {
	def := validDefinition()
	def.RequiredPermissions = []string{"x", "y"}
	f, err := NewFeature(def)
	require.NoError(t, err)

	assert.True(t, f.PermitsAll([]string{"x", "y", "z"}))
	assert.False(t, f.PermitsAll([]string{"x"}))
	assert.False(t, f.PermitsAll(nil))

	def.RequiredPermissions = nil
	open, err := NewFeature(def)
	require.NoError(t, err)
	assert.True(t, open.PermitsAll(nil))
}

func TestFeature_CloneIsIndependent(t *testing.T) {
	f, err := NewFeature(validDefinition())
	require.NoError(t, err)

	c := f.Clone()
	c.Disable()
	c.SetMetadata("owner", "growth")

	assert.True(t, f.IsEnabled())
	_, ok := f.Metadata()["owner"]
	assert.False(t, ok)
}

func TestFeature_ToDefinitionRoundTrip(t *testing.T) {
	def := validDefinition()
	def.Status = StatusBeta
	f, err := NewFeature(def)
	require.NoError(t, err)

	assert.Equal(t, def, f.ToDefinition())
}

func TestConfig_Merge(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	base := DefaultConfig("chat")
	base.Settings = map[string]any{"model": "small"}

	disabled := false
	merged := base.Merge(ConfigPatch{
		Enabled:  &disabled,
		Settings: map[string]any{"temperature": 0.2},
	}, now)

	assert.False(t, merged.Enabled)
	assert.Equal(t, map[string]any{"model": "small", "temperature": 0.2}, merged.Settings)
	assert.Nil(t, merged.Permissions)
	assert.Equal(t, now, merged.UpdatedAt)
	assert.Equal(t, map[string]any{"model": "small"}, base.Settings, "base is not mutated")

	replaced := merged.Merge(ConfigPatch{Permissions: []string{"chat:use"}}, now)
	assert.Equal(t, []string{"chat:use"}, replaced.Permissions)
	assert.False(t, replaced.Enabled)
}

func TestAllCategories(t *testing.T) {
	cats := AllCategories()
	assert.Len(t, cats, 10)
	for _, c := range cats {
		assert.True(t, c.IsValid(), c)
	}

	cats[0] = "mutated"
	assert.Equal(t, CategoryAnalytics, AllCategories()[0])
}
