package feature

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
)

// Component is an already-resolved consumable unit of a feature. Its concrete type
// is owned by whoever hosts the feature; the catalog never inspects it.
type Component = any

// MetadataComponentKey is the metadata entry holding a lazy-load locator.
const MetadataComponentKey = "component"

const maxIDLength = 64

// Definition is the registration input for a feature, as read from the catalog
// file, the database or an admin import.
type Definition struct {
	ID                  string         `yaml:"id" json:"id" validate:"required,max=64"`
	Name                string         `yaml:"name" json:"name" validate:"required"`
	NameAr              string         `yaml:"name_ar,omitempty" json:"nameAr"`
	Description         string         `yaml:"description,omitempty" json:"description"`
	DescriptionAr       string         `yaml:"description_ar,omitempty" json:"descriptionAr"`
	Category            Category       `yaml:"category" json:"category" validate:"required,oneof=analytics security payments communications automation users marketing settings integrations design"`
	Status              Status         `yaml:"status,omitempty" json:"status" validate:"omitempty,oneof=active inactive beta deprecated coming_soon"`
	Enabled             bool           `yaml:"enabled,omitempty" json:"enabled"`
	Beta                bool           `yaml:"beta,omitempty" json:"beta"`
	RequiredPermissions []string       `yaml:"required_permissions,omitempty" json:"requiredPermissions" validate:"unique,dive,required"`
	Dependencies        []string       `yaml:"dependencies,omitempty" json:"dependencies" validate:"unique,dive,required"`
	Metadata            map[string]any `yaml:"metadata,omitempty" json:"metadata"`
	Component           Component      `yaml:"-" json:"-"`
}

// Feature is a catalog entry for one toggleable capability.
type Feature struct {
	id                  string
	name                string
	nameAr              string
	description         string
	descriptionAr       string
	category            Category
	status              Status
	enabled             bool
	beta                bool
	requiredPermissions []string
	dependencies        []string
	metadata            map[string]any
	component           Component
	createdAt           time.Time
	updatedAt           time.Time
}

// NewFeature validates def and stamps creation time. An empty status defaults to
// active.
func NewFeature(def Definition) (*Feature, error) {
	if err := ValidateID(def.ID); err != nil {
		return nil, err
	}
	if !def.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, def.Category)
	}
	status := def.Status
	if status == "" {
		status = StatusActive
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, def.Status)
	}

	now := biztime.NowUTC()
	return &Feature{
		id:                  def.ID,
		name:                def.Name,
		nameAr:              def.NameAr,
		description:         def.Description,
		descriptionAr:       def.DescriptionAr,
		category:            def.Category,
		status:              status,
		enabled:             def.Enabled,
		beta:                def.Beta,
		requiredPermissions: slices.Clone(def.RequiredPermissions),
		dependencies:        slices.Clone(def.Dependencies),
		metadata:            maps.Clone(def.Metadata),
		component:           def.Component,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructFeature rebuilds a Feature from persistence without validation.
func ReconstructFeature(def Definition, createdAt, updatedAt time.Time) *Feature {
	return &Feature{
		id:                  def.ID,
		name:                def.Name,
		nameAr:              def.NameAr,
		description:         def.Description,
		descriptionAr:       def.DescriptionAr,
		category:            def.Category,
		status:              def.Status,
		enabled:             def.Enabled,
		beta:                def.Beta,
		requiredPermissions: def.RequiredPermissions,
		dependencies:        def.Dependencies,
		metadata:            def.Metadata,
		component:           def.Component,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// ValidateID rejects empty, oversized or whitespace-containing ids.
func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return fmt.Errorf("%w: %q", ErrInvalidFeatureID, id)
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidFeatureID, id)
	}
	return nil
}

func (f *Feature) ID() string                    { return f.id }
func (f *Feature) Name() string                  { return f.name }
func (f *Feature) NameAr() string                { return f.nameAr }
func (f *Feature) Description() string           { return f.description }
func (f *Feature) DescriptionAr() string         { return f.descriptionAr }
func (f *Feature) Category() Category            { return f.category }
func (f *Feature) Status() Status                { return f.status }
func (f *Feature) IsEnabled() bool               { return f.enabled }
func (f *Feature) IsBeta() bool                  { return f.beta }
func (f *Feature) RequiredPermissions() []string { return slices.Clone(f.requiredPermissions) }
func (f *Feature) Dependencies() []string        { return slices.Clone(f.dependencies) }
func (f *Feature) Metadata() map[string]any      { return maps.Clone(f.metadata) }
func (f *Feature) Component() Component          { return f.component }
func (f *Feature) CreatedAt() time.Time          { return f.createdAt }
func (f *Feature) UpdatedAt() time.Time          { return f.updatedAt }

// ComponentLocator returns the lazy-load locator stored in metadata, if any.
func (f *Feature) ComponentLocator() (string, bool) {
	v, ok := f.metadata[MetadataComponentKey]
	if !ok {
		return "", false
	}
	locator, ok := v.(string)
	return locator, ok && locator != ""
}

func (f *Feature) HasDependencies() bool {
	return len(f.dependencies) > 0
}

// PermitsAll reports whether granted covers every required permission. A feature
// with no required permissions permits everyone.
func (f *Feature) PermitsAll(granted []string) bool {
	if len(f.requiredPermissions) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	for _, p := range f.requiredPermissions {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

func (f *Feature) Enable() {
	f.enabled = true
	f.updatedAt = biztime.NowUTC()
}

func (f *Feature) Disable() {
	f.enabled = false
	f.updatedAt = biztime.NowUTC()
}

// SetMetadata sets one metadata entry. A nil value removes the key.
func (f *Feature) SetMetadata(key string, value any) {
	if value == nil {
		delete(f.metadata, key)
	} else {
		if f.metadata == nil {
			f.metadata = make(map[string]any)
		}
		f.metadata[key] = value
	}
	f.updatedAt = biztime.NowUTC()
}

// Clone returns a copy that shares no mutable state with f.
func (f *Feature) Clone() *Feature {
	c := *f
	c.requiredPermissions = slices.Clone(f.requiredPermissions)
	c.dependencies = slices.Clone(f.dependencies)
	c.metadata = maps.Clone(f.metadata)
	return &c
}

// ToDefinition converts f back to its registration form.
func (f *Feature) ToDefinition() Definition {
	return Definition{
		ID:                  f.id,
		Name:                f.name,
		NameAr:              f.nameAr,
		Description:         f.description,
		DescriptionAr:       f.descriptionAr,
		Category:            f.category,
		Status:              f.status,
		Enabled:             f.enabled,
		Beta:                f.beta,
		RequiredPermissions: slices.Clone(f.requiredPermissions),
		Dependencies:        slices.Clone(f.dependencies),
		Metadata:            maps.Clone(f.metadata),
		Component:           f.component,
	}
}
