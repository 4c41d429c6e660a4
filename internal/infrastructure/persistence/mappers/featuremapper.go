package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/persistence/models"
)

// FeatureMapper converts between catalog rows and domain features.
type FeatureMapper interface {
	ToDomain(model *models.FeatureModel) (*feature.Feature, error)
	ToModel(f *feature.Feature) (*models.FeatureModel, error)
	ToDomainList(modelList []*models.FeatureModel) ([]*feature.Feature, error)
}

type FeatureMapperImpl struct{}

func NewFeatureMapper() FeatureMapper {
	return &FeatureMapperImpl{}
}

func (m *FeatureMapperImpl) ToDomain(model *models.FeatureModel) (*feature.Feature, error) {
	if model == nil {
		return nil, nil
	}

	def := feature.Definition{
		ID:            model.ID,
		Name:          model.Name,
		NameAr:        model.NameAr,
		Description:   model.Description,
		DescriptionAr: model.DescriptionAr,
		Category:      feature.Category(model.Category),
		Status:        feature.Status(model.Status),
		Enabled:       model.Enabled,
		Beta:          model.Beta,
	}
	if err := unmarshalJSON(model.RequiredPermissions, &def.RequiredPermissions); err != nil {
		return nil, fmt.Errorf("feature %s: required_permissions: %w", model.ID, err)
	}
	if err := unmarshalJSON(model.Dependencies, &def.Dependencies); err != nil {
		return nil, fmt.Errorf("feature %s: dependencies: %w", model.ID, err)
	}
	if err := unmarshalJSON(model.Metadata, &def.Metadata); err != nil {
		return nil, fmt.Errorf("feature %s: metadata: %w", model.ID, err)
	}

	return feature.ReconstructFeature(def, model.CreatedAt, model.UpdatedAt), nil
}

func (m *FeatureMapperImpl) ToModel(f *feature.Feature) (*models.FeatureModel, error) {
	if f == nil {
		return nil, nil
	}

	model := &models.FeatureModel{
		ID:            f.ID(),
		Name:          f.Name(),
		NameAr:        f.NameAr(),
		Description:   f.Description(),
		DescriptionAr: f.DescriptionAr(),
		Category:      string(f.Category()),
		Status:        string(f.Status()),
		Enabled:       f.IsEnabled(),
		Beta:          f.IsBeta(),
		CreatedAt:     f.CreatedAt(),
		UpdatedAt:     f.UpdatedAt(),
	}

	var err error
	if model.RequiredPermissions, err = marshalJSON(f.RequiredPermissions()); err != nil {
		return nil, fmt.Errorf("feature %s: required_permissions: %w", f.ID(), err)
	}
	if model.Dependencies, err = marshalJSON(f.Dependencies()); err != nil {
		return nil, fmt.Errorf("feature %s: dependencies: %w", f.ID(), err)
	}
	if model.Metadata, err = marshalJSON(f.Metadata()); err != nil {
		return nil, fmt.Errorf("feature %s: metadata: %w", f.ID(), err)
	}
	return model, nil
}

func (m *FeatureMapperImpl) ToDomainList(modelList []*models.FeatureModel) ([]*feature.Feature, error) {
	domains := make([]*feature.Feature, 0, len(modelList))
	for _, model := range modelList {
		f, err := m.ToDomain(model)
		if err != nil {
			return nil, err
		}
		if f != nil {
			domains = append(domains, f)
		}
	}
	return domains, nil
}

// ConfigToDomain converts a config row. Malformed JSON columns are reported.
func ConfigToDomain(model *models.FeatureConfigModel) (*feature.Config, error) {
	cfg := &feature.Config{
		FeatureID: model.FeatureID,
		Enabled:   model.Enabled,
		UpdatedAt: model.UpdatedAt,
	}
	if err := unmarshalJSON(model.Settings, &cfg.Settings); err != nil {
		return nil, fmt.Errorf("feature config %s: settings: %w", model.FeatureID, err)
	}
	if err := unmarshalJSON(model.Permissions, &cfg.Permissions); err != nil {
		return nil, fmt.Errorf("feature config %s: permissions: %w", model.FeatureID, err)
	}
	return cfg, nil
}

func ConfigToModel(cfg *feature.Config) (*models.FeatureConfigModel, error) {
	settings, err := marshalJSON(cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("feature config %s: settings: %w", cfg.FeatureID, err)
	}
	permissions, err := marshalJSON(cfg.Permissions)
	if err != nil {
		return nil, fmt.Errorf("feature config %s: permissions: %w", cfg.FeatureID, err)
	}
	return &models.FeatureConfigModel{
		FeatureID:   cfg.FeatureID,
		Enabled:     cfg.Enabled,
		Settings:    settings,
		Permissions: permissions,
		UpdatedAt:   cfg.UpdatedAt,
	}, nil
}

func OverrideToDomain(model *models.FeatureOverrideModel) *feature.Override {
	return &feature.Override{
		FeatureID: model.FeatureID,
		Enabled:   model.Enabled,
		UpdatedBy: model.UpdatedBy,
		UpdatedAt: model.UpdatedAt,
	}
}

func OverrideToModel(o *feature.Override) *models.FeatureOverrideModel {
	return &models.FeatureOverrideModel{
		FeatureID: o.FeatureID,
		Enabled:   o.Enabled,
		UpdatedBy: o.UpdatedBy,
		UpdatedAt: o.UpdatedAt,
	}
}

// marshalJSON stores nil slices and maps as SQL NULL.
func marshalJSON[T any](v T) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return datatypes.JSON(data), nil
}

func unmarshalJSON(data datatypes.JSON, target any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, target)
}
