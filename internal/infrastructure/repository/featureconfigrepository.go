package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/persistence/mappers"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/persistence/models"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// FeatureConfigRepository implements feature.ConfigRepository
type FeatureConfigRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewFeatureConfigRepository(db *gorm.DB, logger logger.Interface) feature.ConfigRepository {
	return &FeatureConfigRepository{db: db, logger: logger}
}

func (r *FeatureConfigRepository) Get(ctx context.Context, featureID string) (*feature.Config, error) {
	var model models.FeatureConfigModel

	err := r.db.WithContext(ctx).Where("feature_id = ?", featureID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feature.ErrConfigNotFound
		}
		r.logger.Errorw("failed to get feature config", "feature_id", featureID, "error", err)
		return nil, fmt.Errorf("failed to get feature config: %w", err)
	}

	return mappers.ConfigToDomain(&model)
}

func (r *FeatureConfigRepository) List(ctx context.Context) ([]*feature.Config, error) {
	var modelList []*models.FeatureConfigModel

	if err := r.db.WithContext(ctx).Order("feature_id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list feature configs", "error", err)
		return nil, fmt.Errorf("failed to list feature configs: %w", err)
	}

	configs := make([]*feature.Config, 0, len(modelList))
	for _, model := range modelList {
		cfg, err := mappers.ConfigToDomain(model)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (r *FeatureConfigRepository) Upsert(ctx context.Context, cfg *feature.Config) error {
	model, err := mappers.ConfigToModel(cfg)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feature_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "settings", "permissions", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert feature config", "feature_id", cfg.FeatureID, "error", err)
		return fmt.Errorf("failed to upsert feature config: %w", err)
	}
	return nil
}
