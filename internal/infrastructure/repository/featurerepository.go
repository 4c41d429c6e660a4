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
	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

const featureSaveBatchSize = 100

// FeatureRepository implements feature.Repository
type FeatureRepository struct {
	db     *gorm.DB
	logger logger.Interface
	mapper mappers.FeatureMapper
}

func NewFeatureRepository(db *gorm.DB, logger logger.Interface) feature.Repository {
	return &FeatureRepository{
		db:     db,
		logger: logger,
		mapper: mappers.NewFeatureMapper(),
	}
}

var featureUpsertColumns = []string{
	"name", "name_ar", "description", "description_ar", "category", "status",
	"enabled", "beta", "required_permissions", "dependencies", "metadata", "updated_at",
}

func (r *FeatureRepository) Save(ctx context.Context, f *feature.Feature) error {
	return r.SaveAll(ctx, []*feature.Feature{f})
}

// SaveAll upserts features by id in batches.
func (r *FeatureRepository) SaveAll(ctx context.Context, features []*feature.Feature) error {
	if len(features) == 0 {
		return nil
	}

	modelList := make([]*models.FeatureModel, 0, len(features))
	for _, f := range features {
		model, err := r.mapper.ToModel(f)
		if err != nil {
			return fmt.Errorf("failed to map feature: %w", err)
		}
		modelList = append(modelList, model)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(featureUpsertColumns),
	}).CreateInBatches(modelList, featureSaveBatchSize).Error
	if err != nil {
		r.logger.Errorw("failed to save features", "count", len(modelList), "error", err)
		return fmt.Errorf("failed to save features: %w", err)
	}
	return nil
}

func (r *FeatureRepository) GetByID(ctx context.Context, id string) (*feature.Feature, error) {
	var model models.FeatureModel

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feature.ErrFeatureNotFound
		}
		r.logger.Errorw("failed to get feature", "feature_id", id, "error", err)
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *FeatureRepository) List(ctx context.Context) ([]*feature.Feature, error) {
	var modelList []*models.FeatureModel

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list features", "error", err)
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	return r.mapper.ToDomainList(modelList)
}

func (r *FeatureRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FeatureModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count features: %w", err)
	}
	return count, nil
}

func (r *FeatureRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.FeatureModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enabled":    enabled,
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update feature state", "feature_id", id, "enabled", enabled, "error", result.Error)
		return fmt.Errorf("failed to update feature state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return feature.ErrFeatureNotFound
	}
	return nil
}
