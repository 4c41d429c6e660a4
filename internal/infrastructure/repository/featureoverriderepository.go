package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/persistence/mappers"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/persistence/models"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// FeatureOverrideRepository implements feature.OverrideRepository
type FeatureOverrideRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewFeatureOverrideRepository(db *gorm.DB, logger logger.Interface) feature.OverrideRepository {
	return &FeatureOverrideRepository{db: db, logger: logger}
}

func (r *FeatureOverrideRepository) List(ctx context.Context) ([]*feature.Override, error) {
	var modelList []*models.FeatureOverrideModel

	if err := r.db.WithContext(ctx).Order("feature_id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list feature overrides", "error", err)
		return nil, fmt.Errorf("failed to list feature overrides: %w", err)
	}

	overrides := make([]*feature.Override, 0, len(modelList))
	for _, model := range modelList {
		overrides = append(overrides, mappers.OverrideToDomain(model))
	}
	return overrides, nil
}

func (r *FeatureOverrideRepository) Upsert(ctx context.Context, o *feature.Override) error {
	err := upsertOverrides(r.db.WithContext(ctx), []*feature.Override{o})
	if err != nil {
		r.logger.Errorw("failed to upsert feature override", "feature_id", o.FeatureID, "error", err)
		return fmt.Errorf("failed to upsert feature override: %w", err)
	}
	return nil
}

// Delete is a no-op for features without an override.
func (r *FeatureOverrideRepository) Delete(ctx context.Context, featureID string) error {
	err := r.db.WithContext(ctx).
		Where("feature_id = ?", featureID).
		Delete(&models.FeatureOverrideModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to delete feature override", "feature_id", featureID, "error", err)
		return fmt.Errorf("failed to delete feature override: %w", err)
	}
	return nil
}

func (r *FeatureOverrideRepository) DeleteAll(ctx context.Context) error {
	if err := deleteAllOverrides(r.db.WithContext(ctx)); err != nil {
		r.logger.Errorw("failed to clear feature overrides", "error", err)
		return fmt.Errorf("failed to clear feature overrides: %w", err)
	}
	return nil
}

func (r *FeatureOverrideRepository) ReplaceAll(ctx context.Context, overrides []*feature.Override) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAllOverrides(tx); err != nil {
			return err
		}
		return upsertOverrides(tx, overrides)
	})
	if err != nil {
		r.logger.Errorw("failed to replace feature overrides", "count", len(overrides), "error", err)
		return fmt.Errorf("failed to replace feature overrides: %w", err)
	}
	return nil
}

func deleteAllOverrides(db *gorm.DB) error {
	return db.Where("1 = 1").Delete(&models.FeatureOverrideModel{}).Error
}

func upsertOverrides(db *gorm.DB, overrides []*feature.Override) error {
	if len(overrides) == 0 {
		return nil
	}
	modelList := make([]*models.FeatureOverrideModel, 0, len(overrides))
	for _, o := range overrides {
		modelList = append(modelList, mappers.OverrideToModel(o))
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feature_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_by", "updated_at"}),
	}).Create(modelList).Error
}
