package migration

import (
	"github.com/bodrix-ai/bodrix/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models GORM AutoMigrate manages in development.
func AutoMigrateModels() []any {
	return []any{
		&models.FeatureModel{},
		&models.FeatureConfigModel{},
		&models.FeatureOverrideModel{},
	}
}
