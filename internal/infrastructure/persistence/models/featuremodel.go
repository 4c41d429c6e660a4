package models

import (
	"time"

	"gorm.io/datatypes"
)

// FeatureModel is the GORM model for the features catalog table
type FeatureModel struct {
	ID                  string         `gorm:"column:id;type:varchar(64);primaryKey"`
	Name                string         `gorm:"column:name;type:varchar(200);not null"`
	NameAr              string         `gorm:"column:name_ar;type:varchar(200)"`
	Description         string         `gorm:"column:description;type:text"`
	DescriptionAr       string         `gorm:"column:description_ar;type:text"`
	Category            string         `gorm:"column:category;type:varchar(32);not null;index:idx_features_category"`
	Status              string         `gorm:"column:status;type:varchar(32);not null;default:'active'"`
	Enabled             bool           `gorm:"column:enabled;not null;default:false"`
	Beta                bool           `gorm:"column:beta;not null;default:false"`
	RequiredPermissions datatypes.JSON `gorm:"column:required_permissions"`
	Dependencies        datatypes.JSON `gorm:"column:dependencies"`
	Metadata            datatypes.JSON `gorm:"column:metadata"`
	CreatedAt           time.Time      `gorm:"column:created_at"`
	UpdatedAt           time.Time      `gorm:"column:updated_at"`
}

func (FeatureModel) TableName() string {
	return "features"
}

// FeatureConfigModel is the GORM model for per-feature settings
type FeatureConfigModel struct {
	FeatureID   string         `gorm:"column:feature_id;type:varchar(64);primaryKey"`
	Enabled     bool           `gorm:"column:enabled;not null;default:true"`
	Settings    datatypes.JSON `gorm:"column:settings"`
	Permissions datatypes.JSON `gorm:"column:permissions"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (FeatureConfigModel) TableName() string {
	return "feature_configs"
}

// FeatureOverrideModel is the GORM model for administrator flag overrides
type FeatureOverrideModel struct {
	FeatureID string    `gorm:"column:feature_id;type:varchar(64);primaryKey"`
	Enabled   bool      `gorm:"column:enabled;not null"`
	UpdatedBy string    `gorm:"column:updated_by;type:varchar(64)"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (FeatureOverrideModel) TableName() string {
	return "feature_overrides"
}
