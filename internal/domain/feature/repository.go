package feature

import "context"

// Repository persists catalog definitions.
type Repository interface {
	// Save inserts or updates a feature by id.
	Save(ctx context.Context, f *Feature) error
	SaveAll(ctx context.Context, features []*Feature) error
	GetByID(ctx context.Context, id string) (*Feature, error)
	List(ctx context.Context) ([]*Feature, error)
	Count(ctx context.Context) (int64, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// ConfigRepository persists per-feature configs.
type ConfigRepository interface {
	Get(ctx context.Context, featureID string) (*Config, error)
	List(ctx context.Context) ([]*Config, error)
	Upsert(ctx context.Context, cfg *Config) error
}

// OverrideRepository persists flag overrides.
type OverrideRepository interface {
	List(ctx context.Context) ([]*Override, error)
	Upsert(ctx context.Context, o *Override) error
	Delete(ctx context.Context, featureID string) error
	DeleteAll(ctx context.Context) error
	// ReplaceAll swaps the whole override set atomically.
	ReplaceAll(ctx context.Context, overrides []*Override) error
}
