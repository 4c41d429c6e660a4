package usecases

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

type mockFeatureRepository struct {
	SaveFunc       func(ctx context.Context, f *feature.Feature) error
	SaveAllFunc    func(ctx context.Context, features []*feature.Feature) error
	GetByIDFunc    func(ctx context.Context, id string) (*feature.Feature, error)
	ListFunc       func(ctx context.Context) ([]*feature.Feature, error)
	CountFunc      func(ctx context.Context) (int64, error)
	SetEnabledFunc func(ctx context.Context, id string, enabled bool) error
}

func (m *mockFeatureRepository) Save(ctx context.Context, f *feature.Feature) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, f)
	}
	return nil
}

func (m *mockFeatureRepository) SaveAll(ctx context.Context, features []*feature.Feature) error {
	if m.SaveAllFunc != nil {
		return m.SaveAllFunc(ctx, features)
	}
	return nil
}

func (m *mockFeatureRepository) GetByID(ctx context.Context, id string) (*feature.Feature, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, feature.ErrFeatureNotFound
}

func (m *mockFeatureRepository) List(ctx context.Context) ([]*feature.Feature, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockFeatureRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockFeatureRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if m.SetEnabledFunc != nil {
		return m.SetEnabledFunc(ctx, id, enabled)
	}
	return nil
}

type mockConfigRepository struct {
	GetFunc    func(ctx context.Context, featureID string) (*feature.Config, error)
	ListFunc   func(ctx context.Context) ([]*feature.Config, error)
	UpsertFunc func(ctx context.Context, cfg *feature.Config) error
}

func (m *mockConfigRepository) Get(ctx context.Context, featureID string) (*feature.Config, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, featureID)
	}
	return nil, feature.ErrConfigNotFound
}

func (m *mockConfigRepository) List(ctx context.Context) ([]*feature.Config, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockConfigRepository) Upsert(ctx context.Context, cfg *feature.Config) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, cfg)
	}
	return nil
}

type mockOverrideRepository struct {
	ListFunc       func(ctx context.Context) ([]*feature.Override, error)
	UpsertFunc     func(ctx context.Context, o *feature.Override) error
	DeleteFunc     func(ctx context.Context, featureID string) error
	DeleteAllFunc  func(ctx context.Context) error
	ReplaceAllFunc func(ctx context.Context, overrides []*feature.Override) error
}

func (m *mockOverrideRepository) List(ctx context.Context) ([]*feature.Override, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockOverrideRepository) Upsert(ctx context.Context, o *feature.Override) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, o)
	}
	return nil
}

func (m *mockOverrideRepository) Delete(ctx context.Context, featureID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, featureID)
	}
	return nil
}

func (m *mockOverrideRepository) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx)
	}
	return nil
}

func (m *mockOverrideRepository) ReplaceAll(ctx context.Context, overrides []*feature.Override) error {
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, overrides)
	}
	return nil
}

type mockCatalogSource struct {
	DefinitionsFunc func() ([]feature.Definition, error)
}

func (m *mockCatalogSource) Definitions() ([]feature.Definition, error) {
	if m.DefinitionsFunc != nil {
		return m.DefinitionsFunc()
	}
	return nil, nil
}
