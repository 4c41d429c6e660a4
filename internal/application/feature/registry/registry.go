// Package registry holds the authoritative in-memory feature catalog.
//
// The registry is tolerant: unknown ids and duplicate registrations never produce
// errors. Lookups report absence through their second return value or a false
// result, and misuse is logged as a warning.
package registry

import (
	"slices"
	"strings"
	"sync"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

type Registry struct {
	mu       sync.RWMutex
	features map[string]*feature.Feature
	configs  map[string]feature.Config
	logger   logger.Interface
}

func New(logger logger.Interface) *Registry {
	return &Registry{
		features: make(map[string]*feature.Feature),
		configs:  make(map[string]feature.Config),
		logger:   logger,
	}
}

// RegisterFeature inserts f when its id is free and reports whether it did. A
// duplicate id leaves the existing entry untouched.
func (r *Registry) RegisterFeature(f *feature.Feature) bool {
	if f == nil {
		r.logger.Warnw("ignoring nil feature registration")
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[f.ID()]; exists {
		r.logger.Warnw("feature already registered, ignoring duplicate",
			"feature_id", f.ID(),
		)
		return false
	}
	r.features[f.ID()] = f.Clone()
	return true
}

// RegisterFeatures registers each feature in order and returns how many were
// inserted.
func (r *Registry) RegisterFeatures(features []*feature.Feature) int {
	inserted := 0
	for _, f := range features {
		if r.RegisterFeature(f) {
			inserted++
		}
	}
	return inserted
}

// GetFeature returns a copy of the feature registered under id.
func (r *Registry) GetFeature(id string) (*feature.Feature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.features[id]
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// GetAllFeatures returns copies of every feature, sorted by id.
func (r *Registry) GetAllFeatures() []*feature.Feature {
	return r.filter(func(*feature.Feature) bool { return true })
}

func (r *Registry) GetFeaturesByCategory(category feature.Category) []*feature.Feature {
	return r.filter(func(f *feature.Feature) bool { return f.Category() == category })
}

func (r *Registry) GetFeaturesByStatus(status feature.Status) []*feature.Feature {
	return r.filter(func(f *feature.Feature) bool { return f.Status() == status })
}

func (r *Registry) GetEnabledFeatures() []*feature.Feature {
	return r.filter(func(f *feature.Feature) bool { return f.IsEnabled() })
}

func (r *Registry) filter(keep func(*feature.Feature) bool) []*feature.Feature {
	r.mu.RLock()
	out := make([]*feature.Feature, 0, len(r.features))
	for _, f := range r.features {
		if keep(f) {
			out = append(out, f.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *feature.Feature) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

func (r *Registry) EnableFeature(id string) bool {
	return r.setEnabled(id, true)
}

func (r *Registry) DisableFeature(id string) bool {
	return r.setEnabled(id, false)
}

// setEnabled flips the feature and mirrors the new state into its config.
func (r *Registry) setEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.features[id]
	if !ok {
		r.logger.Warnw("cannot change state of unknown feature",
			"feature_id", id,
			"enabled", enabled,
		)
		return false
	}

	if enabled {
		f.Enable()
	} else {
		f.Disable()
	}

	cfg, ok := r.configs[id]
	if !ok {
		cfg = feature.DefaultConfig(id)
	}
	r.configs[id] = cfg.Merge(feature.ConfigPatch{Enabled: &enabled}, f.UpdatedAt())
	return true
}

// IsFeatureEnabled reports the registry-level state. Unknown ids are disabled.
func (r *Registry) IsFeatureEnabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.features[id]
	return ok && f.IsEnabled()
}

// HasPermission reports whether userPermissions covers the feature's required
// permissions. Unknown features are permitted.
func (r *Registry) HasPermission(id string, userPermissions []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.features[id]
	if !ok {
		return true
	}
	return f.PermitsAll(userPermissions)
}

// GetDependencies resolves the feature's dependency ids, dropping ids that are not
// registered.
func (r *Registry) GetDependencies(id string) []*feature.Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.dependenciesLocked(id)
}

func (r *Registry) dependenciesLocked(id string) []*feature.Feature {
	f, ok := r.features[id]
	if !ok {
		return nil
	}
	deps := make([]*feature.Feature, 0, len(f.Dependencies()))
	for _, depID := range f.Dependencies() {
		if dep, ok := r.features[depID]; ok {
			deps = append(deps, dep.Clone())
		}
	}
	return deps
}

// AreDependenciesEnabled is vacuously true for features without resolvable
// dependencies.
func (r *Registry) AreDependenciesEnabled(id string) bool {
	return len(r.DisabledDependencies(id)) == 0
}

// DisabledDependencies returns the ids of resolved dependencies that are disabled,
// in declaration order.
func (r *Registry) DisabledDependencies(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var disabled []string
	for _, dep := range r.dependenciesLocked(id) {
		if !dep.IsEnabled() {
			disabled = append(disabled, dep.ID())
		}
	}
	return disabled
}

func (r *Registry) GetFeatureConfig(id string) (feature.Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	if !ok {
		return feature.Config{}, false
	}
	return cfg.Clone(), true
}

// UpdateFeatureConfig merges patch into the stored config, starting from
// feature.DefaultConfig when none exists, and returns the result.
func (r *Registry) UpdateFeatureConfig(id string, patch feature.ConfigPatch) feature.Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[id]
	if !ok {
		cfg = feature.DefaultConfig(id)
	}
	cfg = cfg.Merge(patch, biztime.NowUTC())
	r.configs[id] = cfg
	return cfg.Clone()
}

// RestoreConfigs loads persisted configs without touching feature state.
func (r *Registry) RestoreConfigs(configs []feature.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cfg := range configs {
		r.configs[cfg.FeatureID] = cfg.Clone()
	}
}

func (r *Registry) GetCategories() []feature.Category {
	return feature.AllCategories()
}

func (r *Registry) GetStats() feature.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := feature.Stats{
		Total:      len(r.features),
		ByCategory: make(map[feature.Category]int),
	}
	for _, c := range feature.AllCategories() {
		stats.ByCategory[c] = 0
	}
	for _, f := range r.features {
		if f.IsEnabled() {
			stats.Enabled++
		} else {
			stats.Disabled++
		}
		if f.IsBeta() {
			stats.Beta++
		}
		stats.ByCategory[f.Category()]++
	}
	return stats
}

// Clear drops every feature and config.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.features = make(map[string]*feature.Feature)
	r.configs = make(map[string]feature.Config)
}
