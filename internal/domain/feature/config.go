package feature

import (
	"maps"
	"slices"
	"time"
)

// Config is the per-feature settings record written on every enable, disable or
// explicit config update. It mirrors state; Flags decides what is on.
type Config struct {
	FeatureID   string
	Enabled     bool
	Settings    map[string]any
	Permissions []string
	UpdatedAt   time.Time
}

// ConfigPatch carries a partial config update. Nil fields are left untouched.
type ConfigPatch struct {
	Enabled     *bool
	Settings    map[string]any
	Permissions []string
}

// DefaultConfig is the base a patch is merged into when no config exists yet.
func DefaultConfig(featureID string) Config {
	return Config{FeatureID: featureID, Enabled: true}
}

// Merge applies p on top of c. Settings are merged key by key; permissions are
// replaced when given.
func (c Config) Merge(p ConfigPatch, now time.Time) Config {
	out := c.Clone()
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.Settings != nil {
		if out.Settings == nil {
			out.Settings = make(map[string]any, len(p.Settings))
		}
		for k, v := range p.Settings {
			out.Settings[k] = v
		}
	}
	if p.Permissions != nil {
		out.Permissions = slices.Clone(p.Permissions)
	}
	out.UpdatedAt = now
	return out
}

func (c Config) Clone() Config {
	c.Settings = maps.Clone(c.Settings)
	c.Permissions = slices.Clone(c.Permissions)
	return c
}

// Stats is an aggregate snapshot of the catalog.
type Stats struct {
	Total      int              `json:"total"`
	Enabled    int              `json:"enabled"`
	Disabled   int              `json:"disabled"`
	Beta       int              `json:"beta"`
	ByCategory map[Category]int `json:"by_category"`
}

// Override is a persisted flag override set by an administrator.
type Override struct {
	FeatureID string
	Enabled   bool
	UpdatedBy string
	UpdatedAt time.Time
}
