package flags

import "github.com/bodrix-ai/bodrix/internal/domain/feature"

// Status is a diagnostic view of one feature's flag decision.
type Status struct {
	ID              string         `json:"id"`
	Enabled         bool           `json:"enabled"`
	RegistryEnabled bool           `json:"registryEnabled"`
	Overridden      bool           `json:"overridden"`
	Override        *bool          `json:"override,omitempty"`
	Beta            bool           `json:"beta"`
	Status          feature.Status `json:"status,omitempty"`
	Permissions     []string       `json:"permissions,omitempty"`
}

// GetStatus reports the decision for id under the initialized context. Unknown ids
// yield a disabled status with empty feature fields.
func (f *Flags) GetStatus(id string) Status {
	return f.GetStatusFor(f.Context(), id)
}

func (f *Flags) GetStatusFor(evalCtx EvalContext, id string) Status {
	st := Status{
		ID:      id,
		Enabled: f.IsEnabledFor(evalCtx, id),
	}

	f.mu.RLock()
	if v, ok := f.overrides[id]; ok {
		st.Overridden = true
		st.Override = &v
	}
	f.mu.RUnlock()

	if feat, ok := f.catalog.GetFeature(id); ok {
		st.RegistryEnabled = feat.IsEnabled()
		st.Beta = feat.IsBeta()
		st.Status = feat.Status()
		st.Permissions = feat.RequiredPermissions()
	}
	return st
}

// GetAllStatuses maps GetStatus over every registered feature, in id order.
func (f *Flags) GetAllStatuses() []Status {
	evalCtx := f.Context()
	features := f.catalog.GetAllFeatures()
	out := make([]Status, 0, len(features))
	for _, feat := range features {
		out = append(out, f.GetStatusFor(evalCtx, feat.ID()))
	}
	return out
}
