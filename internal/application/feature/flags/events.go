package flags

import "maps"

type ChangeKind string

const (
	ChangeSet     ChangeKind = "set"
	ChangeRemove  ChangeKind = "remove"
	ChangeClear   ChangeKind = "clear"
	ChangeReplace ChangeKind = "replace"
	// ChangeToggle changes a feature's base enablement rather than an override.
	ChangeToggle ChangeKind = "toggle"
)

// ChangeEvent describes one override mutation or base enablement change so that
// peer instances can replay it.
type ChangeEvent struct {
	Kind      ChangeKind      `json:"kind"`
	FeatureID string          `json:"featureId,omitempty"`
	Enabled   bool            `json:"enabled,omitempty"`
	Overrides map[string]bool `json:"overrides,omitempty"`
}

// ChangePublisher forwards local changes to other instances.
type ChangePublisher interface {
	PublishChange(evt ChangeEvent)
}

// Listener receives the recomputed decision for the feature it subscribed to.
type Listener func(enabled bool)

func (e ChangeEvent) clone() ChangeEvent {
	e.Overrides = maps.Clone(e.Overrides)
	return e
}
