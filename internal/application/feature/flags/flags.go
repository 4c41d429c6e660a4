// Package flags decides whether a feature is effectively on for an evaluation
// context and notifies subscribers when that decision may have changed.
//
// Resolution order for a feature id:
//
//  1. an override, when present, is returned verbatim
//  2. unknown features are off
//  3. registry-disabled features are off
//  4. required permissions must all be granted, unless the context carries no
//     permission list at all
//  5. beta features are off in production
//  6. otherwise the feature is on
package flags

import (
	"maps"
	"slices"
	"sync"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// Catalog is the registry view flags evaluate against.
type Catalog interface {
	GetFeature(id string) (*feature.Feature, bool)
	GetAllFeatures() []*feature.Feature
}

// Toggler is implemented by catalogs whose base enablement can change at runtime.
type Toggler interface {
	EnableFeature(id string) bool
	DisableFeature(id string) bool
}

type Flags struct {
	catalog Catalog
	logger  logger.Interface

	mu          sync.RWMutex
	evalCtx     EvalContext
	overrides   map[string]bool
	subscribers map[string]map[uint64]Listener
	nextSubID   uint64
	publisher   ChangePublisher
}

func New(catalog Catalog, logger logger.Interface) *Flags {
	return &Flags{
		catalog:     catalog,
		logger:      logger,
		evalCtx:     DefaultContext(),
		overrides:   make(map[string]bool),
		subscribers: make(map[string]map[uint64]Listener),
	}
}

// SetPublisher installs the hook that receives every local override mutation.
func (f *Flags) SetPublisher(p ChangePublisher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publisher = p
}

// Initialize replaces the evaluation context wholesale.
func (f *Flags) Initialize(evalCtx EvalContext) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCtx = evalCtx.Clone()
}

// Context returns a copy of the current evaluation context.
func (f *Flags) Context() EvalContext {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.evalCtx.Clone()
}

// IsEnabled evaluates id against the initialized context.
func (f *Flags) IsEnabled(id string) bool {
	return f.IsEnabledFor(f.Context(), id)
}

// IsEnabledFor evaluates id against evalCtx without touching the instance
// context. Overrides still apply.
func (f *Flags) IsEnabledFor(evalCtx EvalContext, id string) bool {
	f.mu.RLock()
	override, overridden := f.overrides[id]
	f.mu.RUnlock()
	if overridden {
		return override
	}

	feat, ok := f.catalog.GetFeature(id)
	if !ok {
		return false
	}
	return decide(feat, evalCtx)
}

func decide(feat *feature.Feature, evalCtx EvalContext) bool {
	if !feat.IsEnabled() {
		return false
	}
	if evalCtx.UserPermissions != nil && !feat.PermitsAll(evalCtx.UserPermissions) {
		return false
	}
	if feat.IsBeta() && evalCtx.Environment == EnvProduction {
		return false
	}
	return true
}

// SetOverride forces id to enabled and notifies its subscribers.
func (f *Flags) SetOverride(id string, enabled bool) {
	f.applyChange(ChangeEvent{Kind: ChangeSet, FeatureID: id, Enabled: enabled}, true)
}

// RemoveOverride drops the override for id and notifies its subscribers with the
// value the normal resolution now yields.
func (f *Flags) RemoveOverride(id string) {
	f.applyChange(ChangeEvent{Kind: ChangeRemove, FeatureID: id}, true)
}

// ClearOverrides drops every override and notifies the subscribers of each
// cleared feature.
func (f *Flags) ClearOverrides() {
	f.applyChange(ChangeEvent{Kind: ChangeClear}, true)
}

// BulkSetOverrides applies SetOverride per entry in id order.
func (f *Flags) BulkSetOverrides(overrides map[string]bool) {
	for _, id := range slices.Sorted(maps.Keys(overrides)) {
		f.SetOverride(id, overrides[id])
	}
}

// SetFeatureEnabled changes id's base enablement in the catalog, publishes the
// change and notifies id's subscribers. It reports false for unknown features and
// for catalogs that do not implement Toggler.
func (f *Flags) SetFeatureEnabled(id string, enabled bool) bool {
	return f.applyToggle(ChangeEvent{Kind: ChangeToggle, FeatureID: id, Enabled: enabled}, true)
}

// ApplyRemoteChange replays a change received from a peer instance. Subscribers
// are notified but the change is not published again.
func (f *Flags) ApplyRemoteChange(evt ChangeEvent) {
	f.applyChange(evt, false)
}

// RestoreOverrides replaces the override map with persisted state. Subscribers
// are notified; nothing is published.
func (f *Flags) RestoreOverrides(overrides map[string]bool) {
	f.applyChange(ChangeEvent{Kind: ChangeReplace, Overrides: overrides}, false)
}

func (f *Flags) applyChange(evt ChangeEvent, publish bool) {
	f.mu.Lock()
	var touched []string
	switch evt.Kind {
	case ChangeSet:
		f.overrides[evt.FeatureID] = evt.Enabled
		touched = []string{evt.FeatureID}
	case ChangeRemove:
		delete(f.overrides, evt.FeatureID)
		touched = []string{evt.FeatureID}
	case ChangeClear:
		touched = slices.Sorted(maps.Keys(f.overrides))
		f.overrides = make(map[string]bool)
	case ChangeToggle:
		f.mu.Unlock()
		f.applyToggle(evt, publish)
		return
	case ChangeReplace:
		touched = unionKeys(f.overrides, evt.Overrides)
		f.overrides = maps.Clone(evt.Overrides)
		if f.overrides == nil {
			f.overrides = make(map[string]bool)
		}
	default:
		f.mu.Unlock()
		f.logger.Warnw("ignoring unknown override change", "kind", evt.Kind)
		return
	}
	publisher := f.publisher
	f.mu.Unlock()

	if publish && publisher != nil {
		publisher.PublishChange(evt.clone())
	}
	for _, id := range touched {
		f.notify(id)
	}
}

func (f *Flags) applyToggle(evt ChangeEvent, publish bool) bool {
	toggler, ok := f.catalog.(Toggler)
	if !ok {
		f.logger.Warnw("catalog does not support toggling", "feature_id", evt.FeatureID)
		return false
	}

	var applied bool
	if evt.Enabled {
		applied = toggler.EnableFeature(evt.FeatureID)
	} else {
		applied = toggler.DisableFeature(evt.FeatureID)
	}
	if !applied {
		return false
	}

	f.mu.RLock()
	publisher := f.publisher
	f.mu.RUnlock()

	if publish && publisher != nil {
		publisher.PublishChange(evt.clone())
	}
	f.notify(evt.FeatureID)
	return true
}

func unionKeys(a, b map[string]bool) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		set[k] = struct{}{}
	}
	for k := range b {
		set[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// GetOverrides returns a copy of the override map.
func (f *Flags) GetOverrides() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.overrides)
}

// Subscribe registers l for changes to id. Go funcs have no identity, so
// subscribing the same listener twice creates two subscriptions and l is called
// twice per change. The returned function removes one subscription and is safe
// to call repeatedly.
func (f *Flags) Subscribe(id string, l Listener) (unsubscribe func()) {
	f.mu.Lock()
	f.nextSubID++
	subID := f.nextSubID
	if f.subscribers[id] == nil {
		f.subscribers[id] = make(map[uint64]Listener)
	}
	f.subscribers[id][subID] = l
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subscribers[id], subID)
			if len(f.subscribers[id]) == 0 {
				delete(f.subscribers, id)
			}
		})
	}
}

// notify invokes id's listeners outside the lock, in subscription order.
func (f *Flags) notify(id string) {
	f.mu.RLock()
	subs := f.subscribers[id]
	ids := slices.Sorted(maps.Keys(subs))
	listeners := make([]Listener, 0, len(ids))
	for _, subID := range ids {
		listeners = append(listeners, subs[subID])
	}
	f.mu.RUnlock()

	if len(listeners) == 0 {
		return
	}
	enabled := f.IsEnabled(id)
	for _, l := range listeners {
		l(enabled)
	}
}
