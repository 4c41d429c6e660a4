// Package loader resolves a feature's component on demand.
//
// Loads are deduplicated per feature id, validated against the registry and
// memoized permanently on success. Failures never surface as Go errors; they are
// reported through Result.
package loader

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
	"github.com/bodrix-ai/bodrix/internal/shared/goroutine"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// Catalog is the registry view the loader validates against.
type Catalog interface {
	GetFeature(id string) (*feature.Feature, bool)
	DisabledDependencies(id string) []string
}

// ComponentResolver turns a metadata locator into a component.
type ComponentResolver interface {
	Resolve(ctx context.Context, locator string) (feature.Component, error)
}

// Outcome labels a load for metrics.
type Outcome string

const (
	OutcomeLoaded     Outcome = "loaded"
	OutcomeCached     Outcome = "cached"
	OutcomeDegraded   Outcome = "degraded"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeDisabled   Outcome = "disabled"
	OutcomeDependency Outcome = "dependency"
	OutcomeFailed     Outcome = "failed"
)

// Metrics records loader activity.
type Metrics interface {
	ObserveLoad(outcome Outcome, duration time.Duration)
	SetLoadedFeatures(n int)
}

type Options struct {
	// ResolveTimeout bounds a single resolver call. Zero means no bound.
	ResolveTimeout time.Duration
	Metrics        Metrics
}

// Result is the tagged outcome of a load. Error is set only when Success is false.
type Result struct {
	Success   bool              `json:"success"`
	Feature   *feature.Feature  `json:"-"`
	Component feature.Component `json:"-"`
	Error     string            `json:"error,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// LoadedFeature is a memoized successful load.
type LoadedFeature struct {
	Feature   *feature.Feature
	Component feature.Component
	LoadTime  time.Duration
	LoadedAt  time.Time
	Warnings  []string
}

type Loader struct {
	catalog  Catalog
	resolver ComponentResolver
	opts     Options
	logger   logger.Interface

	mu     sync.RWMutex
	loaded map[string]*LoadedFeature
	flight singleflight.Group
}

// New builds a loader. resolver may be nil, in which case metadata locators are
// reported as warnings.
func New(catalog Catalog, resolver ComponentResolver, opts Options, logger logger.Interface) *Loader {
	return &Loader{
		catalog:  catalog,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		loaded:   make(map[string]*LoadedFeature),
	}
}

// LoadFeature returns the memoized result for id or starts a load, joining an
// in-flight one when present. A cached success is returned without re-validating
// enablement or dependencies.
func (l *Loader) LoadFeature(ctx context.Context, id string) Result {
	if lf, ok := l.cached(id); ok {
		l.observe(OutcomeCached, 0)
		return lf.result()
	}

	v, _, _ := l.flight.Do(id, func() (interface{}, error) {
		// A flight that finished between the cache check and Do already stored
		// its result.
		if lf, ok := l.cached(id); ok {
			return lf.result(), nil
		}
		return l.safeLoad(context.WithoutCancel(ctx), id), nil
	})
	return v.(Result)
}

// safeLoad converts a panic anywhere in load into a failed Result.
func (l *Loader) safeLoad(ctx context.Context, id string) (res Result) {
	start := time.Now()
	err := goroutine.Try(func() error {
		res = l.load(ctx, id)
		return nil
	})
	if err != nil {
		l.logger.Errorw("feature load panicked",
			"feature_id", id,
			"error", err,
		)
		return l.fail(OutcomeFailed, start, fmt.Sprintf("Failed to load feature %s: %s", id, err.Error()))
	}
	return res
}

func (l *Loader) cached(id string) (*LoadedFeature, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lf, ok := l.loaded[id]
	return lf, ok
}

// result copies the memoized feature and warnings so callers cannot mutate the
// cache entry.
func (lf *LoadedFeature) result() Result {
	return Result{
		Success:   true,
		Feature:   lf.Feature.Clone(),
		Component: lf.Component,
		Warnings:  slices.Clone(lf.Warnings),
	}
}

func (l *Loader) load(ctx context.Context, id string) Result {
	start := time.Now()

	f, ok := l.catalog.GetFeature(id)
	if !ok {
		return l.fail(OutcomeNotFound, start, fmt.Sprintf("Feature %s not found", id))
	}
	if !f.IsEnabled() {
		return l.fail(OutcomeDisabled, start, fmt.Sprintf("Feature %s is disabled", id))
	}
	if disabled := l.catalog.DisabledDependencies(id); len(disabled) > 0 {
		return l.fail(OutcomeDependency, start,
			fmt.Sprintf("Feature dependencies not met: %s", strings.Join(disabled, ", ")))
	}

	component, warnings := l.resolveComponent(ctx, f)

	lf := &LoadedFeature{
		Feature:   f,
		Component: component,
		LoadTime:  time.Since(start),
		LoadedAt:  biztime.NowUTC(),
		Warnings:  warnings,
	}

	l.mu.Lock()
	l.loaded[id] = lf
	n := len(l.loaded)
	l.mu.Unlock()

	outcome := OutcomeLoaded
	if len(warnings) > 0 {
		outcome = OutcomeDegraded
	}
	l.observe(outcome, lf.LoadTime)
	if l.opts.Metrics != nil {
		l.opts.Metrics.SetLoadedFeatures(n)
	}

	l.logger.Debugw("feature loaded",
		"feature_id", id,
		"load_time", lf.LoadTime,
		"warnings", len(warnings),
	)
	return lf.result()
}

// resolveComponent prefers a direct component and falls back to the metadata
// locator. Resolver failures degrade to a nil component plus a warning.
func (l *Loader) resolveComponent(ctx context.Context, f *feature.Feature) (feature.Component, []string) {
	if c := f.Component(); c != nil {
		return c, nil
	}
	locator, ok := f.ComponentLocator()
	if !ok {
		return nil, nil
	}
	if l.resolver == nil {
		return nil, []string{fmt.Sprintf("No component resolver configured for feature %s", f.ID())}
	}

	if l.opts.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.ResolveTimeout)
		defer cancel()
	}

	component, err := l.resolver.Resolve(ctx, locator)
	if err != nil {
		l.logger.Warnw("failed to resolve feature component",
			"feature_id", f.ID(),
			"locator", locator,
			"error", err,
		)
		return nil, []string{fmt.Sprintf("Failed to load component for feature %s: %s", f.ID(), err.Error())}
	}
	return component, nil
}

func (l *Loader) fail(outcome Outcome, start time.Time, msg string) Result {
	l.observe(outcome, time.Since(start))
	return Result{Success: false, Error: msg}
}

func (l *Loader) observe(outcome Outcome, d time.Duration) {
	if l.opts.Metrics != nil {
		l.opts.Metrics.ObserveLoad(outcome, d)
	}
}

// LoadFeatures loads every id concurrently. Results are in input order and one
// failure does not stop the others.
func (l *Loader) LoadFeatures(ctx context.Context, ids []string) []Result {
	results := make([]Result, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			results[i] = l.LoadFeature(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// PreloadFeatures warms the cache for ids, logging failures, and returns how many
// loaded successfully.
func (l *Loader) PreloadFeatures(ctx context.Context, ids []string) int {
	loaded := 0
	for i, res := range l.LoadFeatures(ctx, ids) {
		if res.Success {
			loaded++
			continue
		}
		l.logger.Warnw("feature preload failed",
			"feature_id", ids[i],
			"error", res.Error,
		)
	}
	return loaded
}

// GetLoadedFeature returns a copy of id's memoized entry.
func (l *Loader) GetLoadedFeature(id string) (*LoadedFeature, bool) {
	lf, ok := l.cached(id)
	if !ok {
		return nil, false
	}
	c := *lf
	c.Feature = lf.Feature.Clone()
	c.Warnings = slices.Clone(lf.Warnings)
	return &c, true
}

// ClearLoadedFeatures drops every memoized result. Loads already in flight still
// complete and store their result.
func (l *Loader) ClearLoadedFeatures() {
	l.mu.Lock()
	l.loaded = make(map[string]*LoadedFeature)
	l.mu.Unlock()

	if l.opts.Metrics != nil {
		l.opts.Metrics.SetLoadedFeatures(0)
	}
}

type SlowFeature struct {
	ID       string
	LoadTime time.Duration
}

type LoadingStats struct {
	TotalLoaded     int
	TotalLoadTime   time.Duration
	AverageLoadTime time.Duration
	Slowest         []SlowFeature
}

const slowestLimit = 5

func (l *Loader) GetLoadingStats() LoadingStats {
	l.mu.RLock()
	all := make([]SlowFeature, 0, len(l.loaded))
	for id, lf := range l.loaded {
		all = append(all, SlowFeature{ID: id, LoadTime: lf.LoadTime})
	}
	l.mu.RUnlock()

	stats := LoadingStats{TotalLoaded: len(all)}
	for _, s := range all {
		stats.TotalLoadTime += s.LoadTime
	}
	if stats.TotalLoaded > 0 {
		stats.AverageLoadTime = stats.TotalLoadTime / time.Duration(stats.TotalLoaded)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].LoadTime != all[j].LoadTime {
			return all[i].LoadTime > all[j].LoadTime
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > slowestLimit {
		all = all[:slowestLimit]
	}
	stats.Slowest = all
	return stats
}
