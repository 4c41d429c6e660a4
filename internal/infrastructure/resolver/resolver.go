// Package resolver maps component locators to the factories that build them.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

var ErrUnknownLocator = errors.New("unknown component locator")

// Factory builds the component behind one locator.
type Factory func(ctx context.Context) (feature.Component, error)

// Registry implements loader.ComponentResolver.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds locator to factory, replacing any previous binding.
func (r *Registry) Register(locator string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[locator] = factory
}

func (r *Registry) Resolve(ctx context.Context, locator string) (feature.Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory, ok := r.factories[locator]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocator, locator)
	}
	return factory(ctx)
}

// AssetManifest tells a client where to fetch the bundle for a feature's UI.
type AssetManifest struct {
	Locator   string `json:"locator"`
	ScriptURL string `json:"scriptUrl"`
	StyleURL  string `json:"styleUrl"`
}

// RegisterAssetManifests registers a manifest factory for every feature that
// carries a component locator. Bundles are expected under baseURL/<locator>.
func RegisterAssetManifests(r *Registry, baseURL string, features []*feature.Feature) int {
	base := strings.TrimRight(baseURL, "/")
	n := 0
	for _, f := range features {
		locator, ok := f.ComponentLocator()
		if !ok {
			continue
		}
		manifest := AssetManifest{
			Locator:   locator,
			ScriptURL: fmt.Sprintf("%s/%s/index.js", base, locator),
			StyleURL:  fmt.Sprintf("%s/%s/index.css", base, locator),
		}
		r.Register(locator, func(context.Context) (feature.Component, error) {
			return manifest, nil
		})
		n++
	}
	return n
}
