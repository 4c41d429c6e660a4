package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	r.Register("chat/panel", func(context.Context) (feature.Component, error) { return "panel", nil })
	r.Register("broken", func(context.Context) (feature.Component, error) { return nil, errors.New("bundle missing") })

	got, err := r.Resolve(context.Background(), "chat/panel")
	require.NoError(t, err)
	assert.Equal(t, "panel", got)

	_, err = r.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownLocator)

	_, err = r.Resolve(context.Background(), "broken")
	assert.EqualError(t, err, "bundle missing")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Resolve(ctx, "chat/panel")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterAssetManifests(t *testing.T) {
	withLocator, err := feature.NewFeature(feature.Definition{
		ID:       "chat",
		Category: feature.CategoryCommunications,
		Metadata: map[string]any{feature.MetadataComponentKey: "communications/chat"},
	})
	require.NoError(t, err)
	plain, err := feature.NewFeature(feature.Definition{ID: "plain", Category: feature.CategoryDesign})
	require.NoError(t, err)

	r := NewRegistry()
	n := RegisterAssetManifests(r, "https://cdn.bodrix.ai/features/", []*feature.Feature{withLocator, plain})

	assert.Equal(t, 1, n)
	got, err := r.Resolve(context.Background(), "communications/chat")
	require.NoError(t, err)
	assert.Equal(t, AssetManifest{
		Locator:   "communications/chat",
		ScriptURL: "https://cdn.bodrix.ai/features/communications/chat/index.js",
		StyleURL:  "https://cdn.bodrix.ai/features/communications/chat/index.css",
	}, got)
}
