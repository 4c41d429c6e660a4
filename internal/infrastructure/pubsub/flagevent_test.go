package pubsub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

type emptyCatalog struct{}

func (emptyCatalog) GetFeature(string) (*feature.Feature, bool) { return nil, false }
func (emptyCatalog) GetAllFeatures() []*feature.Feature         { return nil }

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewRedisFlagBus_DefaultChannel(t *testing.T) {
	bus := NewRedisFlagBus(nil, "", logger.NewNop())
	assert.Equal(t, DefaultFlagChannel, bus.channel)
	assert.NotEmpty(t, bus.InstanceID())
}

func TestFlagChangeMessage_Decode(t *testing.T) {
	bus := NewRedisFlagBus(nil, "test", logger.NewNop())
	peer := NewRedisFlagBus(nil, "test", logger.NewNop())

	evt := flags.ChangeEvent{Kind: flags.ChangeSet, FeatureID: "ai-chat", Enabled: true}

	t.Run("peer message is applied", func(t *testing.T) {
		data, err := peer.encode(evt)
		require.NoError(t, err)

		got, ok := bus.decode(string(data))
		require.True(t, ok)
		assert.Equal(t, evt, got)
	})

	t.Run("own message is skipped", func(t *testing.T) {
		data, err := bus.encode(evt)
		require.NoError(t, err)

		_, ok := bus.decode(string(data))
		assert.False(t, ok)
	})

	t.Run("malformed payload is skipped", func(t *testing.T) {
		_, ok := bus.decode("{not json")
		assert.False(t, ok)
	})

	t.Run("replace carries the override map", func(t *testing.T) {
		replace := flags.ChangeEvent{Kind: flags.ChangeReplace, Overrides: map[string]bool{"a": true, "b": false}}
		data, err := peer.encode(replace)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, peer.InstanceID(), raw["instance_id"])

		got, ok := bus.decode(string(data))
		require.True(t, ok)
		assert.Equal(t, replace.Overrides, got.Overrides)
	})
}

func TestRedisFlagBus_PublishSubscribe(t *testing.T) {
	client := setupTestRedis(t)
	local := NewRedisFlagBus(client, "test:flags", logger.NewNop())
	remote := NewRedisFlagBus(client, "test:flags", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []flags.ChangeEvent
	)
	done := make(chan error, 1)
	go func() {
		done <- local.Subscribe(ctx, func(evt flags.ChangeEvent) {
			mu.Lock()
			received = append(received, evt)
			mu.Unlock()
		})
	}()

	// Wait for the subscription to be registered before publishing.
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, "test:flags").Result()
		return err == nil && n["test:flags"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, local.Publish(ctx, flags.ChangeEvent{Kind: flags.ChangeSet, FeatureID: "own"}))
	remote.PublishChange(flags.ChangeEvent{Kind: flags.ChangeRemove, FeatureID: "ai-chat"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, flags.ChangeEvent{Kind: flags.ChangeRemove, FeatureID: "ai-chat"}, received[0])
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestRedisFlagBus_AppliesToPeerFlags(t *testing.T) {
	client := setupTestRedis(t)
	local := NewRedisFlagBus(client, "test:apply", logger.NewNop())
	remote := NewRedisFlagBus(client, "test:apply", logger.NewNop())

	f := flags.New(emptyCatalog{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	local.Start(ctx, f.ApplyRemoteChange)

	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, "test:apply").Result()
		return err == nil && n["test:apply"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	remote.PublishChange(flags.ChangeEvent{Kind: flags.ChangeSet, FeatureID: "ai-chat", Enabled: true})

	assert.Eventually(t, func() bool {
		return f.IsEnabled("ai-chat")
	}, 2*time.Second, 10*time.Millisecond)
}

func newInstance(t *testing.T) (*registry.Registry, *flags.Flags) {
	t.Helper()
	reg := registry.New(logger.NewNop())
	f, err := feature.NewFeature(feature.Definition{
		ID:       "ai-chat",
		Name:     "AI Chat",
		Category: feature.CategoryCommunications,
		Enabled:  true,
	})
	require.NoError(t, err)
	require.True(t, reg.RegisterFeature(f))
	return reg, flags.New(reg, logger.NewNop())
}

func TestRedisFlagBus_ToggleReachesPeer(t *testing.T) {
	client := setupTestRedis(t)
	originBus := NewRedisFlagBus(client, "test:toggle", logger.NewNop())
	peerBus := NewRedisFlagBus(client, "test:toggle", logger.NewNop())

	_, origin := newInstance(t)
	origin.SetPublisher(originBus)
	peerReg, peer := newInstance(t)
	peer.SetPublisher(peerBus)

	var (
		mu   sync.Mutex
		seen []bool
	)
	defer peer.Subscribe("ai-chat", func(enabled bool) {
		mu.Lock()
		seen = append(seen, enabled)
		mu.Unlock()
	})()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	peerBus.Start(ctx, peer.ApplyRemoteChange)

	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, "test:toggle").Result()
		return err == nil && n["test:toggle"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, origin.SetFeatureEnabled("ai-chat", false))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, peerReg.IsFeatureEnabled("ai-chat"))
	assert.False(t, peer.IsEnabled("ai-chat"))
	mu.Lock()
	assert.Equal(t, []bool{false}, seen)
	mu.Unlock()
}
