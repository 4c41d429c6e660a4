package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
	"github.com/bodrix-ai/bodrix/internal/shared/goroutine"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/utils/logutil"
)

const (
	DefaultFlagChannel = "bodrix:features:overrides"

	publishTimeout = 3 * time.Second

	maxLoggedPayload = 256
)

// FlagChangeMessage is the wire form of an override mutation relayed between instances.
type FlagChangeMessage struct {
	Event      flags.ChangeEvent `json:"event"`
	InstanceID string            `json:"instance_id"` // Source instance ID to avoid self-delivery
	Timestamp  int64             `json:"timestamp"`
}

// RedisFlagBus relays override changes over Redis Pub/Sub. It satisfies
// flags.ChangePublisher.
type RedisFlagBus struct {
	client     *redis.Client
	logger     logger.Interface
	channel    string
	instanceID string
}

// NewRedisFlagBus creates a bus on channel, falling back to DefaultFlagChannel.
func NewRedisFlagBus(client *redis.Client, channel string, logger logger.Interface) *RedisFlagBus {
	if channel == "" {
		channel = DefaultFlagChannel
	}
	return &RedisFlagBus{
		client:     client,
		logger:     logger,
		channel:    channel,
		instanceID: uuid.NewString(),
	}
}

func (b *RedisFlagBus) InstanceID() string {
	return b.instanceID
}

// PublishChange sends evt to peers. Failures are logged; the local mutation has
// already been applied.
func (b *RedisFlagBus) PublishChange(evt flags.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.Publish(ctx, evt); err != nil {
		b.logger.Errorw("failed to publish flag change",
			"kind", evt.Kind,
			"feature_id", evt.FeatureID,
			"error", err,
		)
	}
}

func (b *RedisFlagBus) Publish(ctx context.Context, evt flags.ChangeEvent) error {
	data, err := b.encode(evt)
	if err != nil {
		return err
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish flag change: %w", err)
	}

	b.logger.Debugw("flag change published to Redis",
		"kind", evt.Kind,
		"feature_id", evt.FeatureID,
		"channel", b.channel,
	)
	return nil
}

func (b *RedisFlagBus) encode(evt flags.ChangeEvent) ([]byte, error) {
	data, err := json.Marshal(FlagChangeMessage{
		Event:      evt,
		InstanceID: b.instanceID,
		Timestamp:  biztime.NowUTC().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flag change: %w", err)
	}
	return data, nil
}

// decode returns the event carried by payload and whether it should be applied.
// Malformed payloads and our own messages are skipped.
func (b *RedisFlagBus) decode(payload string) (flags.ChangeEvent, bool) {
	var msg FlagChangeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.Warnw("failed to unmarshal flag change",
			"payload", logutil.Truncate(payload, maxLoggedPayload),
			"error", err,
		)
		return flags.ChangeEvent{}, false
	}
	if msg.InstanceID == b.instanceID {
		return flags.ChangeEvent{}, false
	}
	return msg.Event, true
}

// Subscribe blocks, delivering peer changes to apply until ctx is done.
// Changes published by this instance are filtered out.
func (b *RedisFlagBus) Subscribe(ctx context.Context, apply func(evt flags.ChangeEvent)) error {
	return b.subscribeWithReconnect(ctx, func(payload string) {
		if evt, ok := b.decode(payload); ok {
			apply(evt)
		}
	})
}

// subscribeWithReconnect wraps subscribe with automatic reconnection and exponential backoff.
func (b *RedisFlagBus) subscribeWithReconnect(ctx context.Context, handler func(payload string)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("flag subscription disconnected, reconnecting",
			"channel", b.channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisFlagBus) subscribe(ctx context.Context, handler func(payload string)) error {
	ps := b.client.Subscribe(ctx, b.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", b.channel, err)
	}

	b.logger.Infow("subscribed to flag change channel",
		"channel", b.channel,
		"instance_id", b.instanceID,
	)

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("flag change subscriber stopped",
				"channel", b.channel,
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("flag change channel closed",
					"channel", b.channel,
				)
				return nil
			}

			// Applied in arrival order so a set followed by a remove cannot swap.
			if err := goroutine.Try(func() error {
				handler(msg.Payload)
				return nil
			}); err != nil {
				b.logger.Errorw("flag change handler panicked",
					"channel", b.channel,
					"error", err,
				)
			}
		}
	}
}

// Start runs Subscribe in a panic-safe goroutine bound to ctx.
func (b *RedisFlagBus) Start(ctx context.Context, apply func(evt flags.ChangeEvent)) {
	goroutine.SafeGo(b.logger, "flag-change-subscriber", func() {
		if err := b.Subscribe(ctx, apply); err != nil && ctx.Err() == nil {
			b.logger.Errorw("flag change subscriber exited", "error", err)
		}
	})
}
