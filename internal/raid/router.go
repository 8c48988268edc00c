package raid

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Handler consumes a signal on the shard that owns its guild.
type Handler func(ctx context.Context, signal *Signal)

// SignalChannel delivers raid signals between shard processes over Redis
// pub/sub. Delivery is best-effort: a signal lost in transit is re-derivable
// from the original chat history, so no retry queue is kept.
type SignalChannel struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewSignalChannel creates a signal channel on the given Redis client.
func NewSignalChannel(client rueidis.Client, logger *zap.Logger) *SignalChannel {
	return &SignalChannel{
		client: client,
		logger: logger.Named("signal_channel"),
	}
}

// channelKey returns the pub/sub channel name for a shard.
func channelKey(shardID int) string {
	return fmt.Sprintf("raid:signals:%d", shardID)
}

// Publish sends a signal to the shard that owns its guild.
func (c *SignalChannel) Publish(ctx context.Context, shardID int, signal *Signal) error {
	payload, err := sonic.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal raid signal: %w", err)
	}

	err = c.client.Do(ctx,
		c.client.B().Publish().Channel(channelKey(shardID)).Message(string(payload)).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to publish raid signal: %w", err)
	}

	return nil
}

// Listen blocks consuming signals addressed to the given shard until the
// context is cancelled. Malformed or foreign payloads are logged and skipped.
func (c *SignalChannel) Listen(ctx context.Context, shardID int, handler Handler) error {
	key := channelKey(shardID)

	return c.client.Receive(ctx, c.client.B().Subscribe().Channel(key).Build(),
		func(msg rueidis.PubSubMessage) {
			var signal Signal
			if err := sonic.Unmarshal([]byte(msg.Message), &signal); err != nil {
				c.logger.Warn("Discarding malformed signal payload",
					zap.String("channel", msg.Channel),
					zap.Error(err))
				return
			}

			if signal.Type != SignalType {
				c.logger.Warn("Discarding payload with unexpected type",
					zap.String("type", signal.Type))
				return
			}

			handler(ctx, &signal)
		})
}

// Router decides where a raid signal must be processed. Only the shard that
// owns the target guild holds the live member cache and permission context
// the pipeline needs, so every signal is forwarded there. The router performs
// no business validation; that is the eligibility gate's job.
type Router struct {
	topology  Topology
	shardID   int
	transport *SignalChannel
	handler   Handler
	logger    *zap.Logger
}

// NewRouter creates a router for the given shard identity.
func NewRouter(
	topology Topology, shardID int, transport *SignalChannel, handler Handler, logger *zap.Logger,
) *Router {
	return &Router{
		topology:  topology,
		shardID:   shardID,
		transport: transport,
		handler:   handler,
		logger:    logger.Named("router"),
	}
}

// Route delivers a signal to the shard owning its guild. Fire-and-forget:
// local dispatch runs on its own goroutine, and a failed cross-shard publish
// is logged and dropped.
func (r *Router) Route(ctx context.Context, signal *Signal) {
	owner := r.topology.OwnerOf(signal.GuildID)

	if owner == r.shardID {
		r.logger.Debug("Dispatching raid signal locally",
			zap.Uint64("guildID", uint64(signal.GuildID)),
			zap.String("logURL", signal.LogURL))

		go r.handler(ctx, signal)

		return
	}

	if err := r.transport.Publish(ctx, owner, signal); err != nil {
		r.logger.Error("Dropping raid signal, cross-shard publish failed",
			zap.Uint64("guildID", uint64(signal.GuildID)),
			zap.Int("ownerShard", owner),
			zap.Error(err))
		return
	}

	r.logger.Debug("Forwarded raid signal to owning shard",
		zap.Uint64("guildID", uint64(signal.GuildID)),
		zap.Int("ownerShard", owner))
}
