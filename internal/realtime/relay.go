package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

const DefaultChannel = "skillhire:chat"

// RedisBroadcaster publishes messages to a Redis channel instead of the local
// hub. Every node runs a Relay that feeds its own hub from that channel.
type RedisBroadcaster struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBroadcaster(rdb *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb, channel: channel}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, m *model.ChatMessage) error {
	payload, err := json.Marshal(receiveFrom(m))
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish chat message: %w", err)
	}
	return nil
}

type Relay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

func NewRelay(rdb *redis.Client, channel string, hub *Hub, log *zap.Logger) *Relay {
	return &Relay{rdb: rdb, channel: channel, hub: hub, log: log}
}

// Run delivers published messages to the local hub until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var p ReceivePayload
			if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
				r.log.Warn("malformed relay payload", zap.Error(err))
				continue
			}
			if err := r.hub.deliverPayload(p); err != nil {
				r.log.Warn("relay delivery", zap.Error(err))
			}
		}
	}
}
