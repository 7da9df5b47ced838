package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

const redisEventsChannel = "livechat:gateway:events"

// Publisher mirrors broadcasts to the other gateway processes.
type Publisher interface {
	Publish(ctx context.Context, channelID string, ev OutboundEvent, exceptID string) error
}

// envelope tags each frame with its origin process so subscribers can drop
// their own echoes.
type envelope struct {
	Origin    string        `json:"origin"`
	ChannelID string        `json:"channelId"`
	ExceptID  string        `json:"exceptId,omitempty"`
	Event     OutboundEvent `json:"event"`
}

type RedisPublisher struct {
	client *redis.Client
	origin string
}

func NewRedisPublisher(addr, password, origin string) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		origin: origin,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, channelID string, ev OutboundEvent, exceptID string) error {
	payload, err := json.Marshal(envelope{
		Origin:    p.origin,
		ChannelID: channelID,
		ExceptID:  exceptID,
		Event:     ev,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal gateway envelope: %w", err)
	}
	if err := p.client.Publish(ctx, redisEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish gateway event: %w", err)
	}
	return nil
}

// Listen replays frames from other processes into the local channels. It
// blocks until ctx is cancelled.
func (p *RedisPublisher) Listen(ctx context.Context, g *Gateway) {
	sub := p.client.Subscribe(ctx, redisEventsChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("gateway: dropping malformed bridge frame: %v", err)
				continue
			}
			if env.Origin == p.origin {
				continue
			}
			g.broadcastLocal(env.ChannelID, env.Event, env.ExceptID)
		}
	}
}
