// Package feed fans out admin live-feed events over Redis pub/sub so every
// server instance can forward them to its connected admins.
package feed

import (
	"context"
	"encoding/json"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// Publisher publishes and subscribes to the admin feed channel.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	return &Publisher{rdb: rdb, channel: channel}
}

// Publish sends ev to every subscriber.
func (p *Publisher) Publish(ctx context.Context, ev model.FeedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, data).Err()
}

// Subscribe opens a subscription. The caller must Close it.
func (p *Publisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.rdb.Subscribe(ctx, p.channel)
}

// Decode parses a pub/sub payload.
func Decode(payload string) (model.FeedEvent, error) {
	var ev model.FeedEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
