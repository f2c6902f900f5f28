package signal

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mzeev8/online-medical-consultation/internal/app"
)

// PresenceEvent records one membership change in a room.
type PresenceEvent struct {
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Kind      string `json:"kind"` // "joined" or "left"
	Occupancy int    `json:"occupancy"`
}

// Publisher fans presence events out over redis pub/sub so ops tooling and
// sibling instances can watch live occupancy. It is observational only:
// the in-process registry stays authoritative for capacity decisions.
// Delivery is best effort; the hub enqueues without blocking and events
// are dropped when the buffer is full.
type Publisher struct {
	rdb *redis.Client
	log *slog.Logger
	q   chan PresenceEvent
}

// NewPublisher connects to redis and verifies connectivity.
func NewPublisher(ctx context.Context, cfg app.Config, log *slog.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Publisher{rdb: rdb, log: log, q: make(chan PresenceEvent, 256)}, nil
}

// Run drains the queue until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.q:
			raw, _ := json.Marshal(ev)
			if err := p.rdb.Publish(ctx, channel(ev.RoomID), raw).Err(); err != nil {
				p.log.Debug("presence.publish", "err", err)
			}
		}
	}
}

// Enqueue hands an event to the publisher without ever blocking the caller.
func (p *Publisher) Enqueue(ev PresenceEvent) {
	select {
	case p.q <- ev:
	default:
	}
}

// Subscribe listens to all room channels and invokes fn for each event.
func (p *Publisher) Subscribe(ctx context.Context, fn func(PresenceEvent)) {
	pubsub := p.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg := <-ch:
			var ev PresenceEvent
			_ = json.Unmarshal([]byte(msg.Payload), &ev)
			if ev.RoomID != "" {
				fn(ev)
			}
		}
	}
}

// Ping reports redis liveness, used by the readiness probe.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close shuts down the redis connection
func (p *Publisher) Close() { _ = p.rdb.Close() }

// channel namespacing for room pub/sub
func channel(roomID string) string { return "room:" + roomID }
