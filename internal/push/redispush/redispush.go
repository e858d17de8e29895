// Package redispush carries push events over Redis Pub/Sub, one channel per room.
package redispush

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/metrics"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/push"
)

// ChannelPrefix namespaces room channels in Redis.
const ChannelPrefix = "village:room:"

// ChannelName maps a room to its Redis channel.
func ChannelName(room string) string { return ChannelPrefix + room }

// Connect parses redisURL and checks the server is reachable.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	slog.Info("Redis connection established", "addr", opt.Addr)
	return client, nil
}

// Broker is a push.Channel and push.Publisher backed by Redis.
type Broker struct {
	client redis.UniversalClient
}

var (
	_ push.Channel   = (*Broker)(nil)
	_ push.Publisher = (*Broker)(nil)
)

// New creates a broker on client.
func New(client redis.UniversalClient) *Broker {
	return &Broker{client: client}
}

// Publish sends ev to the room's channel.
func (b *Broker) Publish(ctx context.Context, room string, ev push.Event) error {
	if err := b.client.Publish(ctx, ChannelName(room), []byte(ev.Raw)).Err(); err != nil {
		metrics.PushPublished.WithLabelValues(roomKind(room), "error").Inc()
		return fmt.Errorf("failed to publish %s to %s: %w", ev.Type, room, err)
	}
	metrics.PushPublished.WithLabelValues(roomKind(room), "ok").Inc()
	return nil
}

// Dial opens a subscription that has joined no rooms yet.
func (b *Broker) Dial(ctx context.Context, viewer models.Viewer) (push.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &conn{
		viewer: viewer,
		ps:     b.client.Subscribe(ctx),
		events: make(chan push.Event, 64),
	}, nil
}

type conn struct {
	viewer models.Viewer
	ps     *redis.PubSub
	events chan push.Event

	mu        sync.Mutex
	started   bool
	closeOnce sync.Once
}

func (c *conn) Join(ctx context.Context, rooms ...string) error {
	channels := make([]string, 0, len(rooms))
	for _, room := range rooms {
		channels = append(channels, ChannelName(room))
	}
	if err := c.ps.Subscribe(ctx, channels...); err != nil {
		return fmt.Errorf("failed to join rooms %v: %w", rooms, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.started = true
		go c.pump(c.ps.Channel())
	}
	return nil
}

func (c *conn) Events() <-chan push.Event { return c.events }

func (c *conn) Close() error {
	err := c.ps.Close()

	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		c.closeEvents()
	}
	return err
}

// pump forwards decoded messages until the subscription closes.
func (c *conn) pump(msgs <-chan *redis.Message) {
	defer c.closeEvents()
	for msg := range msgs {
		ev, err := push.Decode([]byte(msg.Payload))
		if err != nil {
			slog.Warn("Ignoring malformed push message", "channel", msg.Channel, "error", err)
			continue
		}
		select {
		case c.events <- ev:
		default:
			slog.Warn("Push event dropped, subscriber is not reading", "type", ev.Type, "user_id", c.viewer.ID)
		}
	}
	slog.Warn("Push subscription ended", "user_id", c.viewer.ID)
}

func (c *conn) closeEvents() {
	c.closeOnce.Do(func() { close(c.events) })
}

func roomKind(room string) string {
	switch room {
	case push.RoomAdmins, push.RoomBroadcast:
		return room
	default:
		return "user"
	}
}
