package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/metrics"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// ErrClosed is returned when using a closed connection.
var ErrClosed = errors.New("push connection closed")

const defaultBuffer = 64

// Hub is an in-process Channel and Publisher.
type Hub struct {
	mu     sync.Mutex
	conns  map[*hubConn]struct{}
	buffer int
}

var (
	_ Channel   = (*Hub)(nil)
	_ Publisher = (*Hub)(nil)
)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*hubConn]struct{}), buffer: defaultBuffer}
}

// Dial opens a connection that has joined no rooms yet.
func (h *Hub) Dial(ctx context.Context, viewer models.Viewer) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := &hubConn{
		hub:    h,
		viewer: viewer,
		rooms:  make(map[string]struct{}),
		events: make(chan Event, h.buffer),
	}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	slog.Debug("Push connection opened", "user_id", viewer.ID, "role", viewer.Role.String())
	return c, nil
}

// Publish delivers ev to every connection in room. A connection whose buffer
// is full misses the event.
func (h *Hub) Publish(ctx context.Context, room string, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.conns {
		if !c.joined(room) {
			continue
		}
		select {
		case c.events <- ev:
		default:
			slog.Warn("Push event dropped, subscriber is not reading",
				"room", room,
				"type", ev.Type,
				"user_id", c.viewer.ID,
			)
		}
	}
	metrics.PushPublished.WithLabelValues(roomKind(room), "ok").Inc()
	return nil
}

// CloseAll drops every connection, as if the server went away.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[*hubConn]struct{})
	h.mu.Unlock()

	for c := range conns {
		c.shutdown()
	}
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) remove(c *hubConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

type hubConn struct {
	hub    *Hub
	viewer models.Viewer
	events chan Event

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool
	once   sync.Once
}

func (c *hubConn) Join(ctx context.Context, rooms ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for _, room := range rooms {
		c.rooms[room] = struct{}{}
	}
	return nil
}

func (c *hubConn) Events() <-chan Event { return c.events }

func (c *hubConn) Close() error {
	c.hub.remove(c)
	c.shutdown()
	return nil
}

// shutdown closes the event channel. c must already be out of the hub map.
func (c *hubConn) shutdown() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.events)
	})
}

func (c *hubConn) joined(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	_, ok := c.rooms[room]
	return ok
}

// roomKind collapses room names into a bounded metric label.
func roomKind(room string) string {
	switch room {
	case RoomAdmins, RoomBroadcast:
		return room
	default:
		return "user"
	}
}
