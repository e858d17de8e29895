package push

import (
	"context"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// Conn is one viewer's push connection.
type Conn interface {
	// Join subscribes the connection to rooms.
	Join(ctx context.Context, rooms ...string) error

	// Events delivers inbound events. It is closed when the connection is lost
	// or closed.
	Events() <-chan Event

	Close() error
}

// Channel opens push connections.
type Channel interface {
	Dial(ctx context.Context, viewer models.Viewer) (Conn, error)
}

// Publisher delivers an event to every connection joined to room.
type Publisher interface {
	Publish(ctx context.Context, room string, ev Event) error
}
