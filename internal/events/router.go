// Package events owns the push connection of one viewer and turns inbound
// events into cache changes.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/cache"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/metrics"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/push"
)

var (
	// ErrAlreadyConnected is returned by Connect unless the router is Disconnected.
	ErrAlreadyConnected = errors.New("router is already connected")

	// ErrInvalidViewer is returned by Connect for a viewer without id or role.
	ErrInvalidViewer = errors.New("viewer has no identity or role")
)

// State is the lifecycle state of the push connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Joined
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Joined:
		return "joined"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Target is a cache the router can change.
type Target struct {
	Name       string
	Refresh    func(ctx context.Context) error
	UpsertJSON func(raw json.RawMessage) error
	Remove     func(id string) bool
}

// CacheTarget exposes a resource cache as a Target under its own name.
func CacheTarget[T cache.Entity](c *cache.ResourceCache[T]) Target {
	return Target{
		Name:       c.Name(),
		Refresh:    c.Refresh,
		UpsertJSON: c.UpsertJSON,
		Remove:     c.Remove,
	}
}

// Option configures a Router.
type Option func(*Router)

// WithTable replaces DefaultTable.
func WithTable(t Table) Option {
	return func(r *Router) { r.table = t }
}

// WithLogger sets the logger. slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// OnChange registers fn to run after every handled event and after the
// resync that follows joining. It runs on the router's read loop.
func OnChange(fn func(eventType string)) Option {
	return func(r *Router) { r.onChange = fn }
}

// Router connects one viewer to the push channel and keeps its caches in
// step with inbound events.
type Router struct {
	channel  push.Channel
	viewer   models.Viewer
	targets  map[string]Target
	table    Table
	logger   *slog.Logger
	onChange func(eventType string)

	mu    sync.Mutex
	state State
	conn  push.Conn
	done  chan struct{}
}

// NewRouter creates a Disconnected router.
func NewRouter(channel push.Channel, viewer models.Viewer, targets []Target, opts ...Option) *Router {
	r := &Router{
		channel: channel,
		viewer:  viewer,
		targets: make(map[string]Target, len(targets)),
		table:   DefaultTable(),
		logger:  slog.Default(),
	}
	for _, t := range targets {
		r.targets[t.Name] = t
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Done is closed when the current connection's read loop exits. It returns
// nil before the first successful Connect.
func (r *Router) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Rooms returns the rooms viewer joins.
func Rooms(viewer models.Viewer) []string {
	rooms := []string{push.RoomBroadcast, push.UserRoom(viewer.ID)}
	switch viewer.Role {
	case models.RoleAdmin:
		rooms = append(rooms, push.RoomAdmins)
	case models.RoleResident:
	default:
	}
	return rooms
}

// Connect dials the channel, joins the viewer's rooms and resyncs every
// target, since events missed while disconnected are not replayed. Events
// are then handled on a background loop until the connection is lost,
// Disconnect is called or ctx is done. There is no automatic reconnect;
// Connect may be called again once the router is Disconnected.
func (r *Router) Connect(ctx context.Context) error {
	if !r.viewer.Valid() {
		return ErrInvalidViewer
	}

	r.mu.Lock()
	if r.state != Disconnected {
		r.mu.Unlock()
		return ErrAlreadyConnected
	}
	r.state = Connecting
	r.mu.Unlock()

	log := r.logger.With("user_id", r.viewer.ID, "role", r.viewer.Role.String())
	log.Info("Push connection starting")

	conn, err := r.channel.Dial(ctx, r.viewer)
	if err != nil {
		r.setState(Disconnected)
		log.Error("Push dial failed", "error", err)
		return fmt.Errorf("failed to dial push channel: %w", err)
	}

	rooms := Rooms(r.viewer)
	if err := conn.Join(ctx, rooms...); err != nil {
		conn.Close()
		r.setState(Disconnected)
		log.Error("Push join failed", "rooms", rooms, "error", err)
		return fmt.Errorf("failed to join rooms: %w", err)
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.state = Joined
	r.conn = conn
	r.done = done
	r.mu.Unlock()
	log.Info("Push connection joined", "rooms", rooms)

	r.resync(ctx)
	r.changed("resync")

	go r.loop(ctx, conn, done)
	return nil
}

// Disconnect closes the current connection. The read loop moves the router
// to Disconnected.
func (r *Router) Disconnect() error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (r *Router) loop(ctx context.Context, conn push.Conn, done chan struct{}) {
	defer close(done)

	reason := "connection lost"
	events := conn.Events()
loop:
	for {
		select {
		case <-ctx.Done():
			reason = "context done"
			conn.Close()
			break loop
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			r.Handle(ctx, ev)
		}
	}

	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
		r.state = Disconnected
	}
	r.mu.Unlock()
	r.logger.Warn("Push connection closed", "user_id", r.viewer.ID, "reason", reason)
}

// resync refreshes every target. Failures are logged and the target keeps
// its last-known-good contents.
func (r *Router) resync(ctx context.Context) {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.targets[name].Refresh(ctx); err != nil {
			r.logger.Warn("Resync failed", "target", name, "error", err)
		}
	}
}

// Relevant reports whether ev concerns viewer: admins receive everything,
// residents receive broadcasts and events targeted at them, never
// admin-audience events.
func Relevant(ev push.Event, viewer models.Viewer) bool {
	switch viewer.Role {
	case models.RoleAdmin:
		return true
	case models.RoleResident:
		if ev.Audience == push.AudienceAdmins {
			return false
		}
		return ev.TargetUserID == "" || ev.TargetUserID == viewer.ID
	default:
		return false
	}
}

// Handle applies ev to the targets named by the table. It reports whether ev
// was relevant and known.
func (r *Router) Handle(ctx context.Context, ev push.Event) bool {
	if !Relevant(ev, r.viewer) {
		metrics.PushEvents.WithLabelValues(ev.Type, "irrelevant").Inc()
		r.logger.Debug("Push event ignored", "type", ev.Type, "target_user_id", ev.TargetUserID)
		return false
	}

	actions, ok := r.table[ev.Type]
	if !ok {
		metrics.PushEvents.WithLabelValues("unknown", "unknown").Inc()
		r.logger.Debug("Push event has no handler", "type", ev.Type)
		return false
	}

	r.logger.Info("Push event received", "type", ev.Type, "user_id", r.viewer.ID)
	for _, a := range actions {
		target, ok := r.targets[a.Target]
		if !ok {
			continue
		}
		r.apply(ctx, target, a, ev)
	}
	metrics.PushEvents.WithLabelValues(ev.Type, "handled").Inc()
	r.changed(ev.Type)
	return true
}

func (r *Router) apply(ctx context.Context, target Target, a Action, ev push.Event) {
	switch a.Kind {
	case ActionUpsert:
		err := target.UpsertJSON(ev.Raw)
		if err == nil {
			return
		}
		r.logger.Debug("Upsert not possible, refreshing", "target", target.Name, "type", ev.Type, "error", err)
	case ActionRemove:
		if id, ok := ev.Field(a.IDField); ok {
			target.Remove(id)
			return
		}
		r.logger.Debug("Remove without id, refreshing", "target", target.Name, "field", a.IDField)
	case ActionRefresh:
	default:
		r.logger.Warn("Unknown action", "kind", a.Kind.String(), "target", target.Name)
		return
	}

	if err := target.Refresh(ctx); err != nil {
		r.logger.Warn("Refresh after push event failed", "target", target.Name, "type", ev.Type, "error", err)
	}
}

func (r *Router) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Router) changed(eventType string) {
	if r.onChange != nil {
		r.onChange(eventType)
	}
}
