// Package dashboard is the client-side session of one viewer: its resource
// caches, derived bill views and the mutations it may perform.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/cache"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/reconciler"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/transport"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

// Session holds the caches of one signed-in viewer.
type Session struct {
	client   transport.Client
	viewer   models.Viewer
	notifier Notifier

	Bills         *cache.ResourceCache[models.Bill]
	Payments      *cache.ResourceCache[models.Payment]
	Repairs       *cache.ResourceCache[models.RepairRequest]
	Bookings      *cache.ResourceCache[models.BookingRequest]
	Announcements *cache.ResourceCache[models.Announcement]
	Documents     *cache.ResourceCache[models.Document]

	// Users is nil for residents.
	Users *cache.ResourceCache[models.User]
}

// New creates a session with empty caches. Residents fetch only their own
// payments.
func New(client transport.Client, viewer models.Viewer, notifier Notifier) (*Session, error) {
	if !viewer.Valid() {
		return nil, fmt.Errorf("failed to create session: invalid viewer %q", viewer.ID)
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}

	s := &Session{
		client:        client,
		viewer:        viewer,
		notifier:      notifier,
		Bills:         cache.New[models.Bill](events.TargetBills, "/bills", client),
		Repairs:       cache.New[models.RepairRequest](events.TargetRepairs, "/repair-requests", client),
		Bookings:      cache.New[models.BookingRequest](events.TargetBookings, "/booking-requests", client),
		Announcements: cache.New[models.Announcement](events.TargetAnnouncements, "/announcements", client),
		Documents:     cache.New[models.Document](events.TargetDocuments, "/documents", client),
	}

	switch viewer.Role {
	case models.RoleAdmin:
		s.Payments = cache.New[models.Payment](events.TargetPayments, "/payments", client)
		s.Users = cache.New[models.User](events.TargetUsers, "/users", client)
	case models.RoleResident:
		s.Payments = cache.New[models.Payment](events.TargetPayments, "/payments", client,
			cache.WithQuery(url.Values{"user_id": {viewer.ID}}))
	default:
		return nil, fmt.Errorf("failed to create session: unsupported role %s", viewer.Role)
	}
	return s, nil
}

// Viewer returns the session's viewer.
func (s *Session) Viewer() models.Viewer { return s.viewer }

// Targets returns the caches the event router keeps in step.
func (s *Session) Targets() []events.Target {
	targets := []events.Target{
		events.CacheTarget(s.Bills),
		events.CacheTarget(s.Payments),
		events.CacheTarget(s.Repairs),
		events.CacheTarget(s.Bookings),
		events.CacheTarget(s.Announcements),
		events.CacheTarget(s.Documents),
	}
	if s.Users != nil {
		targets = append(targets, events.CacheTarget(s.Users))
	}
	return targets
}

// RefreshAll refreshes every cache. Caches that fail keep their contents; the
// joined error is also shown to the user.
func (s *Session) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, t := range s.Targets() {
		if err := t.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		s.notifyError("Could not load all data", err)
	}
	return err
}

// BillViews reconciles the cached bills and payments for the viewer.
func (s *Session) BillViews() []models.DerivedBillView {
	views := reconciler.Reconcile(s.Bills.All(), s.Payments.All(), s.viewer)
	for _, v := range views {
		for _, violation := range v.Violations {
			slog.Warn("Payment invariant violated", "bill_id", v.ID, "detail", violation)
		}
	}
	return views
}

// Settlements aggregates every payer per bill. Admin only.
func (s *Session) Settlements() ([]reconciler.BillSettlement, error) {
	if !visibility.IsAdmin(s.viewer) {
		return nil, ErrForbidden
	}
	return reconciler.ReconcileForAdmin(s.Bills.All(), s.Payments.All(), s.Users.All()), nil
}

// MyRepairs returns the repair requests visible to the viewer.
func (s *Session) MyRepairs() []models.RepairRequest {
	return visibility.OwnedBy(s.Repairs.All(), s.viewer)
}

// MyDocuments returns the documents visible to the viewer.
func (s *Session) MyDocuments() []models.Document {
	return visibility.OwnedBy(s.Documents.All(), s.viewer)
}

// MyBookings returns the booking requests visible to the viewer.
func (s *Session) MyBookings() []models.BookingRequest {
	return visibility.OwnedBy(s.Bookings.All(), s.viewer)
}

// refresher is the part of a cache a mutation refreshes on success.
type refresher interface {
	Refresh(ctx context.Context) error
	Name() string
}

// send performs one mutation. On success it notifies and refreshes each
// affected cache; on failure it notifies and leaves every cache untouched.
func (s *Session) send(ctx context.Context, op, method, path string, body any, affected ...refresher) (json.RawMessage, error) {
	slog.Info(op+" request received", "user_id", s.viewer.ID, "path", path)

	raw, err := s.client.Send(ctx, method, path, body)
	if err != nil {
		slog.Error(op+" failed", "user_id", s.viewer.ID, "error", err)
		s.notifyError(op+" failed", err)
		return nil, err
	}

	s.notifier.Notify(LevelSuccess, op+" succeeded")
	for _, c := range affected {
		if err := c.Refresh(ctx); err != nil {
			slog.Warn("Refresh after mutation failed", "cache", c.Name(), "error", err)
		}
	}
	return raw, nil
}

// reject reports an error raised before any request.
func (s *Session) reject(op string, err error) error {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		s.notifier.Notify(LevelWarning, vErr.Error())
	case errors.Is(err, ErrForbidden):
		s.notifier.Notify(LevelError, op+": "+err.Error())
	default:
		s.notifier.Notify(LevelError, op+" failed: "+err.Error())
	}
	return err
}

func (s *Session) notifyError(prefix string, err error) {
	var appErr *transport.ApplicationError
	var netErr *transport.NetworkError
	switch {
	case errors.As(err, &appErr):
		s.notifier.Notify(LevelError, prefix+": "+appErr.Message)
	case errors.As(err, &netErr):
		s.notifier.Notify(LevelError, prefix+": server unreachable")
	default:
		s.notifier.Notify(LevelError, prefix+": "+err.Error())
	}
}

// requireRole fails with ErrForbidden unless the viewer has role.
func (s *Session) requireRole(role models.Role) error {
	switch s.viewer.Role {
	case models.RoleAdmin, models.RoleResident:
		if s.viewer.Role == role {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// decodeField extracts field from a {"message": ..., field: {...}} response.
func decodeField[T any](raw json.RawMessage, field string) (T, error) {
	var out T
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	inner, ok := envelope[field]
	if !ok {
		return out, fmt.Errorf("response has no %q field", field)
	}
	if err := json.Unmarshal(inner, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", field, err)
	}
	return out, nil
}

func pathID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
