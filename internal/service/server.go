// Package service implements the village REST API and publishes a push event
// for every successful mutation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/auth"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/metrics"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/middleware"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/push"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/storage"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

var errAdminOnly = errors.New("admin role required")

// Server serves the REST API.
type Server struct {
	store      storage.Store
	authn      auth.Authenticator
	jwtManager *auth.JWTManager
	publisher  push.Publisher
	now        func() time.Time
}

// NewServer creates a Server. publisher receives the push events of every
// successful mutation.
func NewServer(store storage.Store, authn auth.Authenticator, jwtManager *auth.JWTManager, publisher push.Publisher) *Server {
	return &Server{
		store:      store,
		authn:      authn,
		jwtManager: jwtManager,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Handler returns the routed API wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	authed := middleware.RequireAuth(s.jwtManager)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("POST /users", s.register)

	handle("GET /users", s.listUsers)
	handle("GET /users/{id}", s.getUser)
	handle("PUT /users/{id}", s.updateUser)
	handle("DELETE /users/{id}", s.deleteUser)

	handle("GET /bills", s.listBills)
	handle("POST /bills", s.createBill)
	handle("GET /bills/{id}", s.getBill)
	handle("PUT /bills/{id}", s.updateBill)
	handle("DELETE /bills/{id}", s.deleteBill)

	handle("GET /payments", s.listPayments)
	handle("POST /payments", s.createPayment)
	handle("GET /payments/{id}", s.getPayment)
	handle("PUT /payments/approve/{id}", s.approvePayment)
	handle("PUT /payments/reject/{id}", s.rejectPayment)

	handle("GET /repair-requests", s.listRepairs)
	handle("POST /repair-requests", s.createRepair)
	handle("GET /repair-requests/{id}", s.getRepair)
	handle("PUT /repair-requests/{id}", s.updateRepairStatus)
	handle("DELETE /repair-requests/{id}", s.deleteRepair)

	handle("GET /booking-requests", s.listBookings)
	handle("POST /booking-requests", s.createBooking)
	handle("GET /booking-requests/{id}", s.getBooking)
	handle("PUT /booking-requests/{id}", s.updateBookingStatus)
	handle("DELETE /booking-requests/{id}", s.deleteBooking)

	handle("GET /announcements", s.listAnnouncements)
	handle("POST /announcements", s.createAnnouncement)
	handle("GET /announcements/{id}", s.getAnnouncement)
	handle("PUT /announcements/{id}", s.updateAnnouncement)
	handle("DELETE /announcements/{id}", s.deleteAnnouncement)

	handle("GET /documents", s.listDocuments)
	handle("POST /documents", s.createDocument)
	handle("GET /documents/{id}", s.getDocument)
	handle("DELETE /documents/{id}", s.deleteDocument)

	return middleware.Logging(mux)
}

// viewer returns the authenticated viewer. RequireAuth guarantees one on every
// protected route.
func viewer(r *http.Request) models.Viewer {
	v, _ := middleware.ViewerFrom(r.Context())
	return v
}

// requireAdmin writes 403 and reports false unless the caller is an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) (models.Viewer, bool) {
	v := viewer(r)
	if !visibility.IsAdmin(v) {
		writeError(w, http.StatusForbidden, errAdminOnly)
		return v, false
	}
	return v, true
}

// routing describes where a push event goes.
type routing struct {
	rooms []string
	opts  []push.EventOption
}

func broadcast() routing {
	return routing{rooms: []string{push.RoomBroadcast}}
}

func admins() routing {
	return routing{
		rooms: []string{push.RoomAdmins},
		opts:  []push.EventOption{push.Audience(push.AudienceAdmins)},
	}
}

// ownerAndAdmins reaches the record's owner and every admin.
func ownerAndAdmins(ownerID string) routing {
	return routing{
		rooms: []string{push.UserRoom(ownerID), push.RoomAdmins},
		opts:  []push.EventOption{push.Target(ownerID)},
	}
}

// publish sends the event for a completed mutation. Delivery failures are
// logged; the mutation itself already succeeded.
func (s *Server) publish(ctx context.Context, eventType string, payload any, to routing) {
	ev, err := push.NewEvent(eventType, payload, to.opts...)
	if err != nil {
		slog.Error("Push event encoding failed", "type", eventType, "error", err)
		return
	}
	for _, room := range to.rooms {
		if err := s.publisher.Publish(ctx, room, ev); err != nil {
			slog.Warn("Push publish failed", "type", eventType, "room", room, "error", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

// fail maps err to an HTTP status and writes it.
func fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err)
		writeError(w, status, errors.New(http.StatusText(status)))
		return
	}
	slog.Warn(op+" failed", "status", status, "error", err)
	writeError(w, status, err)
}

func statusOf(err error) int {
	var fieldErr *models.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrUsernameExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNotApproved), errors.Is(err, errAdminOnly):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &models.FieldError{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

// values dereferences store results for the pure filters.
func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}

// notFoundErr hides records the caller may not see behind a plain 404.
func notFoundErr(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
}
