package service

import (
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

// ownerFilter is the owner id residents are restricted to. Admins list
// everyone's requests.
func ownerFilter(v models.Viewer) string {
	if visibility.IsAdmin(v) {
		return ""
	}
	return v.ID
}

func (s *Server) listRepairs(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	repairs, err := s.store.ListRepairs(r.Context(), ownerFilter(v))
	if err != nil {
		fail(w, "ListRepairs", err)
		return
	}
	writeJSON(w, http.StatusOK, visibility.OwnedBy(values(repairs), v))
}

func (s *Server) getRepair(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	repair, err := s.store.GetRepair(r.Context(), id)
	if err != nil {
		fail(w, "GetRepair", err)
		return
	}
	if !visibility.OwnedVisible(repair.UserID, viewer(r)) {
		fail(w, "GetRepair", notFoundErr("repair request", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repair_request": repair})
}

func (s *Server) createRepair(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	var in models.RepairInput
	if err := decode(r, &in); err != nil {
		fail(w, "CreateRepair", err)
		return
	}
	slog.Info("CreateRepair request received", "user_id", v.ID, "category", in.Category)
	if err := in.Validate(); err != nil {
		fail(w, "CreateRepair", err)
		return
	}

	repair := &models.RepairRequest{
		UserID:      v.ID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		ImagePaths:  in.ImagePaths,
	}
	if err := s.store.CreateRepair(r.Context(), repair); err != nil {
		fail(w, "CreateRepair", err)
		return
	}

	slog.Info("Repair request created", "request_id", repair.ID)
	s.publish(r.Context(), events.EventRepairCreated, repair, admins())
	writeJSON(w, http.StatusCreated, map[string]any{"repair_request": repair})
}

func (s *Server) updateRepairStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var in models.StatusInput
	if err := decode(r, &in); err != nil {
		fail(w, "UpdateRepairStatus", err)
		return
	}
	slog.Info("UpdateRepairStatus request received", "request_id", id, "status", in.Status)

	status, err := models.ParseRepairStatus(in.Status)
	if err != nil {
		fail(w, "UpdateRepairStatus", &models.FieldError{Field: "status", Message: err.Error()})
		return
	}
	repair, err := s.store.UpdateRepairStatus(r.Context(), id, status)
	if err != nil {
		fail(w, "UpdateRepairStatus", err)
		return
	}

	s.publish(r.Context(), events.EventRepairStatusUpdated, repair, ownerAndAdmins(repair.UserID))
	writeJSON(w, http.StatusOK, map[string]any{"repair_request": repair})
}

// deleteRepair lets admins and the owner withdraw a repair request.
func (s *Server) deleteRepair(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slog.Info("DeleteRepair request received", "request_id", id)

	repair, err := s.store.GetRepair(r.Context(), id)
	if err != nil {
		fail(w, "DeleteRepair", err)
		return
	}
	if !visibility.OwnedVisible(repair.UserID, viewer(r)) {
		fail(w, "DeleteRepair", notFoundErr("repair request", id))
		return
	}
	if err := s.store.DeleteRepair(r.Context(), id); err != nil {
		fail(w, "DeleteRepair", err)
		return
	}

	s.publish(r.Context(), events.EventRepairDeleted, map[string]string{"request_id": id}, ownerAndAdmins(repair.UserID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "repair request deleted"})
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	bookings, err := s.store.ListBookings(r.Context(), ownerFilter(v))
	if err != nil {
		fail(w, "ListBookings", err)
		return
	}
	writeJSON(w, http.StatusOK, visibility.OwnedBy(values(bookings), v))
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	booking, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		fail(w, "GetBooking", err)
		return
	}
	if !visibility.OwnedVisible(booking.UserID, viewer(r)) {
		fail(w, "GetBooking", notFoundErr("booking request", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking_request": booking})
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	var in models.BookingInput
	if err := decode(r, &in); err != nil {
		fail(w, "CreateBooking", err)
		return
	}
	slog.Info("CreateBooking request received",
		"user_id", v.ID,
		"location", in.Location,
		"date", in.Date,
	)
	if err := in.Validate(); err != nil {
		fail(w, "CreateBooking", err)
		return
	}

	booking := &models.BookingRequest{
		UserID:        v.ID,
		Location:      in.Location,
		Date:          in.Date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Purpose:       in.Purpose,
		AttendeeCount: in.AttendeeCount,
	}
	if err := s.store.CreateBooking(r.Context(), booking); err != nil {
		fail(w, "CreateBooking", err)
		return
	}

	slog.Info("Booking request created", "booking_id", booking.ID)
	s.publish(r.Context(), events.EventBookingCreated, booking, admins())
	writeJSON(w, http.StatusCreated, map[string]any{"booking_request": booking})
}

func (s *Server) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var in models.StatusInput
	if err := decode(r, &in); err != nil {
		fail(w, "UpdateBookingStatus", err)
		return
	}
	slog.Info("UpdateBookingStatus request received", "booking_id", id, "status", in.Status)

	status, err := models.ParseBookingStatus(in.Status)
	if err != nil {
		fail(w, "UpdateBookingStatus", &models.FieldError{Field: "status", Message: err.Error()})
		return
	}
	booking, err := s.store.UpdateBookingStatus(r.Context(), id, status)
	if err != nil {
		fail(w, "UpdateBookingStatus", err)
		return
	}

	s.publish(r.Context(), events.EventBookingStatusUpdated, booking, ownerAndAdmins(booking.UserID))
	writeJSON(w, http.StatusOK, map[string]any{"booking_request": booking})
}

// deleteBooking lets admins and the owner withdraw a booking request.
func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slog.Info("DeleteBooking request received", "booking_id", id)

	booking, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		fail(w, "DeleteBooking", err)
		return
	}
	if !visibility.OwnedVisible(booking.UserID, viewer(r)) {
		fail(w, "DeleteBooking", notFoundErr("booking request", id))
		return
	}
	if err := s.store.DeleteBooking(r.Context(), id); err != nil {
		fail(w, "DeleteBooking", err)
		return
	}

	s.publish(r.Context(), events.EventBookingDeleted, map[string]string{"booking_id": id}, ownerAndAdmins(booking.UserID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "booking request deleted"})
}
