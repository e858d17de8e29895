package dashboard

import (
	"context"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

// CreateBill issues a bill. Admin only.
func (s *Session) CreateBill(ctx context.Context, in models.BillInput) (models.Bill, error) {
	const op = "Create bill"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return models.Bill{}, s.reject(op, err)
	}
	if err := in.Validate(); err != nil {
		return models.Bill{}, s.reject(op, err)
	}
	raw, err := s.send(ctx, op, http.MethodPost, "/bills", in, s.Bills)
	if err != nil {
		return models.Bill{}, err
	}
	return decodeField[models.Bill](raw, "bill")
}

// UpdateBill edits a bill regardless of its payments. Admin only.
func (s *Session) UpdateBill(ctx context.Context, id string, in models.BillInput) (models.Bill, error) {
	const op = "Update bill"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return models.Bill{}, s.reject(op, err)
	}
	if id == "" {
		return models.Bill{}, s.reject(op, invalid("bill_id", "is required"))
	}
	if err := in.Validate(); err != nil {
		return models.Bill{}, s.reject(op, err)
	}
	raw, err := s.send(ctx, op, http.MethodPut, pathID("/bills", id), in, s.Bills)
	if err != nil {
		return models.Bill{}, err
	}
	return decodeField[models.Bill](raw, "bill")
}

// DeleteBill removes a bill and, on the backend, its payments. Admin only.
func (s *Session) DeleteBill(ctx context.Context, id string) error {
	const op = "Delete bill"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return s.reject(op, err)
	}
	if id == "" {
		return s.reject(op, invalid("bill_id", "is required"))
	}
	_, err := s.send(ctx, op, http.MethodDelete, pathID("/bills", id), nil, s.Bills, s.Payments)
	return err
}

// SubmitPayment sends payment evidence for a bill. Resident only.
//
// It refuses bills the viewer cannot see and bills whose derived status is
// already PendingVerification or Paid, so a second open payment is never
// offered. A zero amount pays the bill's amount.
func (s *Session) SubmitPayment(ctx context.Context, in models.PaymentInput) (models.Payment, error) {
	const op = "Submit payment"
	if err := s.requireRole(models.RoleResident); err != nil {
		return models.Payment{}, s.reject(op, err)
	}
	if err := in.Validate(); err != nil {
		return models.Payment{}, s.reject(op, err)
	}

	bill, ok := s.Bills.Get(in.BillID)
	if !ok || !visibility.BillVisible(bill, s.viewer) {
		return models.Payment{}, s.reject(op, invalid("bill_id", "unknown bill"))
	}
	for _, view := range s.BillViews() {
		if view.ID != bill.ID {
			continue
		}
		switch view.Status {
		case models.StatusPendingVerification:
			return models.Payment{}, s.reject(op, invalid("bill_id", "a payment is already awaiting verification"))
		case models.StatusPaid:
			return models.Payment{}, s.reject(op, invalid("bill_id", "bill is already paid"))
		case models.StatusUnpaid:
		}
	}
	if in.Amount.IsZero() {
		in.Amount = bill.Amount
	}

	raw, err := s.send(ctx, op, http.MethodPost, "/payments", in, s.Payments)
	if err != nil {
		return models.Payment{}, err
	}
	return decodeField[models.Payment](raw, "payment")
}

// ApprovePayment marks a pending payment Paid. Admin only.
func (s *Session) ApprovePayment(ctx context.Context, paymentID string) error {
	return s.decidePayment(ctx, "Approve payment", "/payments/approve", paymentID)
}

// RejectPayment marks a pending payment Rejected, which lets the resident pay
// again. Admin only.
func (s *Session) RejectPayment(ctx context.Context, paymentID string) error {
	return s.decidePayment(ctx, "Reject payment", "/payments/reject", paymentID)
}

func (s *Session) decidePayment(ctx context.Context, op, prefix, paymentID string) error {
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return s.reject(op, err)
	}
	if paymentID == "" {
		return s.reject(op, invalid("payment_id", "is required"))
	}
	_, err := s.send(ctx, op, http.MethodPut, pathID(prefix, paymentID), nil, s.Payments)
	return err
}

// CreateRepairRequest opens a repair ticket. Resident only.
func (s *Session) CreateRepairRequest(ctx context.Context, in models.RepairInput) (models.RepairRequest, error) {
	const op = "Create repair request"
	if err := s.requireRole(models.RoleResident); err != nil {
		return models.RepairRequest{}, s.reject(op, err)
	}
	if err := in.Validate(); err != nil {
		return models.RepairRequest{}, s.reject(op, err)
	}
	raw, err := s.send(ctx, op, http.MethodPost, "/repair-requests", in, s.Repairs)
	if err != nil {
		return models.RepairRequest{}, err
	}
	return decodeField[models.RepairRequest](raw, "repair_request")
}

// UpdateRepairStatus moves a repair ticket along. Admin only.
func (s *Session) UpdateRepairStatus(ctx context.Context, id string, status models.RepairStatus) error {
	const op = "Update repair status"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return s.reject(op, err)
	}
	if id == "" {
		return s.reject(op, invalid("request_id", "is required"))
	}
	if !status.Valid() {
		return s.reject(op, invalid("status", "unknown repair status"))
	}
	_, err := s.send(ctx, op, http.MethodPut, pathID("/repair-requests", id),
		models.StatusInput{Status: string(status)}, s.Repairs)
	return err
}

// CreateBooking requests a common area. Resident only.
func (s *Session) CreateBooking(ctx context.Context, in models.BookingInput) (models.BookingRequest, error) {
	const op = "Create booking"
	if err := s.requireRole(models.RoleResident); err != nil {
		return models.BookingRequest{}, s.reject(op, err)
	}
	if err := in.Validate(); err != nil {
		return models.BookingRequest{}, s.reject(op, err)
	}
	raw, err := s.send(ctx, op, http.MethodPost, "/booking-requests", in, s.Bookings)
	if err != nil {
		return models.BookingRequest{}, err
	}
	return decodeField[models.BookingRequest](raw, "booking_request")
}

// UpdateBookingStatus approves or rejects a booking. Admin only.
func (s *Session) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const op = "Update booking status"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return s.reject(op, err)
	}
	if id == "" {
		return s.reject(op, invalid("booking_id", "is required"))
	}
	if !status.Valid() {
		return s.reject(op, invalid("status", "unknown booking status"))
	}
	_, err := s.send(ctx, op, http.MethodPut, pathID("/booking-requests", id),
		models.StatusInput{Status: string(status)}, s.Bookings)
	return err
}

// CreateAnnouncement publishes a notice. Admin only.
func (s *Session) CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (models.Announcement, error) {
	const op = "Create announcement"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return models.Announcement{}, s.reject(op, err)
	}
	if err := in.Validate(); err != nil {
		return models.Announcement{}, s.reject(op, err)
	}
	raw, err := s.send(ctx, op, http.MethodPost, "/announcements", in, s.Announcements)
	if err != nil {
		return models.Announcement{}, err
	}
	return decodeField[models.Announcement](raw, "announcement")
}

// DeleteAnnouncement removes a notice. Admin only.
func (s *Session) DeleteAnnouncement(ctx context.Context, id string) error {
	const op = "Delete announcement"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return s.reject(op, err)
	}
	if id == "" {
		return s.reject(op, invalid("announcement_id", "is required"))
	}
	_, err := s.send(ctx, op, http.MethodDelete, pathID("/announcements", id), nil, s.Announcements)
	return err
}

// UploadDocument files a document under the viewer's name.
func (s *Session) UploadDocument(ctx context.Context, in models.DocumentInput) (models.Document, error) {
	const op = "Upload document"
	if err := in.Validate(); err != nil {
		return models.Document{}, s.reject(op, err)
	}
	raw, err := s.send(ctx, op, http.MethodPost, "/documents", in, s.Documents)
	if err != nil {
		return models.Document{}, err
	}
	return decodeField[models.Document](raw, "document")
}

// DeleteDocument removes a document the viewer uploaded, or any document
// for admins.
func (s *Session) DeleteDocument(ctx context.Context, id string) error {
	const op = "Delete document"
	if id == "" {
		return s.reject(op, invalid("document_id", "is required"))
	}
	_, err := s.send(ctx, op, http.MethodDelete, pathID("/documents", id), nil, s.Documents)
	return err
}

// UpdateUserStatus approves, rejects or suspends an account. Admin only.
func (s *Session) UpdateUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	const op = "Update user status"
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return s.reject(op, err)
	}
	if id == "" {
		return s.reject(op, invalid("user_id", "is required"))
	}
	if !status.Valid() {
		return s.reject(op, invalid("status", "unknown user status"))
	}
	_, err := s.send(ctx, op, http.MethodPut, pathID("/users", id),
		models.StatusInput{Status: string(status)}, s.Users)
	return err
}
