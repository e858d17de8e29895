package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/storage"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

var errResidentOnly = errors.New("only residents submit payments")

// listPayments returns the caller's payments. Admins see every payment and
// may narrow the list with the user_id and bill_id query parameters.
func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	filter := storage.PaymentFilter{
		UserID: r.URL.Query().Get("user_id"),
		BillID: r.URL.Query().Get("bill_id"),
	}
	if !visibility.IsAdmin(v) {
		filter.UserID = v.ID
	}

	payments, err := s.store.ListPayments(r.Context(), filter)
	if err != nil {
		fail(w, "ListPayments", err)
		return
	}
	writeJSON(w, http.StatusOK, visibility.OwnedBy(values(payments), v))
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		fail(w, "GetPayment", err)
		return
	}
	if !visibility.OwnedVisible(payment.UserID, viewer(r)) {
		fail(w, "GetPayment", notFoundErr("payment", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment": payment})
}

// createPayment records a Pending payment by the caller. A second open
// payment for the same bill is refused with 409.
func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	if v.Role != models.RoleResident {
		writeError(w, http.StatusForbidden, errResidentOnly)
		return
	}
	var in models.PaymentInput
	if err := decode(r, &in); err != nil {
		fail(w, "CreatePayment", err)
		return
	}
	slog.Info("CreatePayment request received",
		"bill_id", in.BillID,
		"user_id", v.ID,
		"amount", in.Amount,
	)
	if err := in.Validate(); err != nil {
		fail(w, "CreatePayment", err)
		return
	}

	bill, err := s.store.GetBill(r.Context(), in.BillID)
	if err != nil {
		fail(w, "CreatePayment", err)
		return
	}
	if !visibility.BillVisible(*bill, v) {
		fail(w, "CreatePayment", notFoundErr("bill", in.BillID))
		return
	}
	if in.Amount.IsZero() {
		in.Amount = bill.Amount
	}

	payment := &models.Payment{
		BillID:   bill.ID,
		UserID:   v.ID,
		Amount:   in.Amount,
		Method:   in.Method,
		SlipPath: in.SlipPath,
	}
	if err := s.store.CreatePayment(r.Context(), payment); err != nil {
		fail(w, "CreatePayment", err)
		return
	}

	slog.Info("Payment submitted", "payment_id", payment.ID, "bill_id", bill.ID)
	s.publish(r.Context(), events.EventPaymentReceipt, payment, admins())
	writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
}

func (s *Server) approvePayment(w http.ResponseWriter, r *http.Request) {
	s.decidePayment(w, r, models.PaymentPaid, events.EventPaymentApproved)
}

func (s *Server) rejectPayment(w http.ResponseWriter, r *http.Request) {
	s.decidePayment(w, r, models.PaymentRejected, events.EventPaymentRejected)
}

// decidePayment moves a Pending payment to a terminal status. Deciding an
// already decided payment yields 409.
func (s *Server) decidePayment(w http.ResponseWriter, r *http.Request, status models.PaymentStatus, eventType string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	slog.Info("DecidePayment request received", "payment_id", id, "status", status)

	payment, err := s.store.DecidePayment(r.Context(), id, status, s.now())
	if err != nil {
		fail(w, "DecidePayment", err)
		return
	}

	slog.Info("Payment decided", "payment_id", payment.ID, "status", payment.Status)
	s.publish(r.Context(), eventType, payment, ownerAndAdmins(payment.UserID))
	writeJSON(w, http.StatusOK, map[string]any{"payment": payment})
}
