package service

import (
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

// listBills returns the bills visible to the caller.
func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListBills(r.Context())
	if err != nil {
		fail(w, "ListBills", err)
		return
	}
	writeJSON(w, http.StatusOK, visibility.Bills(values(bills), viewer(r)))
}

func (s *Server) getBill(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bill, err := s.store.GetBill(r.Context(), id)
	if err != nil {
		fail(w, "GetBill", err)
		return
	}
	if !visibility.BillVisible(*bill, viewer(r)) {
		fail(w, "GetBill", notFoundErr("bill", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bill": bill})
}

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	v, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var in models.BillInput
	if err := decode(r, &in); err != nil {
		fail(w, "CreateBill", err)
		return
	}
	slog.Info("CreateBill request received",
		"item_name", in.ItemName,
		"amount", in.Amount,
		"recipient_id", in.Recipient,
	)
	if err := in.Validate(); err != nil {
		fail(w, "CreateBill", err)
		return
	}

	bill := &models.Bill{
		ItemName:  in.ItemName,
		Amount:    in.Amount,
		DueDate:   in.DueDate,
		Recipient: in.Recipient,
		IssuedBy:  v.ID,
	}
	if err := s.store.CreateBill(r.Context(), bill); err != nil {
		fail(w, "CreateBill", err)
		return
	}

	slog.Info("Bill created", "bill_id", bill.ID)
	s.publish(r.Context(), events.EventBillCreated, bill, broadcast())
	writeJSON(w, http.StatusCreated, map[string]any{"bill": bill})
}

// updateBill edits a bill whatever the state of its payments.
func (s *Server) updateBill(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var in models.BillInput
	if err := decode(r, &in); err != nil {
		fail(w, "UpdateBill", err)
		return
	}
	slog.Info("UpdateBill request received", "bill_id", id)
	if err := in.Validate(); err != nil {
		fail(w, "UpdateBill", err)
		return
	}

	bill, err := s.store.GetBill(r.Context(), id)
	if err != nil {
		fail(w, "UpdateBill", err)
		return
	}
	bill.ItemName = in.ItemName
	bill.Amount = in.Amount
	bill.DueDate = in.DueDate
	bill.Recipient = in.Recipient

	if err := s.store.UpdateBill(r.Context(), bill); err != nil {
		fail(w, "UpdateBill", err)
		return
	}

	slog.Info("Bill updated", "bill_id", bill.ID)
	s.publish(r.Context(), events.EventBillUpdated, bill, broadcast())
	writeJSON(w, http.StatusOK, map[string]any{"bill": bill})
}

// deleteBill removes a bill together with its payments.
func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	slog.Info("DeleteBill request received", "bill_id", id)

	if err := s.store.DeleteBill(r.Context(), id); err != nil {
		fail(w, "DeleteBill", err)
		return
	}

	s.publish(r.Context(), events.EventBillDeleted, map[string]string{"bill_id": id}, broadcast())
	writeJSON(w, http.StatusOK, map[string]string{"message": "bill deleted"})
}
