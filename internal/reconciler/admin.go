package reconciler

import (
	"github.com/shopspring/decimal"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// PayerStatus is one payer's derived status on a bill.
type PayerStatus struct {
	UserID    string                 `json:"user_id"`
	Status    models.EffectiveStatus `json:"status"`
	PaymentID *string                `json:"payment_id"`
	Amount    decimal.Decimal        `json:"amount"`
}

// BillSettlement aggregates every payer of one bill for admin dashboards.
type BillSettlement struct {
	Bill   models.Bill            `json:"bill"`
	Status models.EffectiveStatus `json:"status"`

	// Payers holds everyone who is expected to pay or has submitted a payment,
	// sorted by user id.
	Payers []PayerStatus `json:"payers"`

	// Collected is the sum of the Paid payments used for each payer's status.
	Collected decimal.Decimal `json:"collected"`

	PendingPaymentIDs []string `json:"pending_payment_ids,omitempty"`

	// Outstanding lists expected payers with no pending or paid payment.
	Outstanding []string `json:"outstanding,omitempty"`

	Violations []string `json:"violations,omitempty"`
}

// ReconcileForAdmin aggregates the payments of all payers per bill.
//
// Expected payers are the addressed user, or every approved resident for bills
// sent to all. A bill is PendingVerification while any payment awaits a
// decision, Paid once every expected payer has paid, and Unpaid otherwise.
// Bills are returned in input order with duplicate ids dropped.
func ReconcileForAdmin(bills []models.Bill, payments []models.Payment, residents []models.User) []BillSettlement {
	var approved []string
	for _, u := range residents {
		if u.Role == models.RoleResident && u.Status == models.UserApproved {
			approved = append(approved, u.ID)
		}
	}

	// byBill[billID][userID] = payments
	byBill := make(map[string]map[string][]models.Payment)
	for _, p := range payments {
		if byBill[p.BillID] == nil {
			byBill[p.BillID] = make(map[string][]models.Payment)
		}
		byBill[p.BillID][p.UserID] = append(byBill[p.BillID][p.UserID], p)
	}

	seen := make(map[string]bool, len(bills))
	out := make([]BillSettlement, 0, len(bills))
	for _, bill := range bills {
		if seen[bill.ID] {
			continue
		}
		seen[bill.ID] = true
		out = append(out, settle(bill, byBill[bill.ID], expectedPayers(bill, approved)))
	}
	return out
}

func expectedPayers(bill models.Bill, approved []string) []string {
	switch {
	case bill.Recipient.IsAll():
		return approved
	case bill.Recipient.UserID() != "":
		return []string{bill.Recipient.UserID()}
	default:
		return nil
	}
}

func settle(bill models.Bill, byUser map[string][]models.Payment, expected []string) BillSettlement {
	s := BillSettlement{Bill: bill, Collected: decimal.Zero}

	payers := make(map[string][]models.Payment, len(byUser)+len(expected))
	for _, id := range expected {
		payers[id] = nil
	}
	for id, ps := range byUser {
		payers[id] = ps
	}

	expectedSet := make(map[string]bool, len(expected))
	for _, id := range expected {
		expectedSet[id] = true
	}

	for _, userID := range sortedKeys(payers) {
		view := derive(bill, payers[userID])
		ps := PayerStatus{UserID: userID, Status: view.Status, PaymentID: view.PaymentID}
		sum := summarize(payers[userID])
		switch view.Status {
		case models.StatusPaid:
			ps.Amount = sum.paid.Amount
			s.Collected = s.Collected.Add(sum.paid.Amount)
		case models.StatusPendingVerification:
			ps.Amount = sum.pending.Amount
			s.PendingPaymentIDs = append(s.PendingPaymentIDs, sum.pending.ID)
		case models.StatusUnpaid:
			if expectedSet[userID] {
				s.Outstanding = append(s.Outstanding, userID)
			}
		}
		s.Payers = append(s.Payers, ps)
		s.Violations = append(s.Violations, view.Violations...)
	}

	switch {
	case len(s.PendingPaymentIDs) > 0:
		s.Status = models.StatusPendingVerification
	case len(expected) > 0 && len(s.Outstanding) == 0:
		s.Status = models.StatusPaid
	default:
		s.Status = models.StatusUnpaid
	}
	return s
}
