// Package reconciler joins bills and payments into per-viewer settlement views.
//
// Everything here is pure: inputs are never modified, and the same inputs always
// produce the same output.
package reconciler

import (
	"fmt"
	"sort"
	"time"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

// Reconcile derives one view per bill visible to viewer.
//
// Algorithm:
// - Filter bills by visibility; duplicate bill ids keep their first occurrence
// - Select the viewer's own payments for each bill
// - Any Paid payment: status Paid, payment id of the latest decided_at
// - Else any Pending payment: status PendingVerification, latest submitted_at
// - Else Unpaid with no payment id
//
// Rejected payments never influence the status. Payments that break the
// one-open-payment rule are reported in the view's Violations.
func Reconcile(bills []models.Bill, payments []models.Payment, viewer models.Viewer) []models.DerivedBillView {
	visible := visibility.Bills(bills, viewer)

	// byBill[billID] = the viewer's payments for that bill
	byBill := make(map[string][]models.Payment)
	for _, p := range payments {
		if p.UserID != viewer.ID {
			continue
		}
		byBill[p.BillID] = append(byBill[p.BillID], p)
	}

	seen := make(map[string]bool, len(visible))
	views := make([]models.DerivedBillView, 0, len(visible))
	for _, bill := range visible {
		if seen[bill.ID] {
			continue
		}
		seen[bill.ID] = true
		views = append(views, derive(bill, byBill[bill.ID]))
	}
	return views
}

// derive computes the view of bill from one payer's payments.
func derive(bill models.Bill, payments []models.Payment) models.DerivedBillView {
	view := models.DerivedBillView{Bill: bill, Status: models.StatusUnpaid}

	s := summarize(payments)
	switch {
	case s.paid != nil:
		view.Status = models.StatusPaid
		view.PaymentID = ptr(s.paid.ID)
	case s.pending != nil:
		view.Status = models.StatusPendingVerification
		view.PaymentID = ptr(s.pending.ID)
	}
	view.Violations = s.violations(bill.ID)
	return view
}

// summary is the outcome of one payer's payments on one bill.
type summary struct {
	paid, pending           *models.Payment
	paidCount, pendingCount int
	payerID                 string
}

func summarize(payments []models.Payment) summary {
	var s summary
	for i := range payments {
		p := &payments[i]
		s.payerID = p.UserID
		switch p.Status {
		case models.PaymentPaid:
			s.paidCount++
			if s.paid == nil || laterDecision(p, s.paid) {
				s.paid = p
			}
		case models.PaymentPending:
			s.pendingCount++
			if s.pending == nil || laterSubmission(p, s.pending) {
				s.pending = p
			}
		case models.PaymentRejected:
		default:
		}
	}
	return s
}

func (s summary) violations(billID string) []string {
	var out []string
	if s.pendingCount > 1 {
		out = append(out, fmt.Sprintf("bill %s: user %s has %d pending payments", billID, s.payerID, s.pendingCount))
	}
	if s.pendingCount > 0 && s.paidCount > 0 {
		out = append(out, fmt.Sprintf("bill %s: user %s has a pending payment next to a paid one", billID, s.payerID))
	}
	if s.paidCount > 1 {
		out = append(out, fmt.Sprintf("bill %s: user %s has %d paid payments", billID, s.payerID, s.paidCount))
	}
	return out
}

// laterDecision orders Paid payments by decided_at, then submitted_at, then id.
func laterDecision(a, b *models.Payment) bool {
	ad, bd := decidedAt(a), decidedAt(b)
	if !ad.Equal(bd) {
		return ad.After(bd)
	}
	return laterSubmission(a, b)
}

// laterSubmission orders payments by submitted_at, then id.
func laterSubmission(a, b *models.Payment) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	return a.ID > b.ID
}

func decidedAt(p *models.Payment) time.Time {
	if p.DecidedAt == nil {
		return time.Time{}
	}
	return *p.DecidedAt
}

func ptr(s string) *string { return &s }

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
