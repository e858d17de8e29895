package reconciler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

var (
	t0       = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	admin    = models.Viewer{ID: "admin", Role: models.RoleAdmin}
	resident = func(id string) models.Viewer { return models.Viewer{ID: id, Role: models.RoleResident} }
)

func bill(id string, r models.Recipient) models.Bill {
	return models.Bill{
		ID:        id,
		ItemName:  "Common fee",
		Amount:    decimal.NewFromInt(500),
		DueDate:   models.NewDate(2025, time.March, 31),
		Recipient: r,
	}
}

func payment(id, billID, userID string, status models.PaymentStatus, submitted time.Time, decided *time.Time) models.Payment {
	return models.Payment{
		ID:          id,
		BillID:      billID,
		UserID:      userID,
		Amount:      decimal.NewFromInt(500),
		Status:      status,
		SubmittedAt: submitted,
		DecidedAt:   decided,
	}
}

func at(d time.Duration) *time.Time {
	t := t0.Add(d)
	return &t
}

func paymentID(v models.DerivedBillView) string {
	if v.PaymentID == nil {
		return ""
	}
	return *v.PaymentID
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		bills         []models.Bill
		payments      []models.Payment
		viewer        models.Viewer
		wantIDs       []string
		wantStatus    models.EffectiveStatus
		wantPaymentID string
		wantViolation bool
	}{
		{
			name:       "no payments is unpaid",
			bills:      []models.Bill{bill("1", models.RecipientAll())},
			viewer:     resident("7"),
			wantIDs:    []string{"1"},
			wantStatus: models.StatusUnpaid,
		},
		{
			name:          "pending payment is pending verification",
			bills:         []models.Bill{bill("1", models.RecipientAll())},
			payments:      []models.Payment{payment("p1", "1", "7", models.PaymentPending, t0, nil)},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPendingVerification,
			wantPaymentID: "p1",
		},
		{
			name:          "paid payment is paid",
			bills:         []models.Bill{bill("1", models.RecipientAll())},
			payments:      []models.Payment{payment("p1", "1", "7", models.PaymentPaid, t0, at(time.Hour))},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPaid,
			wantPaymentID: "p1",
		},
		{
			name:       "rejected payment reverts to unpaid",
			bills:      []models.Bill{bill("1", models.RecipientAll())},
			payments:   []models.Payment{payment("p1", "1", "7", models.PaymentRejected, t0, at(time.Hour))},
			viewer:     resident("7"),
			wantIDs:    []string{"1"},
			wantStatus: models.StatusUnpaid,
		},
		{
			name:  "resubmission after rejection is pending",
			bills: []models.Bill{bill("1", models.RecipientAll())},
			payments: []models.Payment{
				payment("p1", "1", "7", models.PaymentRejected, t0, at(time.Hour)),
				payment("p2", "1", "7", models.PaymentPending, t0.Add(2*time.Hour), nil),
			},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPendingVerification,
			wantPaymentID: "p2",
		},
		{
			name:       "someone else's paid payment does not count",
			bills:      []models.Bill{bill("1", models.RecipientAll())},
			payments:   []models.Payment{payment("p1", "1", "8", models.PaymentPaid, t0, at(time.Hour))},
			viewer:     resident("7"),
			wantIDs:    []string{"1"},
			wantStatus: models.StatusUnpaid,
		},
		{
			name:  "latest decided paid payment wins",
			bills: []models.Bill{bill("1", models.RecipientAll())},
			payments: []models.Payment{
				payment("p1", "1", "7", models.PaymentPaid, t0, at(3*time.Hour)),
				payment("p2", "1", "7", models.PaymentPaid, t0.Add(time.Hour), at(2*time.Hour)),
			},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPaid,
			wantPaymentID: "p1",
			wantViolation: true,
		},
		{
			name:  "paid wins over pending and the violation is reported",
			bills: []models.Bill{bill("1", models.RecipientAll())},
			payments: []models.Payment{
				payment("p1", "1", "7", models.PaymentPending, t0.Add(5*time.Hour), nil),
				payment("p2", "1", "7", models.PaymentPaid, t0, at(time.Hour)),
			},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPaid,
			wantPaymentID: "p2",
			wantViolation: true,
		},
		{
			name:  "two pending payments pick the latest submitted",
			bills: []models.Bill{bill("1", models.RecipientAll())},
			payments: []models.Payment{
				payment("p1", "1", "7", models.PaymentPending, t0, nil),
				payment("p2", "1", "7", models.PaymentPending, t0.Add(time.Minute), nil),
			},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPendingVerification,
			wantPaymentID: "p2",
			wantViolation: true,
		},
		{
			name:  "identical timestamps break ties by payment id",
			bills: []models.Bill{bill("1", models.RecipientAll())},
			payments: []models.Payment{
				payment("pb", "1", "7", models.PaymentPending, t0, nil),
				payment("pa", "1", "7", models.PaymentPending, t0, nil),
			},
			viewer:        resident("7"),
			wantIDs:       []string{"1"},
			wantStatus:    models.StatusPendingVerification,
			wantPaymentID: "pb",
			wantViolation: true,
		},
		{
			name:       "duplicate bill ids yield one view",
			bills:      []models.Bill{bill("1", models.RecipientAll()), bill("1", models.RecipientAll())},
			viewer:     resident("7"),
			wantIDs:    []string{"1"},
			wantStatus: models.StatusUnpaid,
		},
		{
			name:       "scenario B: bill for another resident is omitted",
			bills:      []models.Bill{bill("1", models.RecipientUser("7"))},
			viewer:     resident("9"),
			wantIDs:    []string{},
			wantStatus: models.StatusUnpaid,
		},
		{
			name:       "admin sees every bill",
			bills:      []models.Bill{bill("1", models.RecipientUser("7")), bill("2", models.RecipientAll())},
			viewer:     admin,
			wantIDs:    []string{"1", "2"},
			wantStatus: models.StatusUnpaid,
		},
		{
			name:       "unknown role sees nothing",
			bills:      []models.Bill{bill("1", models.RecipientAll())},
			viewer:     models.Viewer{ID: "7", Role: models.Role(42)},
			wantIDs:    []string{},
			wantStatus: models.StatusUnpaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := Reconcile(tt.bills, tt.payments, tt.viewer)

			ids := make([]string, 0, len(views))
			for _, v := range views {
				ids = append(ids, v.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
			if len(views) == 0 {
				return
			}

			got := views[0]
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantPaymentID, paymentID(got))
			assert.Equal(t, tt.wantViolation, len(got.Violations) > 0, "violations: %v", got.Violations)
		})
	}
}

// A resident submits a payment, an admin approves it.
func TestReconcilePaymentLifecycle(t *testing.T) {
	bills := []models.Bill{bill("1", models.RecipientAll())}
	payments := []models.Payment{payment("p1", "1", "7", models.PaymentPending, t0, nil)}

	views := Reconcile(bills, payments, resident("7"))
	require.Len(t, views, 1)
	assert.Equal(t, models.StatusPendingVerification, views[0].Status)

	payments[0].Status = models.PaymentPaid
	payments[0].DecidedAt = at(time.Hour)

	views = Reconcile(bills, payments, resident("7"))
	require.Len(t, views, 1)
	assert.Equal(t, models.StatusPaid, views[0].Status)
	assert.Equal(t, "p1", paymentID(views[0]))
}

func TestReconcileDoesNotModifyInputs(t *testing.T) {
	bills := []models.Bill{bill("2", models.RecipientAll()), bill("1", models.RecipientUser("9"))}
	payments := []models.Payment{
		payment("p2", "2", "7", models.PaymentPending, t0.Add(time.Hour), nil),
		payment("p1", "2", "7", models.PaymentPending, t0, nil),
	}
	billsCopy := append([]models.Bill(nil), bills...)
	paymentsCopy := append([]models.Payment(nil), payments...)

	first := Reconcile(bills, payments, resident("7"))
	second := Reconcile(bills, payments, resident("7"))

	assert.Equal(t, billsCopy, bills)
	assert.Equal(t, paymentsCopy, payments)
	assert.Equal(t, first, second)
}

// Paid is reported exactly when the viewer owns a Paid payment for the bill.
func TestReconcilePaidIffPaidPaymentExists(t *testing.T) {
	statuses := []models.PaymentStatus{models.PaymentPending, models.PaymentPaid, models.PaymentRejected}
	bills := []models.Bill{bill("1", models.RecipientAll())}

	// Every combination of up to two payments for viewer 7 and one for viewer 8.
	for _, a := range append(statuses, "") {
		for _, b := range append(statuses, "") {
			for _, other := range append(statuses, "") {
				var payments []models.Payment
				if a != "" {
					payments = append(payments, payment("a", "1", "7", a, t0, at(time.Hour)))
				}
				if b != "" {
					payments = append(payments, payment("b", "1", "7", b, t0.Add(time.Minute), at(2*time.Hour)))
				}
				if other != "" {
					payments = append(payments, payment("o", "1", "8", other, t0, at(time.Hour)))
				}

				views := Reconcile(bills, payments, resident("7"))
				require.Len(t, views, 1)

				wantPaid := a == models.PaymentPaid || b == models.PaymentPaid
				wantPending := !wantPaid && (a == models.PaymentPending || b == models.PaymentPending)
				assert.Equal(t, wantPaid, views[0].Status == models.StatusPaid, "a=%s b=%s other=%s", a, b, other)
				assert.Equal(t, wantPending, views[0].Status == models.StatusPendingVerification, "a=%s b=%s other=%s", a, b, other)
			}
		}
	}
}
