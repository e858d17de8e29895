package reconciler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

func residentUser(id string, status models.UserStatus) models.User {
	return models.User{ID: id, Username: id, Role: models.RoleResident, Status: status}
}

func TestReconcileForAdmin(t *testing.T) {
	users := []models.User{
		residentUser("7", models.UserApproved),
		residentUser("8", models.UserApproved),
		residentUser("9", models.UserPending),
		{ID: "admin", Username: "admin", Role: models.RoleAdmin, Status: models.UserApproved},
	}

	t.Run("bill to all tracks every approved resident", func(t *testing.T) {
		bills := []models.Bill{bill("1", models.RecipientAll())}
		payments := []models.Payment{
			payment("p1", "1", "7", models.PaymentPaid, t0, at(time.Hour)),
			payment("p2", "1", "8", models.PaymentRejected, t0, at(time.Hour)),
		}

		got := ReconcileForAdmin(bills, payments, users)
		require.Len(t, got, 1)
		s := got[0]
		assert.Equal(t, models.StatusUnpaid, s.Status)
		assert.Equal(t, []string{"8"}, s.Outstanding)
		assert.True(t, s.Collected.Equal(decimal.NewFromInt(500)), "collected = %s", s.Collected)
		require.Len(t, s.Payers, 2)
		assert.Equal(t, "7", s.Payers[0].UserID)
		assert.Equal(t, models.StatusPaid, s.Payers[0].Status)
		assert.Equal(t, "8", s.Payers[1].UserID)
		assert.Equal(t, models.StatusUnpaid, s.Payers[1].Status)
	})

	t.Run("pending payment marks the bill pending", func(t *testing.T) {
		bills := []models.Bill{bill("1", models.RecipientUser("7"))}
		payments := []models.Payment{payment("p1", "1", "7", models.PaymentPending, t0, nil)}

		got := ReconcileForAdmin(bills, payments, users)
		require.Len(t, got, 1)
		assert.Equal(t, models.StatusPendingVerification, got[0].Status)
		assert.Equal(t, []string{"p1"}, got[0].PendingPaymentIDs)
		assert.Empty(t, got[0].Outstanding)
	})

	t.Run("fully paid bill", func(t *testing.T) {
		bills := []models.Bill{bill("1", models.RecipientAll())}
		payments := []models.Payment{
			payment("p1", "1", "7", models.PaymentPaid, t0, at(time.Hour)),
			payment("p2", "1", "8", models.PaymentPaid, t0, at(time.Hour)),
		}

		got := ReconcileForAdmin(bills, payments, users)
		require.Len(t, got, 1)
		assert.Equal(t, models.StatusPaid, got[0].Status)
		assert.True(t, got[0].Collected.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("violations surface per payer", func(t *testing.T) {
		bills := []models.Bill{bill("1", models.RecipientUser("7")), bill("1", models.RecipientUser("7"))}
		payments := []models.Payment{
			payment("p1", "1", "7", models.PaymentPending, t0, nil),
			payment("p2", "1", "7", models.PaymentPending, t0.Add(time.Minute), nil),
		}

		got := ReconcileForAdmin(bills, payments, users)
		require.Len(t, got, 1, "duplicate bill ids collapse")
		assert.NotEmpty(t, got[0].Violations)
		assert.Equal(t, []string{"p2"}, got[0].PendingPaymentIDs)
	})

	t.Run("bill with no expected payers stays unpaid", func(t *testing.T) {
		got := ReconcileForAdmin([]models.Bill{bill("1", models.RecipientAll())}, nil, nil)
		require.Len(t, got, 1)
		assert.Equal(t, models.StatusUnpaid, got[0].Status)
		assert.Empty(t, got[0].Payers)
	})
}
