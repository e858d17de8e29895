package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/reconciler"
)

func TestBillViews(t *testing.T) {
	pid := "p1"
	views := []models.DerivedBillView{
		{
			Bill: models.Bill{
				ID:        "1",
				ItemName:  "Common fee",
				Amount:    decimal.NewFromInt(500),
				DueDate:   models.NewDate(2025, 3, 31),
				Recipient: models.RecipientAll(),
			},
			Status:     models.StatusPendingVerification,
			PaymentID:  &pid,
			Violations: []string{"bill 1: user 7 has 2 pending payments"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, BillViews(&buf, views))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BILL"))
	assert.Contains(t, lines[1], "500.00")
	assert.Contains(t, lines[1], "2025-03-31")
	assert.Contains(t, lines[1], "PENDING VERIFICATION")
	assert.Contains(t, lines[1], "p1")
	assert.Equal(t, "! bill 1: user 7 has 2 pending payments", lines[2])
}

func TestSettlements(t *testing.T) {
	var buf bytes.Buffer
	err := Settlements(&buf, []reconciler.BillSettlement{{
		Bill:        models.Bill{ID: "1", ItemName: "Water", Amount: decimal.NewFromInt(100)},
		Status:      models.StatusUnpaid,
		Collected:   decimal.NewFromInt(100),
		Outstanding: []string{"8", "9"},
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "8,9")
	assert.Contains(t, buf.String(), "UNPAID")
}
