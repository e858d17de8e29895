package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

func TestBillVisible(t *testing.T) {
	admin := models.Viewer{ID: "admin-1", Role: models.RoleAdmin}
	alice := models.Viewer{ID: "alice", Role: models.RoleResident}
	unknown := models.Viewer{ID: "alice", Role: models.Role(99)}

	tests := []struct {
		name      string
		recipient models.Recipient
		viewer    models.Viewer
		want      bool
	}{
		{"admin sees broadcast bill", models.RecipientAll(), admin, true},
		{"admin sees someone else's bill", models.RecipientUser("bob"), admin, true},
		{"admin sees unaddressed bill", models.Recipient{}, admin, true},
		{"resident sees broadcast bill", models.RecipientAll(), alice, true},
		{"resident sees own bill", models.RecipientUser("alice"), alice, true},
		{"resident does not see other's bill", models.RecipientUser("bob"), alice, false},
		{"resident does not see unaddressed bill", models.Recipient{}, alice, false},
		{"unknown role sees nothing", models.RecipientAll(), unknown, false},
		{"resident without id sees nothing", models.RecipientAll(), models.Viewer{Role: models.RoleResident}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := models.Bill{ID: "b1", ItemName: "Water", Recipient: tt.recipient}
			assert.Equal(t, tt.want, BillVisible(bill, tt.viewer))
		})
	}
}

func TestOwnedVisible(t *testing.T) {
	assert.True(t, OwnedVisible("bob", models.Viewer{ID: "admin", Role: models.RoleAdmin}))
	assert.True(t, OwnedVisible("bob", models.Viewer{ID: "bob", Role: models.RoleResident}))
	assert.False(t, OwnedVisible("bob", models.Viewer{ID: "alice", Role: models.RoleResident}))
	assert.False(t, OwnedVisible("", models.Viewer{Role: models.RoleResident}))
	assert.False(t, OwnedVisible("bob", models.Viewer{ID: "bob"}))
}

func TestBillsPreservesOrder(t *testing.T) {
	alice := models.Viewer{ID: "alice", Role: models.RoleResident}
	bills := []models.Bill{
		{ID: "1", Recipient: models.RecipientUser("bob")},
		{ID: "2", Recipient: models.RecipientAll()},
		{ID: "3", Recipient: models.RecipientUser("alice")},
	}

	got := Bills(bills, alice)
	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)
	assert.Len(t, bills, 3, "input must not be modified")
}

func TestOwnedBy(t *testing.T) {
	repairs := []models.RepairRequest{
		{ID: "r1", UserID: "alice"},
		{ID: "r2", UserID: "bob"},
	}
	got := OwnedBy(repairs, models.Viewer{ID: "bob", Role: models.RoleResident})
	assert.Equal(t, []models.RepairRequest{{ID: "r2", UserID: "bob"}}, got)

	all := OwnedBy(repairs, models.Viewer{ID: "x", Role: models.RoleAdmin})
	assert.Len(t, all, 2)
}
