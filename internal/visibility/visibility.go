// Package visibility decides which records a viewer may see.
//
// Every decision switches over the closed set of roles. A viewer whose role
// is not one of the declared roles sees nothing.
package visibility

import "github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"

// Owned is a record that belongs to exactly one user.
type Owned interface {
	OwnerID() string
}

// IsAdmin reports whether v holds the admin role.
func IsAdmin(v models.Viewer) bool {
	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleResident:
		return false
	default:
		return false
	}
}

// BillVisible reports whether b is visible to v.
// Residents see bills addressed to everyone or to themselves.
func BillVisible(b models.Bill, v models.Viewer) bool {
	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleResident:
		if v.ID == "" {
			return false
		}
		return b.Recipient.IsAll() || b.Recipient.UserID() == v.ID
	default:
		return false
	}
}

// OwnedVisible reports whether a record owned by ownerID is visible to v.
func OwnedVisible(ownerID string, v models.Viewer) bool {
	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleResident:
		return v.ID != "" && ownerID == v.ID
	default:
		return false
	}
}

// Filter returns the elements of items for which keep reports true, in order.
// The result never aliases items.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Bills returns the bills visible to v.
func Bills(bills []models.Bill, v models.Viewer) []models.Bill {
	return Filter(bills, func(b models.Bill) bool { return BillVisible(b, v) })
}

// OwnedBy returns the records of items visible to v by ownership.
func OwnedBy[T Owned](items []T, v models.Viewer) []T {
	return Filter(items, func(item T) bool { return OwnedVisible(item.OwnerID(), v) })
}
