package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// recipientAll is the wire form of a bill issued to every resident.
const recipientAll = "all"

// Recipient is either every resident or exactly one user.
// The zero value addresses nobody; only admins see such a bill.
type Recipient struct {
	all    bool
	userID string
}

// RecipientAll addresses a bill to every resident.
func RecipientAll() Recipient { return Recipient{all: true} }

// RecipientUser addresses a bill to a single user.
func RecipientUser(userID string) Recipient { return Recipient{userID: userID} }

// ParseRecipient parses "all" or a user id.
func ParseRecipient(s string) (Recipient, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Recipient{}, fmt.Errorf("recipient is required")
	case strings.EqualFold(s, recipientAll):
		return RecipientAll(), nil
	default:
		return RecipientUser(s), nil
	}
}

// IsAll reports whether the bill goes to every resident.
func (r Recipient) IsAll() bool { return r.all }

// UserID returns the single addressed user, or "" for RecipientAll.
func (r Recipient) UserID() string { return r.userID }

// Valid reports whether r addresses someone.
func (r Recipient) Valid() bool { return r.all || r.userID != "" }

func (r Recipient) String() string {
	if r.all {
		return recipientAll
	}
	return r.userID
}

func (r Recipient) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("recipient must be a string: %w", err)
	}
	if s == "" {
		*r = Recipient{}
		return nil
	}
	parsed, err := ParseRecipient(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the recipient as text.
func (r Recipient) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot store empty recipient")
	}
	return r.String(), nil
}

// Scan reads a recipient stored as text.
func (r *Recipient) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseRecipient(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		return r.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Recipient", src)
	}
}

// Bill represents a charge issued by an admin.
// Bills are created, edited and deleted only by admins, independent of payment state.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"bill_id"`

	// ItemName describes what the bill is for (e.g. "Common fee, March").
	ItemName string `json:"item_name"`

	Amount  decimal.Decimal `json:"amount"`
	DueDate Date            `json:"due_date"`

	// Recipient is every resident or one user id.
	Recipient Recipient `json:"recipient_id"`

	// IssuedBy is the admin user id that created the bill.
	IssuedBy string    `json:"issued_by_user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// Key implements cache.Entity.
func (b Bill) Key() string { return b.ID }

// Complete reports whether b carries every field a cached bill needs.
func (b Bill) Complete() bool {
	return b.ID != "" && b.ItemName != "" && b.Recipient.Valid() && !b.DueDate.IsZero()
}

// EffectiveStatus is the settlement state of a bill for one viewer.
type EffectiveStatus string

const (
	StatusUnpaid              EffectiveStatus = "unpaid"
	StatusPendingVerification EffectiveStatus = "pending_verification"
	StatusPaid                EffectiveStatus = "paid"
)

// DerivedBillView is a bill joined with the viewer's payments.
// It is recomputed on demand and never mutated in place.
type DerivedBillView struct {
	Bill

	Status EffectiveStatus `json:"status"`

	// PaymentID is the payment the status was derived from, nil when Unpaid.
	PaymentID *string `json:"payment_id"`

	// Violations lists payment records that break the one-pending-payment rule.
	Violations []string `json:"violations,omitempty"`
}
