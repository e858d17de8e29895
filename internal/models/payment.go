package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the verification state of a payment.
// Pending moves to Paid or Rejected exactly once; both are terminal.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRejected PaymentStatus = "rejected"
)

// ParsePaymentStatus validates the wire form of a payment status.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown payment status %q", s)
	}
	return status, nil
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentRejected
}

// Payment represents a resident's submitted evidence of settling a bill.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"payment_id"`

	// BillID references the bill being settled.
	BillID string `json:"bill_id"`

	// UserID is the payer. Only the payer creates the payment.
	UserID string `json:"user_id"`

	Amount decimal.Decimal `json:"amount"`

	// Method is how the resident paid (e.g. "promptpay", "bank_transfer").
	Method string        `json:"payment_method"`
	Status PaymentStatus `json:"status"`

	// SlipPath references the uploaded evidence.
	SlipPath string `json:"slip_path,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`

	// DecidedAt is set only when the payment leaves Pending.
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// Key implements cache.Entity.
func (p Payment) Key() string { return p.ID }

// Complete reports whether p carries every field a cached payment needs.
func (p Payment) Complete() bool {
	return p.ID != "" && p.BillID != "" && p.UserID != "" && p.Status.Valid()
}

// OwnerID is the payer.
func (p Payment) OwnerID() string { return p.UserID }
