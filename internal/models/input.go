package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldError reports one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func fieldErr(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// BillInput is the body of bill create and update requests.
type BillInput struct {
	ItemName  string          `json:"item_name"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   Date            `json:"due_date"`
	Recipient Recipient       `json:"recipient_id"`
}

func (in BillInput) Validate() error {
	switch {
	case blank(in.ItemName):
		return fieldErr("item_name", "is required")
	case !in.Amount.IsPositive():
		return fieldErr("amount", "must be greater than zero")
	case in.DueDate.IsZero():
		return fieldErr("due_date", "is required")
	case !in.Recipient.Valid():
		return fieldErr("recipient_id", "is required")
	}
	return nil
}

// PaymentInput is the body of a payment submission. A zero Amount means the
// bill's amount.
type PaymentInput struct {
	BillID   string          `json:"bill_id"`
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"payment_method"`
	SlipPath string          `json:"slip_path,omitempty"`
}

func (in PaymentInput) Validate() error {
	switch {
	case blank(in.BillID):
		return fieldErr("bill_id", "is required")
	case in.Amount.IsNegative():
		return fieldErr("amount", "must not be negative")
	case blank(in.Method):
		return fieldErr("payment_method", "is required")
	}
	return nil
}

// RepairInput is the body of a repair request.
type RepairInput struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	ImagePaths  []string `json:"image_paths,omitempty"`
}

func (in RepairInput) Validate() error {
	switch {
	case blank(in.Title):
		return fieldErr("title", "is required")
	case blank(in.Category):
		return fieldErr("category", "is required")
	case blank(in.Description):
		return fieldErr("description", "is required")
	}
	return nil
}

// BookingInput is the body of a booking request.
type BookingInput struct {
	Location      string `json:"location"`
	Date          Date   `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Purpose       string `json:"purpose,omitempty"`
	AttendeeCount int    `json:"attendee_count"`
}

func (in BookingInput) Validate() error {
	switch {
	case blank(in.Location):
		return fieldErr("location", "is required")
	case in.Date.IsZero():
		return fieldErr("date", "is required")
	case !ValidSlot(in.StartTime, in.EndTime):
		return fieldErr("start_time", "must be HH:MM and before end_time")
	case in.AttendeeCount < 1:
		return fieldErr("attendee_count", "must be at least 1")
	}
	return nil
}

// AnnouncementInput is the body of an announcement.
type AnnouncementInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag,omitempty"`
}

func (in AnnouncementInput) Validate() error {
	switch {
	case blank(in.Title):
		return fieldErr("title", "is required")
	case blank(in.Content):
		return fieldErr("content", "is required")
	}
	return nil
}

// DocumentInput is the body of a document upload. The uploader is always
// the caller.
type DocumentInput struct {
	Name     string `json:"document_name"`
	FilePath string `json:"file_path"`
}

func (in DocumentInput) Validate() error {
	switch {
	case blank(in.Name):
		return fieldErr("document_name", "is required")
	case blank(in.FilePath):
		return fieldErr("file_path", "is required")
	}
	return nil
}

// StatusInput is the body of status changes for users, repairs and bookings.
type StatusInput struct {
	Status string `json:"status"`
}

// RegisterInput is the body of an account registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

func (in RegisterInput) Validate() error {
	switch {
	case blank(in.Name):
		return fieldErr("name", "is required")
	case blank(in.Username):
		return fieldErr("username", "is required")
	case len(in.Password) < 8:
		return fieldErr("password", "must be at least 8 characters")
	}
	return nil
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
