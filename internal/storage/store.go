// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would break a uniqueness or state
	// rule, such as a second open payment for the same bill and payer.
	ErrConflict = errors.New("conflicting record state")
)

// PaymentFilter narrows ListPayments. Empty fields match everything.
type PaymentFilter struct {
	UserID string
	BillID string
}

// Store defines the interface for village storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	BillStore
	PaymentStore
	RequestStore
	AnnouncementStore
	DocumentStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser saves profile, role and status fields. The password hash is
	// left unchanged.
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// BillStore persists bills.
type BillStore interface {
	// CreateBill persists a new bill. bill.ID and bill.IssuedAt are populated
	// by the store when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	ListBills(ctx context.Context) ([]*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes the bill and its payments.
	DeleteBill(ctx context.Context, id string) error
}

// PaymentStore persists payments.
type PaymentStore interface {
	// CreatePayment persists a new Pending payment. It returns ErrConflict when
	// the payer already has a Pending or Paid payment for the bill, and
	// ErrNotFound when the bill does not exist.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*models.Payment, error)

	// DecidePayment moves a Pending payment to status (Paid or Rejected) and
	// stamps decided_at. A payment that already left Pending yields ErrConflict.
	DecidePayment(ctx context.Context, id string, status models.PaymentStatus, at time.Time) (*models.Payment, error)
}

// RequestStore persists repair and booking requests. An empty ownerID lists
// every owner's requests.
type RequestStore interface {
	CreateRepair(ctx context.Context, r *models.RepairRequest) error
	GetRepair(ctx context.Context, id string) (*models.RepairRequest, error)
	ListRepairs(ctx context.Context, ownerID string) ([]*models.RepairRequest, error)
	UpdateRepairStatus(ctx context.Context, id string, status models.RepairStatus) (*models.RepairRequest, error)
	DeleteRepair(ctx context.Context, id string) error

	CreateBooking(ctx context.Context, b *models.BookingRequest) error
	GetBooking(ctx context.Context, id string) (*models.BookingRequest, error)
	ListBookings(ctx context.Context, ownerID string) ([]*models.BookingRequest, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.BookingRequest, error)
	DeleteBooking(ctx context.Context, id string) error
}

// AnnouncementStore persists announcements.
type AnnouncementStore interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]*models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, a *models.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error
}

// DocumentStore persists uploaded documents. An empty ownerID lists every
// uploader's documents.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}
