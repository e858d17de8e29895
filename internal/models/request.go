package models

import (
	"fmt"
	"strings"
	"time"
)

// RepairStatus is the progress of a repair request.
type RepairStatus string

const (
	RepairPending    RepairStatus = "pending"
	RepairInProgress RepairStatus = "in_progress"
	RepairCompleted  RepairStatus = "completed"
	RepairRejected   RepairStatus = "rejected"
)

// ParseRepairStatus validates the wire form of a repair status.
func ParseRepairStatus(s string) (RepairStatus, error) {
	status := RepairStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown repair status %q", s)
	}
	return status, nil
}

func (s RepairStatus) Valid() bool {
	switch s {
	case RepairPending, RepairInProgress, RepairCompleted, RepairRejected:
		return true
	default:
		return false
	}
}

// RepairRequest is a maintenance ticket opened by a resident.
type RepairRequest struct {
	ID          string       `json:"request_id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Status      RepairStatus `json:"status"`
	ImagePaths  []string     `json:"image_paths,omitempty"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

func (r RepairRequest) Key() string { return r.ID }

func (r RepairRequest) Complete() bool {
	return r.ID != "" && r.UserID != "" && r.Title != "" && r.Status.Valid()
}

func (r RepairRequest) OwnerID() string { return r.UserID }

// BookingStatus is the decision state of a booking request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// ParseBookingStatus validates the wire form of a booking status.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown booking status %q", s)
	}
	return status, nil
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected:
		return true
	default:
		return false
	}
}

// BookingRequest reserves a common area (clubhouse, pool, hall) for a time slot.
type BookingRequest struct {
	ID     string `json:"booking_id"`
	UserID string `json:"user_id"`

	Location string `json:"location"`
	Date     Date   `json:"date"`

	// StartTime and EndTime are wall-clock "15:04" strings on Date.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	Purpose       string        `json:"purpose,omitempty"`
	AttendeeCount int           `json:"attendee_count"`
	Status        BookingStatus `json:"status"`
	RequestedAt   time.Time     `json:"requested_at"`
}

func (b BookingRequest) Key() string { return b.ID }

func (b BookingRequest) Complete() bool {
	return b.ID != "" && b.UserID != "" && b.Location != "" && b.Status.Valid()
}

func (b BookingRequest) OwnerID() string { return b.UserID }

// ClockLayout is the layout of booking start and end times.
const ClockLayout = "15:04"

// ValidSlot reports whether start and end parse and start is before end.
func ValidSlot(start, end string) bool {
	s, err := time.Parse(ClockLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(ClockLayout, end)
	if err != nil {
		return false
	}
	return s.Before(e)
}
