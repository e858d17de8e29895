package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

const repairColumns = `id, user_id, title, category, description, status, image_paths, submitted_at`

func scanRepair(row scanner) (*models.RepairRequest, error) {
	r := &models.RepairRequest{}
	var images string
	var submittedAt int64
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Category,
		&r.Description,
		&r.Status,
		&images,
		&submittedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &r.ImagePaths); err != nil {
		return nil, fmt.Errorf("failed to decode image paths: %w", err)
	}
	r.SubmittedAt = fromMillis(submittedAt)
	return r, nil
}

// CreateRepair inserts a new repair request in the pending state.
func (s *SQLiteStore) CreateRepair(ctx context.Context, r *models.RepairRequest) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = models.RepairPending
	}
	images, err := json.Marshal(nonNil(r.ImagePaths))
	if err != nil {
		return fmt.Errorf("failed to encode image paths: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO repair_requests (`+repairColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Title, r.Category, r.Description, string(r.Status), string(images), toMillis(r.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert repair request: %w", err)
	}
	return nil
}

// GetRepair retrieves a repair request by ID.
func (s *SQLiteStore) GetRepair(ctx context.Context, id string) (*models.RepairRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repairColumns+` FROM repair_requests WHERE id = ?`, id)
	r, err := scanRepair(row)
	if err != nil {
		return nil, notFound(err, "repair request", id)
	}
	return r, nil
}

// ListRepairs returns repair requests, newest first, optionally for one owner.
func (s *SQLiteStore) ListRepairs(ctx context.Context, ownerID string) ([]*models.RepairRequest, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_requests`
	var args []any
	if ownerID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY submitted_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair requests: %w", err)
	}
	defer rows.Close()

	out := []*models.RepairRequest{}
	for rows.Next() {
		r, err := scanRepair(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repair request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repair requests: %w", err)
	}
	return out, nil
}

// UpdateRepairStatus sets the status of a repair request.
func (s *SQLiteStore) UpdateRepairStatus(ctx context.Context, id string, status models.RepairStatus) (*models.RepairRequest, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE repair_requests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update repair request: %w", err)
	}
	if err := requireAffected(res, "repair request", id); err != nil {
		return nil, err
	}
	return s.GetRepair(ctx, id)
}

// DeleteRepair removes a repair request.
func (s *SQLiteStore) DeleteRepair(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM repair_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete repair request: %w", err)
	}
	return requireAffected(res, "repair request", id)
}

const bookingColumns = `id, user_id, location, date, start_time, end_time, purpose, attendee_count, status, requested_at`

func scanBooking(row scanner) (*models.BookingRequest, error) {
	b := &models.BookingRequest{}
	var requestedAt int64
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Location,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Purpose,
		&b.AttendeeCount,
		&b.Status,
		&requestedAt,
	); err != nil {
		return nil, err
	}
	b.RequestedAt = fromMillis(requestedAt)
	return b, nil
}

// CreateBooking inserts a new booking request in the pending state.
func (s *SQLiteStore) CreateBooking(ctx context.Context, b *models.BookingRequest) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.RequestedAt.IsZero() {
		b.RequestedAt = time.Now().UTC()
	}
	if b.Status == "" {
		b.Status = models.BookingPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking_requests (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Location, b.Date, b.StartTime, b.EndTime, b.Purpose, b.AttendeeCount,
		string(b.Status), toMillis(b.RequestedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking request: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking request by ID.
func (s *SQLiteStore) GetBooking(ctx context.Context, id string) (*models.BookingRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, notFound(err, "booking request", id)
	}
	return b, nil
}

// ListBookings returns booking requests, newest first, optionally for one owner.
func (s *SQLiteStore) ListBookings(ctx context.Context, ownerID string) ([]*models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests`
	var args []any
	if ownerID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY requested_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	defer rows.Close()

	out := []*models.BookingRequest{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking request: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking requests: %w", err)
	}
	return out, nil
}

// UpdateBookingStatus sets the status of a booking request.
func (s *SQLiteStore) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.BookingRequest, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE booking_requests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking request: %w", err)
	}
	if err := requireAffected(res, "booking request", id); err != nil {
		return nil, err
	}
	return s.GetBooking(ctx, id)
}

// DeleteBooking removes a booking request.
func (s *SQLiteStore) DeleteBooking(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM booking_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking request: %w", err)
	}
	return requireAffected(res, "booking request", id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
