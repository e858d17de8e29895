package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/storage"
)

const paymentColumns = `id, bill_id, user_id, amount, method, status, slip_path, submitted_at, decided_at`

func scanPayment(row scanner) (*models.Payment, error) {
	p := &models.Payment{}
	var submittedAt int64
	var decidedAt sql.NullInt64
	if err := row.Scan(
		&p.ID,
		&p.BillID,
		&p.UserID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.SlipPath,
		&submittedAt,
		&decidedAt,
	); err != nil {
		return nil, err
	}
	p.SubmittedAt = fromMillis(submittedAt)
	if decidedAt.Valid {
		t := fromMillis(decidedAt.Int64)
		p.DecidedAt = &t
	}
	return p, nil
}

// CreatePayment inserts a Pending payment unless the payer already has an
// open or settled payment for the bill. The check and insert share one
// transaction.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.SubmittedAt.IsZero() {
		payment.SubmittedAt = time.Now().UTC()
	}
	payment.Status = models.PaymentPending
	payment.DecidedAt = nil

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM bills WHERE id = ?`, payment.BillID).Scan(&exists)
	if err != nil {
		return notFound(err, "bill", payment.BillID)
	}

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE bill_id = ? AND user_id = ? AND status IN (?, ?)`,
		payment.BillID, payment.UserID, string(models.PaymentPending), string(models.PaymentPaid),
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("failed to check open payments: %w", err)
	}
	if open > 0 {
		return fmt.Errorf("bill %s already has a pending or paid payment from %s: %w",
			payment.BillID, payment.UserID, storage.ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		payment.ID,
		payment.BillID,
		payment.UserID,
		payment.Amount,
		payment.Method,
		string(payment.Status),
		payment.SlipPath,
		toMillis(payment.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, notFound(err, "payment", id)
	}
	return p, nil
}

// ListPayments returns payments matching filter, oldest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, filter storage.PaymentFilter) ([]*models.Payment, error) {
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.BillID != "" {
		where = append(where, "bill_id = ?")
		args = append(args, filter.BillID)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// DecidePayment moves a Pending payment to Paid or Rejected.
func (s *SQLiteStore) DecidePayment(ctx context.Context, id string, status models.PaymentStatus, at time.Time) (*models.Payment, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("cannot decide payment %s as %q", id, status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
		string(status), toMillis(at), id, string(models.PaymentPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to decide payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check payment update: %w", err)
	}

	current, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("payment %s is already %s: %w", id, current.Status, storage.ErrConflict)
	}
	return current, nil
}
