package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

const billColumns = `id, item_name, amount, due_date, recipient, issued_by, issued_at`

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var issuedAt int64
	if err := row.Scan(
		&bill.ID,
		&bill.ItemName,
		&bill.Amount,
		&bill.DueDate,
		&bill.Recipient,
		&bill.IssuedBy,
		&issuedAt,
	); err != nil {
		return nil, err
	}
	bill.IssuedAt = fromMillis(issuedAt)
	return bill, nil
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.IssuedAt.IsZero() {
		bill.IssuedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.ItemName,
		bill.Amount,
		bill.DueDate,
		bill.Recipient,
		bill.IssuedBy,
		toMillis(bill.IssuedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	bill, err := scanBill(row)
	if err != nil {
		return nil, notFound(err, "bill", id)
	}
	return bill, nil
}

// ListBills returns every bill, newest first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+billColumns+` FROM bills ORDER BY issued_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill saves the editable bill fields.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET item_name = ?, amount = ?, due_date = ?, recipient = ? WHERE id = ?`,
		bill.ItemName,
		bill.Amount,
		bill.DueDate,
		bill.Recipient,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return requireAffected(res, "bill", bill.ID)
}

// DeleteBill removes a bill. Its payments go with it through the foreign key.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireAffected(res, "bill", id)
}
