package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

const documentColumns = `id, name, file_path, uploaded_by, uploaded_at`

func scanDocument(row scanner) (*models.Document, error) {
	d := &models.Document{}
	var uploadedAt int64
	if err := row.Scan(&d.ID, &d.Name, &d.FilePath, &d.UploadedBy, &uploadedAt); err != nil {
		return nil, err
	}
	d.UploadedAt = fromMillis(uploadedAt)
	return d, nil
}

// CreateDocument inserts a new document record.
func (s *SQLiteStore) CreateDocument(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.FilePath, d.UploadedBy, toMillis(d.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err != nil {
		return nil, notFound(err, "document", id)
	}
	return d, nil
}

// ListDocuments returns documents, newest first, optionally for one uploader.
func (s *SQLiteStore) ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if ownerID != "" {
		query += ` WHERE uploaded_by = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY uploaded_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return out, nil
}

// DeleteDocument removes a document record. The file itself is not touched.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireAffected(res, "document", id)
}
