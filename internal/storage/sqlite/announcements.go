package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

const announcementColumns = `id, title, content, tag, author_id, published_at`

func scanAnnouncement(row scanner) (*models.Announcement, error) {
	a := &models.Announcement{}
	var publishedAt int64
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Tag, &a.AuthorID, &publishedAt); err != nil {
		return nil, err
	}
	a.PublishedAt = fromMillis(publishedAt)
	return a, nil
}

// CreateAnnouncement inserts a new announcement.
func (s *SQLiteStore) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (`+announcementColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.Tag, a.AuthorID, toMillis(a.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	return nil
}

// GetAnnouncement retrieves an announcement by ID.
func (s *SQLiteStore) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id)
	a, err := scanAnnouncement(row)
	if err != nil {
		return nil, notFound(err, "announcement", id)
	}
	return a, nil
}

// ListAnnouncements returns every announcement, newest first.
func (s *SQLiteStore) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+announcementColumns+` FROM announcements ORDER BY published_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	out := []*models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}
	return out, nil
}

// UpdateAnnouncement saves the title, content and tag.
func (s *SQLiteStore) UpdateAnnouncement(ctx context.Context, a *models.Announcement) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE announcements SET title = ?, content = ?, tag = ? WHERE id = ?`,
		a.Title, a.Content, a.Tag, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	return requireAffected(res, "announcement", a.ID)
}

// DeleteAnnouncement removes an announcement.
func (s *SQLiteStore) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return requireAffected(res, "announcement", id)
}
