package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/storage"
)

const userColumns = `id, name, username, phone, email, address, role, status, password_hash, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Phone,
		&user.Email,
		&user.Address,
		&user.Role,
		&user.Status,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		user.Phone,
		user.Email,
		user.Address,
		user.Role,
		string(user.Status),
		user.PasswordHash,
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("username %s: %w", user.Username, storage.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves a user by their login name.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", username)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// ListUsers returns every account, oldest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser saves everything but the password hash.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, phone = ?, email = ?, address = ?, role = ?, status = ?, updated_at = ?
		WHERE id = ?
	`,
		user.Name,
		user.Phone,
		user.Email,
		user.Address,
		user.Role,
		string(user.Status),
		toMillis(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(res, "user", user.ID)
}

// DeleteUser removes an account.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res, "user", id)
}
