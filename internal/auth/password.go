package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUsernameExists     = errors.New("username already registered")
	ErrNotApproved        = errors.New("account is not approved")
)

// UserStorage defines the user persistence the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a pending resident with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	if err := a.ValidateCredential(in.Password); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return a.create(ctx, in, models.RoleResident, models.UserPending)
}

// EnsureAdmin creates an approved admin account unless the username exists.
func (a *PasswordAuthenticator) EnsureAdmin(ctx context.Context, username, password string) (*models.User, error) {
	if existing, err := a.storage.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return existing, nil
	}
	if err := a.ValidateCredential(password); err != nil {
		return nil, err
	}
	in := models.RegisterInput{Name: "Administrator", Username: username, Password: password}
	return a.create(ctx, in, models.RoleAdmin, models.UserApproved)
}

func (a *PasswordAuthenticator) create(ctx context.Context, in models.RegisterInput, role models.Role, status models.UserStatus) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	existingUser, err := a.storage.GetUserByUsername(ctx, username)
	if err == nil && existingUser != nil {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Username:     username,
		Phone:        in.Phone,
		Email:        in.Email,
		Address:      in.Address,
		Role:         role,
		Status:       status,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password of an approved account.
// A correct password on an account that is not approved yields ErrNotApproved.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status != models.UserApproved {
		return nil, ErrNotApproved
	}

	return user, nil
}
