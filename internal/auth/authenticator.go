package auth

import (
	"context"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// Authenticator registers and signs in village accounts.
type Authenticator interface {
	// Register creates a pending resident. An admin approves it before it can
	// sign in.
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)

	// Authenticate verifies the credentials of an approved account.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks the credential meets minimum requirements.
	ValidateCredential(credential string) error
}
