package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

var errNoUser = errors.New("no such user")

type memUsers struct {
	byUsername map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byUsername: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.byUsername[user.Username] = user
	return nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, errNoUser
	}
	return u, nil
}

func registerInput(username string) models.RegisterInput {
	return models.RegisterInput{Name: "Somchai", Username: username, Password: "correct-horse"}
}

func TestRegisterCreatesPendingResident(t *testing.T) {
	authn := NewPasswordAuthenticator(newMemUsers())

	user, err := authn.Register(context.Background(), registerInput("somchai"))
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleResident, user.Role)
	assert.Equal(t, models.UserPending, user.Status)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestRegisterRejectsWeakAndDuplicate(t *testing.T) {
	authn := NewPasswordAuthenticator(newMemUsers())
	ctx := context.Background()

	weak := registerInput("somchai")
	weak.Password = "short"
	_, err := authn.Register(ctx, weak)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = authn.Register(ctx, registerInput("somchai"))
	require.NoError(t, err)
	_, err = authn.Register(ctx, registerInput("somchai"))
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthenticate(t *testing.T) {
	users := newMemUsers()
	authn := NewPasswordAuthenticator(users)
	ctx := context.Background()

	_, err := authn.Register(ctx, registerInput("somchai"))
	require.NoError(t, err)

	_, err = authn.Authenticate(ctx, "somchai", "correct-horse")
	assert.ErrorIs(t, err, ErrNotApproved, "pending accounts cannot sign in")

	_, err = authn.Authenticate(ctx, "somchai", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "a wrong password does not reveal the approval state")

	_, err = authn.Authenticate(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.byUsername["somchai"].Status = models.UserApproved
	user, err := authn.Authenticate(ctx, " somchai ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "somchai", user.Username)
}

func TestEnsureAdmin(t *testing.T) {
	authn := NewPasswordAuthenticator(newMemUsers())
	ctx := context.Background()

	admin, err := authn.EnsureAdmin(ctx, "admin", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.UserApproved, admin.Status)

	again, err := authn.EnsureAdmin(ctx, "admin", "ignored-password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = authn.Authenticate(ctx, "admin", "admin-password")
	assert.NoError(t, err)
}
