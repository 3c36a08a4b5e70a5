package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sitewise/internal/auth/models"
	"sitewise/internal/auth/store"
	dErrors "sitewise/pkg/domain-errors"
)

type stubIssuer struct{}

func (stubIssuer) GenerateAccessToken(userID int64, role, username string) (string, error) {
	return "signed-token", nil
}

func newTestService() (*Service, *store.Memory) {
	mem := store.NewMemory()
	return NewService(mem, stubIssuer{}), mem
}

func TestRegister_DefaultsRoleToInspector(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "asha",
		Email:    "asha@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleInspector, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	// Stored hash must verify against the original password.
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing username", models.RegisterRequest{Email: "a@example.com", Password: "longenough"}},
		{"bad email", models.RegisterRequest{Username: "a", Email: "not-an-email", Password: "longenough"}},
		{"short password", models.RegisterRequest{Username: "a", Email: "a@example.com", Password: "short"}},
		{"unknown role", models.RegisterRequest{Username: "a", Email: "a@example.com", Password: "longenough", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{
		Username: "asha", Email: "asha@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{
		Username: "other", Email: "asha@example.com", Password: "longenough",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestLogin_HappyPath(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, models.RegisterRequest{
		Username: "asha", Email: "Asha@Example.com", Password: "longenough", Role: "manager",
	})
	require.NoError(t, err)

	// Login is case-insensitive on email.
	token, user, err := svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, models.RoleManager, user.Role)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{
		Username: "asha", Email: "asha@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	_, _, errWrongPassword := svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "nope-nope"})
	_, _, errUnknownEmail := svc.Login(ctx, models.LoginRequest{Email: "ghost@example.com", Password: "longenough"})

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownEmail)
	assert.True(t, dErrors.HasCode(errWrongPassword, dErrors.CodeUnauthorized))
	assert.True(t, dErrors.HasCode(errUnknownEmail, dErrors.CodeUnauthorized))
	assert.Equal(t, dErrors.MessageOf(errWrongPassword), dErrors.MessageOf(errUnknownEmail))
}
