package service

import (
	"context"
	"errors"
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"sitewise/internal/auth/models"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/sentinel"
)

// Store persists user accounts.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, role, username string) (string, error)
}

// Service handles registration and login. Password hashing and token
// signing stay behind this boundary; handlers only see users and tokens.
type Service struct {
	store  Store
	tokens TokenIssuer
}

func NewService(store Store, tokens TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register validates the request, hashes the password and creates the user.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if !govalidator.StringLength(req.Username, "1", "100") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	if !govalidator.IsEmail(req.Email) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid email")
	}
	if len(req.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password must be at least 8 characters")
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleInspector
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
	}
	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username or email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	user.ID = id
	return user, nil
}

// Login verifies credentials and issues a signed access token. A wrong email
// and a wrong password produce the same error so the response does not leak
// which accounts exist.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	user, err := s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role), user.Username)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return token, user, nil
}
