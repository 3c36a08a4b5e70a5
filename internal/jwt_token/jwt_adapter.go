package jwttoken

import (
	"sitewise/internal/platform/middleware"
)

// VerifierAdapter exposes the JWT service through the middleware's
// TokenVerifier interface.
type VerifierAdapter struct {
	service *Service
}

func NewVerifierAdapter(service *Service) *VerifierAdapter {
	return &VerifierAdapter{service: service}
}

func (a *VerifierAdapter) Verify(tokenString string) (*middleware.Identity, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Identity{
		UserID:   claims.UserID,
		Role:     claims.Role,
		Username: claims.Username,
	}, nil
}
