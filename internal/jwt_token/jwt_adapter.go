package jwttoken

import (
	"github.com/R3gret/TinyBackend-sub000/internal/platform/middleware"
)

// MiddlewareAdapter bridges JWTService to the auth middleware's validator
// interface so the middleware package stays free of JWT dependencies.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID:   claims.UserID,
		Role:     claims.Role,
		CenterID: claims.CenterID,
	}, nil
}
