package usecase

import (
	"club-scheduler/internal/domain/member"
	"club-scheduler/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, member.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, member.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}

	role, err := member.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", err
	}
	if claims.MemberID == uuid.Nil {
		return uuid.Nil, "", jwt.ErrInvalidToken
	}

	return claims.MemberID, role, nil
}
