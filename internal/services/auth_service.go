package services

import (
	"context"

	"nearchat/internal/domain"
	"nearchat/internal/repository"
	nearchat_errors "nearchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService resolves a bearer token to a user. Tokens are HMAC-signed JWTs
// stored verbatim on the user row, so the signature check happens before the
// database ever sees the string.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
}

func NewAuthService(users repository.UserRepository, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret)}
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, nearchat_errors.ErrUnauthorized
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, nearchat_errors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.User{}, nearchat_errors.ErrUnauthorized
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		return domain.User{}, nearchat_errors.ErrUnauthorized
	}
	return user, nil
}
