package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens. The key is process-wide
// configuration and is never derived from user data.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{key: key, ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := m.now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Authenticate returns the identity asserted by raw, or one of
// domain.ErrMissingToken, domain.ErrInvalidToken, domain.ErrExpiredToken.
func (m *TokenManager) Authenticate(raw string) (domain.Identity, error) {
	if raw == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}

	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrExpiredToken
		}
		return domain.Identity{}, domain.ErrInvalidToken
	}
	if !token.Valid || c.Subject == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{UserID: c.Subject, Email: c.Email}, nil
}
