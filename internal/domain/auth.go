package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("token is invalid")
	ErrExpiredToken       = errors.New("token has expired")
)

// User is never returned to clients with its PasswordHash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is what a verified bearer token asserts about its holder.
type Identity struct {
	UserID string
	Email  string
}
