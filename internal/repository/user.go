package repository

import (
	"context"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
)

type UserRepository interface {
	// Create inserts the user together with its zeroed analytics snapshot;
	// either both exist afterwards or neither does. Returns domain.ErrEmailTaken
	// when the email is already registered.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
