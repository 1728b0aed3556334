package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/email"
	"github.com/ErlanBelekov/phone-insights/internal/repository"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type AuthUsecase struct {
	users     repository.UserRepository
	analytics repository.AnalyticsRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	email     email.Sender
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthUsecase(
	users repository.UserRepository,
	analytics repository.AnalyticsRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	emailSender email.Sender,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		analytics: analytics,
		hasher:    hasher,
		tokens:    tokens,
		email:     emailSender,
		logger:    logger.With("component", "auth"),
	}
}

// Session is returned by Signup and Login.
type Session struct {
	Token string
	User  *domain.User
}

type Profile struct {
	User          *domain.User
	TotalSearches int
}

// Signup hashes the password, creates the user with its analytics snapshot and
// issues a token. The welcome email is best-effort.
func (u *AuthUsecase) Signup(ctx context.Context, emailAddr, password string) (*Session, error) {
	hash, err := u.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, domain.ErrPasswordTooLong) {
			return nil, domain.ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, emailAddr, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	subject, body := email.Welcome(user.Email)
	if err := u.email.Send(context.WithoutCancel(ctx), user.Email, subject, body); err != nil {
		u.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "error", err)
	}

	return &Session{Token: token, User: user}, nil
}

// Login answers domain.ErrInvalidCredentials for both unknown emails and wrong
// passwords, and spends one hash verification either way.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*Session, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.verifyDummy(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := u.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Profile returns the user and their total search count. A missing analytics
// snapshot reads as zero searches.
func (u *AuthUsecase) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	p := &Profile{User: user}
	a, err := u.analytics.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		p.TotalSearches = a.TotalSearches
	case errors.Is(err, domain.ErrAnalyticsNotFound):
		u.logger.ErrorContext(ctx, "analytics snapshot missing", "user_id", userID)
	default:
		return nil, fmt.Errorf("get analytics: %w", err)
	}
	return p, nil
}

func (u *AuthUsecase) verifyDummy(password string) {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("phone-insights-unknown-user")
		if err != nil {
			u.logger.Error("prepare dummy hash", "error", err)
			return
		}
		u.dummyHash = h
	})
	if u.dummyHash != "" {
		_, _ = u.hasher.Verify(password, u.dummyHash)
	}
}
