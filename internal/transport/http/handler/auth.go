package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/auth"
	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, email, password string) (*usecase.Session, error)
	Login(ctx context.Context, email, password string) (*usecase.Session, error)
	Profile(ctx context.Context, userID string) (*usecase.Profile, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	Email    string `json:"email"    binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type profileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
	TotalSearches int       `json:"totalSearches"`
}

func newSessionResponse(s *usecase.Session) sessionResponse {
	return sessionResponse{
		Token: s.Token,
		User:  userResponse{ID: s.User.ID, Email: s.User.Email},
	}
}

// POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}

	// binding's max counts runes; bcrypt's limit is in bytes.
	if len(req.Password) > auth.MaxPasswordBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}

	session, err := h.authUsecase.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": errEmailTaken})
			return
		case errors.Is(err, domain.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errCredentialsMissing})
		return
	}

	session, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

// GET /api/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	p, err := h.authUsecase.Profile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:            p.User.ID,
		Email:         p.User.Email,
		CreatedAt:     p.User.CreatedAt,
		TotalSearches: p.TotalSearches,
	})
}
