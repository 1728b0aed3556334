package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/transport/http/handler"
	"github.com/ErlanBelekov/phone-insights/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	signup  func(ctx context.Context, email, password string) (*usecase.Session, error)
	login   func(ctx context.Context, email, password string) (*usecase.Session, error)
	profile func(ctx context.Context, userID string) (*usecase.Profile, error)
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, email, password string) (*usecase.Session, error) {
	return f.signup(ctx, email, password)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.Session, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Profile(ctx context.Context, userID string) (*usecase.Profile, error) {
	return f.profile(ctx, userID)
}

// withUser stands in for the Auth middleware.
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	h := handler.NewAuthHandler(uc, discard)

	r := gin.New()
	r.POST("/api/signup", h.Signup)
	r.POST("/api/login", h.Login)
	r.GET("/api/profile", withUser("user-1"), h.Profile)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func session(id, email string) *usecase.Session {
	return &usecase.Session{Token: "header.payload.signature", User: &domain.User{ID: id, Email: email, PasswordHash: "secret-hash"}}
}

// ---- Signup ----

func TestSignup_InvalidInput_Returns400(t *testing.T) {
	for _, body := range []string{
		`{bad json}`,
		`{"email":"not-an-email","password":"secret1"}`,
		`{"email":"a@example.com","password":"short"}`,
		`{"email":"a@example.com"}`,
	} {
		uc := &fakeAuthUsecase{}
		w := postJSON(newAuthEngine(uc), "/api/signup", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSignup_PasswordOverBcryptByteLimit_Returns400(t *testing.T) {
	// 40 runes, 80 bytes.
	body := `{"email":"a@example.com","password":"` + strings.Repeat("é", 40) + `"}`
	called := false
	uc := &fakeAuthUsecase{
		signup: func(context.Context, string, string) (*usecase.Session, error) {
			called = true
			return nil, domain.ErrPasswordTooLong
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/signup", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid input") {
		t.Errorf("body = %s", w.Body.String())
	}
	if called {
		t.Error("usecase must not be called for an oversized password")
	}
}

func TestSignup_PasswordTooLongFromUsecase_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, string, string) (*usecase.Session, error) {
			return nil, domain.ErrPasswordTooLong
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/signup", `{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_DuplicateEmail_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, string, string) (*usecase.Session, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/signup", `{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email already registered") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSignup_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, string, string) (*usecase.Session, error) {
			return nil, errors.New("pq: connection refused at 10.0.0.5")
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/signup", `{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
}

func TestSignup_Success_ReturnsTokenWithoutHash(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, email, _ string) (*usecase.Session, error) {
			return session("user-1", email), nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/signup", `{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"token":"header.payload.signature"`) || !strings.Contains(body, `"id":"user-1"`) {
		t.Errorf("body = %s", body)
	}
	if strings.Contains(body, "secret-hash") {
		t.Errorf("password hash leaked: %s", body)
	}
}

// ---- Login ----

func TestLogin_MissingFields_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{}
	w := postJSON(newAuthEngine(uc), "/api/login", `{"email":"a@example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogin_BadCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(context.Context, string, string) (*usecase.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/login", `{"email":"a@example.com","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestLogin_Success_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email, _ string) (*usecase.Session, error) {
			return session("user-1", email), nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/api/login", `{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// ---- Profile ----

func TestProfile_Success(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	uc := &fakeAuthUsecase{
		profile: func(_ context.Context, userID string) (*usecase.Profile, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			return &usecase.Profile{
				User:          &domain.User{ID: "user-1", Email: "a@example.com", PasswordHash: "secret-hash", CreatedAt: created},
				TotalSearches: 3,
			}, nil
		},
	}
	w := httptest.NewRecorder()
	newAuthEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"id":"user-1"`, `"totalSearches":3`, `"createdAt":"2026-01-02T03:04:05Z"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
	if strings.Contains(body, "secret-hash") {
		t.Errorf("password hash leaked: %s", body)
	}
}

func TestProfile_UnknownUser_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		profile: func(context.Context, string) (*usecase.Profile, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	w := httptest.NewRecorder()
	newAuthEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
