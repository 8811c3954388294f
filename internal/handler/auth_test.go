package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/okarpov/notes-backend/internal/config"
)

// Validation paths below reject the request before any repository call, so a
// handler with nil repos is enough.

func newAuthTestHandler() *AuthHandler {
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4}
	return NewAuthHandler(cfg, nil, nil)
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterMissingFields(t *testing.T) {
	h := newAuthTestHandler()
	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"pw"}`},
		{"missing password", `{"email":"a@b.c"}`},
		{"empty body", `{}`},
		{"whitespace email", `{"email":"   ","password":"pw"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON("/api/auth/register", tc.body)
			if err := h.Register(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestRegisterInvalidBody(t *testing.T) {
	h := newAuthTestHandler()
	c, rec := postJSON("/api/auth/register", `{"email":`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLoginMissingFields(t *testing.T) {
	h := newAuthTestHandler()
	c, rec := postJSON("/api/auth/login", `{"email":"a@b.c"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRefreshMissingToken(t *testing.T) {
	h := newAuthTestHandler()
	c, rec := postJSON("/api/auth/refresh", `{}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRefreshMalformedToken(t *testing.T) {
	// Signature verification fails before any database access.
	h := newAuthTestHandler()
	c, rec := postJSON("/api/auth/refresh", `{"refresh":"not-a-jwt"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLogoutMissingToken(t *testing.T) {
	h := newAuthTestHandler()
	c, rec := postJSON("/api/auth/logout", `{}`)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
