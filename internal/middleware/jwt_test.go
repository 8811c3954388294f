package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/okarpov/notes-backend/internal/utils"
)

const testSecret = "test-secret"

func runJWTAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, uint64) {
	t.Helper()
	e := echo.New()
	var gotUID uint64
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		uid, _ := c.Get(ContextUserID).(uint64)
		gotUID = uid
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, gotUID
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runJWTAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec, _ := runJWTAuth(t, "Bearer not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	refresh, err := utils.NewRefreshToken(testSecret, 5, 30)
	if err != nil {
		t.Fatalf("mint refresh token: %v", err)
	}
	rec, _ := runJWTAuth(t, "Bearer "+refresh.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 5, 15)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	rec, uid := runJWTAuth(t, "Bearer "+access.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if uid != 5 {
		t.Errorf("user_id in context = %d, want 5", uid)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	access, err := utils.NewAccessToken("another-secret", 5, 15)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	rec, _ := runJWTAuth(t, "Bearer "+access.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
