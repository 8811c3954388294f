package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okarpov/notes-backend/internal/config"
	"github.com/okarpov/notes-backend/internal/database"
	"github.com/okarpov/notes-backend/internal/handler"
	"github.com/okarpov/notes-backend/internal/logging"
	"github.com/okarpov/notes-backend/internal/repository"
)

// End-to-end tests over the real route table and a real MySQL instance.
// Skipped unless TEST_DB_HOST is set (see repository tests for the full
// variable list). Redis is left nil, so the auth limiter is a no-op.

type testApp struct {
	e *echo.Echo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping end-to-end tests")
	}
	db, err := database.Open(
		os.Getenv("TEST_DB_USER"),
		os.Getenv("TEST_DB_PASS"),
		host,
		os.Getenv("TEST_DB_PORT"),
		os.Getenv("TEST_DB_NAME"),
	)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		Env:            "test",
		JWTSecret:      "e2e-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
	logger := logging.Setup("error")

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cats := repository.NewCategoryRepo(db)
	notes := repository.NewNoteRepo(db)

	e := echo.New()
	RegisterRoutes(e, cfg, nil,
		handler.NewAuthHandler(cfg, users, tokens),
		handler.NewCategoryHandler(cats),
		handler.NewNoteHandler(notes, cats, logger),
	)

	// Registered users are removed afterwards; cascades clean up the rest.
	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE email LIKE 'e2e-%@test.local'")
	})
	return &testApp{e: e}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) (int, map[string]any, []map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	raw := rec.Body.Bytes()
	var obj map[string]any
	var arr []map[string]any
	if len(raw) > 0 {
		if raw[0] == '[' {
			_ = json.Unmarshal(raw, &arr)
		} else {
			_ = json.Unmarshal(raw, &obj)
		}
	}
	return rec.Code, obj, arr
}

func (a *testApp) register(t *testing.T, email string) (access, refresh string) {
	t.Helper()
	code, obj, _ := a.do(t, http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"email":%q,"password":"pw123456"}`, email))
	if code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", email, code)
	}
	access, _ = obj["access"].(string)
	refresh, _ = obj["refresh"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("register %s: missing tokens in %v", email, obj)
	}
	return access, refresh
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("e2e-%s-%d@test.local", prefix, time.Now().UnixNano())
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	code, obj, _ := app.do(t, http.MethodGet, "/api/health/", "", "")
	if code != http.StatusOK || obj["status"] != "ok" {
		t.Errorf("health = %d %v", code, obj)
	}
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	app := newTestApp(t)
	email := uniqueEmail("auth")
	_, refresh := app.register(t, email)

	// Duplicate registration conflicts and creates no second account.
	code, _, _ := app.do(t, http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"email":%q,"password":"other"}`, email))
	if code != http.StatusBadRequest {
		t.Errorf("duplicate register: status = %d, want 400", code)
	}

	code, obj, _ := app.do(t, http.MethodPost, "/api/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":"pw123456"}`, email))
	if code != http.StatusOK || obj["access"] == "" {
		t.Fatalf("login: %d %v", code, obj)
	}

	code, _, _ = app.do(t, http.MethodPost, "/api/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":"wrong"}`, email))
	if code != http.StatusUnauthorized {
		t.Errorf("login wrong password: status = %d, want 401", code)
	}

	code, obj, _ = app.do(t, http.MethodPost, "/api/auth/refresh", "",
		fmt.Sprintf(`{"refresh":%q}`, refresh))
	if code != http.StatusOK {
		t.Fatalf("refresh: status = %d, want 200", code)
	}
	if access, _ := obj["access"].(string); access == "" {
		t.Error("refresh returned no access token")
	}

	code, _, _ = app.do(t, http.MethodPost, "/api/auth/logout", "",
		fmt.Sprintf(`{"refresh":%q}`, refresh))
	if code != http.StatusNoContent {
		t.Errorf("logout: status = %d, want 204", code)
	}
	code, _, _ = app.do(t, http.MethodPost, "/api/auth/refresh", "",
		fmt.Sprintf(`{"refresh":%q}`, refresh))
	if code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: status = %d, want 401", code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	app := newTestApp(t)
	email := uniqueEmail("profile")
	access, _ := app.register(t, email)

	code, obj, _ := app.do(t, http.MethodGet, "/api/auth/profile", access, "")
	if code != http.StatusOK || obj["email"] != email {
		t.Fatalf("profile: %d %v", code, obj)
	}

	code, obj, _ = app.do(t, http.MethodPatch, "/api/auth/profile", access,
		`{"first_name":"Updated","last_name":"Name"}`)
	if code != http.StatusOK {
		t.Fatalf("patch profile: status = %d, want 200", code)
	}
	if obj["first_name"] != "Updated" || obj["last_name"] != "Name" {
		t.Errorf("patched profile = %v", obj)
	}

	code, obj, _ = app.do(t, http.MethodGet, "/api/auth/profile", access, "")
	if code != http.StatusOK {
		t.Fatalf("re-read profile: status = %d", code)
	}
	if obj["first_name"] != "Updated" || obj["last_name"] != "Name" || obj["email"] != email {
		t.Errorf("profile after patch = %v", obj)
	}

	// Unauthenticated access is rejected by the middleware.
	code, _, _ = app.do(t, http.MethodGet, "/api/auth/profile", "", "")
	if code != http.StatusUnauthorized {
		t.Errorf("unauthenticated profile: status = %d, want 401", code)
	}
}

func TestCategoryNoteEndToEnd(t *testing.T) {
	app := newTestApp(t)
	accessA, _ := app.register(t, uniqueEmail("alice"))
	accessB, _ := app.register(t, uniqueEmail("bob"))

	code, obj, _ := app.do(t, http.MethodPost, "/api/categories/", accessA,
		`{"name":"Work","color":"#FF0000"}`)
	if code != http.StatusCreated {
		t.Fatalf("create category: status = %d, want 201", code)
	}
	catID := int64(obj["id"].(float64))
	if obj["color"] != "#FF0000" {
		t.Errorf("category color = %v, want #FF0000", obj["color"])
	}

	code, obj, _ = app.do(t, http.MethodPost, "/api/notes/", accessA,
		fmt.Sprintf(`{"title":"T","content":"C","category":%d}`, catID))
	if code != http.StatusCreated {
		t.Fatalf("create note: status = %d, want 201", code)
	}
	noteID := int64(obj["id"].(float64))
	if int64(obj["category"].(float64)) != catID {
		t.Errorf("note category = %v, want %d", obj["category"], catID)
	}

	// Listing with the category filter returns exactly the one note.
	code, _, arr := app.do(t, http.MethodGet,
		fmt.Sprintf("/api/notes/?category=%d", catID), accessA, "")
	if code != http.StatusOK || len(arr) != 1 {
		t.Fatalf("filtered list: %d, %d notes", code, len(arr))
	}
	if int64(arr[0]["id"].(float64)) != noteID {
		t.Errorf("filtered list returned note %v", arr[0]["id"])
	}

	// "all" and no parameter behave identically.
	_, _, withAll := app.do(t, http.MethodGet, "/api/notes/?category=all", accessA, "")
	_, _, without := app.do(t, http.MethodGet, "/api/notes/", accessA, "")
	if len(withAll) != len(without) {
		t.Errorf("category=all returned %d notes, no param %d", len(withAll), len(without))
	}

	// Another user's rows are invisible in every way.
	code, _, arr = app.do(t, http.MethodGet, "/api/notes/", accessB, "")
	if code != http.StatusOK || len(arr) != 0 {
		t.Errorf("bob's list: %d, %d notes, want empty", code, len(arr))
	}
	for _, probe := range []struct{ method, path, body string }{
		{http.MethodGet, fmt.Sprintf("/api/notes/%d/", noteID), ""},
		{http.MethodPut, fmt.Sprintf("/api/notes/%d/", noteID), `{"title":"X","content":"Y"}`},
		{http.MethodDelete, fmt.Sprintf("/api/notes/%d/", noteID), ""},
		{http.MethodGet, fmt.Sprintf("/api/categories/%d/", catID), ""},
		{http.MethodDelete, fmt.Sprintf("/api/categories/%d/", catID), ""},
	} {
		code, _, _ := app.do(t, probe.method, probe.path, accessB, probe.body)
		if code != http.StatusNotFound {
			t.Errorf("%s %s as bob: status = %d, want 404", probe.method, probe.path, code)
		}
	}

	// Bob cannot attach his notes to Alice's category.
	code, _, _ = app.do(t, http.MethodPost, "/api/notes/", accessB,
		fmt.Sprintf(`{"title":"Steal","content":"","category":%d}`, catID))
	if code != http.StatusBadRequest {
		t.Errorf("cross-owner category attach: status = %d, want 400", code)
	}

	// Owner update succeeds and PATCH leaves the category pointer alone.
	code, obj, _ = app.do(t, http.MethodPatch,
		fmt.Sprintf("/api/notes/%d/", noteID), accessA, `{"title":"T2"}`)
	if code != http.StatusOK {
		t.Fatalf("patch note: status = %d, want 200", code)
	}
	if obj["title"] != "T2" || int64(obj["category"].(float64)) != catID {
		t.Errorf("patched note = %v", obj)
	}

	code, _, _ = app.do(t, http.MethodDelete,
		fmt.Sprintf("/api/notes/%d/", noteID), accessA, "")
	if code != http.StatusNoContent {
		t.Errorf("delete note: status = %d, want 204", code)
	}
}
