package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okarpov/notes-backend/internal/repository"
)

// CategoryHandler exposes owner-scoped CRUD over categories.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(repo *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: repo}
}

type categoryReq struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type categoryResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func categoryView(c *repository.Category) categoryResp {
	return categoryResp{ID: c.ID, Name: c.Name, Color: c.Color, CreatedAt: c.CreatedAt}
}

// normalizeColor canonicalizes a category color to #RRGGBB. An #RRGGBBAA
// value has its alpha suffix stripped; anything else is rejected.
func normalizeColor(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) != 7 && len(s) != 9 {
		return "", false
	}
	if s[0] != '#' {
		return "", false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9', ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToUpper(s[:7]), true
}

// List returns all of the caller's categories.
func (h *CategoryHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryView(cat))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a category. The owner always comes from the token, never from
// the request body.
func (h *CategoryHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Color == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "color is required"})
	}
	color, ok := normalizeColor(*req.Color)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "color must be #RRGGBB"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat := &repository.Category{UserID: uid, Name: *req.Name, Color: color}
	if err := h.Categories.Create(ctx, cat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, categoryView(cat))
}

// Get returns one owned category; foreign rows surface as 404.
func (h *CategoryHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, categoryView(cat))
}

// Update handles both PUT (full) and PATCH (partial). PUT requires name and
// color; PATCH overlays whichever fields are present onto the stored row.
func (h *CategoryHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	full := c.Request().Method == http.MethodPut
	if full && (req.Name == nil || req.Color == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and color are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	name, color := cat.Name, cat.Color
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		name = *req.Name
	}
	if req.Color != nil {
		nc, ok := normalizeColor(*req.Color)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "color must be #RRGGBB"})
		}
		color = nc
	}

	if err := h.Categories.Update(ctx, id, uid, name, color); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	cat.Name, cat.Color = name, color
	return c.JSON(http.StatusOK, categoryView(cat))
}

// Delete removes an owned category. Notes referencing it keep existing with
// their category pointer cleared by the schema's ON DELETE SET NULL.
func (h *CategoryHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
