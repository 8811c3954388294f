package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okarpov/notes-backend/internal/queue"
	"github.com/okarpov/notes-backend/internal/repository"
	publisher "github.com/okarpov/notes-backend/internal/service"
)

// NoteHandler exposes owner-scoped CRUD over notes. Updates additionally emit
// a best-effort audit trail: a structured log line plus a note.updated event.
type NoteHandler struct {
	Notes      *repository.NoteRepo
	Categories *repository.CategoryRepo
	Log        *slog.Logger
}

func NewNoteHandler(notes *repository.NoteRepo, cats *repository.CategoryRepo, log *slog.Logger) *NoteHandler {
	return &NoteHandler{Notes: notes, Categories: cats, Log: log}
}

type noteReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *uint64 `json:"category"`
}

type noteResp struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  *uint64   `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func noteView(n *repository.Note) noteResp {
	return noteResp{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Category:  n.CategoryID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// checkCategory verifies that a requested category id belongs to the caller.
// Pointing a note at another user's category would leak data through the
// category field, so the id must resolve within the caller's own account.
func (h *NoteHandler) checkCategory(ctx context.Context, uid uint64, categoryID *uint64) (int, string) {
	if categoryID == nil {
		return 0, ""
	}
	ok, err := h.Categories.ExistsForOwner(ctx, *categoryID, uid)
	if err != nil {
		return http.StatusInternalServerError, "query failed"
	}
	if !ok {
		return http.StatusBadRequest, "category not found"
	}
	return 0, ""
}

// List returns the caller's notes. The optional ?category= parameter narrows
// the result: "all" (or absence) means no filter, anything else is matched as
// an exact category id. An id matching none of the caller's notes yields an
// empty list, never an error.
func (h *NoteHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var filter *uint64
	raw := c.QueryParam("category")
	if raw != "" && raw != "all" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			// Not a category id, so it matches nothing.
			return c.JSON(http.StatusOK, []noteResp{})
		}
		filter = &n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	notes, err := h.Notes.ListByOwner(ctx, uid, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]noteResp, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteView(n))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a note. The owner always comes from the token, never from the
// request body.
func (h *NoteHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if code, msg := h.checkCategory(ctx, uid, req.Category); code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	n := &repository.Note{UserID: uid, CategoryID: req.Category, Title: *req.Title, Content: content}
	if err := h.Notes.Create(ctx, n); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, noteView(n))
}

// Get returns one owned note; foreign rows surface as 404.
func (h *NoteHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Notes.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, noteView(n))
}

// Update handles both PUT (full) and PATCH (partial). PUT requires title and
// content and replaces the category pointer (absent means cleared); PATCH
// overlays present fields and leaves the category pointer alone unless a new
// id is supplied.
func (h *NoteHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	full := c.Request().Method == http.MethodPut
	if full && (req.Title == nil || req.Content == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Notes.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	title, content, category := cur.Title, cur.Content, cur.CategoryID
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}
	if full {
		category = req.Category
	} else if req.Category != nil {
		category = req.Category
	}
	if code, msg := h.checkCategory(ctx, uid, category); code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	n, err := h.Notes.Update(ctx, id, uid, title, content, category)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.audit(n)
	return c.JSON(http.StatusOK, noteView(n))
}

// audit records a note update: one structured log line plus a best-effort
// note.updated event for the background audit consumer. Neither path may
// block or fail the response.
func (h *NoteHandler) audit(n *repository.Note) {
	h.Log.Info("note updated",
		"id", n.ID,
		"title", n.Title,
		"content", n.Content,
		"updated_at", n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	ev := queue.NoteUpdatedEvent{
		NoteID:    n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		UpdatedAt: n.UpdatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = publisher.PublishNoteUpdated(ctx, ev)
	}()
}

// Delete removes an owned note.
func (h *NoteHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notes.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
