package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Note is a titled content block owned by a single user, optionally linked
// to one of the owner's categories.
type Note struct {
	ID         uint64
	UserID     uint64
	CategoryID *uint64
	Title      string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

const noteCols = "id, user_id, category_id, title, content, created_at, updated_at"

func scanNote(row interface{ Scan(...any) error }) (*Note, error) {
	n := new(Note)
	var cat sql.NullInt64
	if err := row.Scan(&n.ID, &n.UserID, &cat, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if cat.Valid {
		v := uint64(cat.Int64)
		n.CategoryID = &v
	}
	return n, nil
}

// Create inserts a note and re-reads the full row so callers get the
// database-generated id and timestamps.
func (r *NoteRepo) Create(ctx context.Context, n *Note) error {
	var cat any
	if n.CategoryID != nil {
		cat = *n.CategoryID
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (user_id, category_id, title, content) VALUES (?,?,?,?)",
		n.UserID, cat, n.Title, n.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanNote(r.db.QueryRowContext(ctx,
		"SELECT "+noteCols+" FROM notes WHERE id=?", id))
	if err != nil {
		return err
	}
	*n = *got
	return nil
}

// GetByIDAndOwner fetches a note by id only if it belongs to the owner.
func (r *NoteRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Note, error) {
	n, err := scanNote(r.db.QueryRowContext(ctx,
		"SELECT "+noteCols+" FROM notes WHERE id=? AND user_id=?", id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

// ListByOwner returns the owner's notes, newest first. A non-nil categoryID
// narrows the result to notes referencing that category; an id matching none
// of the owner's categories simply yields an empty list.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID uint64, categoryID *uint64) ([]*Note, error) {
	q := "SELECT " + noteCols + " FROM notes WHERE user_id=?"
	args := []any{ownerID}
	if categoryID != nil {
		q += " AND category_id=?"
		args = append(args, *categoryID)
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update rewrites title, content and category pointer when the row is owned
// by ownerID, then re-reads the row. ErrNotFound when no owned row matched.
func (r *NoteRepo) Update(ctx context.Context, id, ownerID uint64, title, content string, categoryID *uint64) (*Note, error) {
	var cat any
	if categoryID != nil {
		cat = *categoryID
	}
	// No-op updates report zero affected rows, so not-found detection is
	// left to the owned re-read below.
	_, err := r.db.ExecContext(ctx,
		"UPDATE notes SET title=?, content=?, category_id=? WHERE id=? AND user_id=?",
		title, content, cat, id, ownerID)
	if err != nil {
		return nil, err
	}
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// Delete removes the row when owned by ownerID, ErrNotFound otherwise.
func (r *NoteRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id=? AND user_id=?", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
