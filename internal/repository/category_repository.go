package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Category is a named, colored tag owned by a single user. Names are free
// text and may repeat within one account.
type Category struct {
	ID        uint64
	UserID    uint64
	Name      string
	Color     string
	CreatedAt time.Time
}

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a category and populates the generated id and timestamp.
func (r *CategoryRepo) Create(ctx context.Context, c *Category) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, color) VALUES (?,?,?)",
		c.UserID, c.Name, c.Color)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM categories WHERE id=?", c.ID).Scan(&c.CreatedAt)
}

// GetByIDAndOwner fetches a category by id only if it belongs to the owner.
// A foreign or missing row yields ErrNotFound.
func (r *CategoryRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, color, created_at FROM categories WHERE id=? AND user_id=?",
		id, ownerID).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns all of the owner's categories ordered by id.
func (r *CategoryRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, color, created_at FROM categories WHERE user_id=? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Category{}
	for rows.Next() {
		c := new(Category)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ExistsForOwner reports whether a category id belongs to the owner. Used to
// keep a note's category pointer inside the caller's own account.
func (r *CategoryRepo) ExistsForOwner(ctx context.Context, id, ownerID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM categories WHERE id=? AND user_id=?", id, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update rewrites name and color when the row is owned by ownerID. ErrNotFound
// is returned when no row matched.
func (r *CategoryRepo) Update(ctx context.Context, id, ownerID uint64, name, color string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name=?, color=? WHERE id=? AND user_id=?",
		name, color, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a foreign row and for a no-op update;
		// disambiguate with an owned-existence check.
		ok, err := r.ExistsForOwner(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes the row when owned by ownerID, ErrNotFound otherwise.
func (r *CategoryRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id=? AND user_id=?", id, ownerID)
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
