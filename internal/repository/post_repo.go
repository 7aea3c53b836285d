package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"myblog/internal/models"

	"github.com/google/uuid"
)

type PostSQLite struct {
	db *sql.DB
}

func NewPostSQLite(db *sql.DB) *PostSQLite { return &PostSQLite{db: db} }

var _ PostRepo = (*PostSQLite)(nil)

const (
	selectPostsSQL = `SELECT id, title, content, image_url, created_at, updated_at FROM posts ORDER BY seq ASC`

	selectPostByIDSQL = `SELECT id, title, content, image_url, created_at, updated_at FROM posts WHERE id = ?`

	insertPostSQL = `INSERT INTO posts (id, title, content, image_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`

	// COALESCE keeps the stored image when no new reference is supplied.
	updatePostSQL = `UPDATE posts SET title = ?, content = ?, image_url = COALESCE(?, image_url), updated_at = ? WHERE id = ?`

	deletePostSQL = `DELETE FROM posts WHERE id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Post{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// List returns all posts in insertion order.
func (r *PostSQLite) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPostsSQL)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, 16)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new post. ID and timestamps are assigned here.
func (r *PostSQLite) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.Title == "" || p.Content == "" {
		return models.Post{}, ErrInvalidPost
	}
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := r.db.ExecContext(ctx, insertPostSQL, p.ID, p.Title, p.Content, p.ImageURL, p.CreatedAt, p.UpdatedAt); err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// Get fetches one post; ErrNotFound when the id is unknown.
func (r *PostSQLite) Get(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, selectPostByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("post %q: %w", id, ErrNotFound)
		}
		return models.Post{}, fmt.Errorf("select post %q: %w", id, err)
	}
	return p, nil
}

func (r *PostSQLite) Update(ctx context.Context, id, title, content string, imageURL *string) error {
	if title == "" || content == "" {
		return ErrInvalidPost
	}
	var image any
	if imageURL != nil {
		image = *imageURL
	}
	res, err := r.db.ExecContext(ctx, updatePostSQL, title, content, image, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update post %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for post %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("post %q: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PostSQLite) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deletePostSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete post %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for post %q: %w", id, err)
	}
	return n > 0, nil
}
