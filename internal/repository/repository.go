package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"myblog/internal/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrEmailTaken  = errors.New("email already registered")
	ErrInvalidPost = errors.New("post title and content must not be empty")
)

// PostRepo persists blog posts. List returns posts in insertion order.
type PostRepo interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, p models.Post) (models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	// Update overwrites title and content; the image reference only when imageURL is non-nil.
	Update(ctx context.Context, id, title, content string, imageURL *string) error
	// Delete is idempotent and reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Authorization is the credential store.
type Authorization interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionRepo interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type Repository struct {
	Posts    PostRepo
	Auth     Authorization
	Sessions SessionRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Posts:    NewPostSQLite(db),
		Auth:     NewUserRepository(db),
		Sessions: NewSessionSQLite(db),
	}
}
