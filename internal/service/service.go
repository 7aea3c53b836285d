package service

import (
	"context"
	"io"
	"time"

	"myblog/internal/logger"
	"myblog/internal/models"
	"myblog/internal/repository"
)

// Posts is the post CRUD surface used by the handlers.
type Posts interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, in PostInput) (models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	// Update leaves the stored image untouched when imageURL is nil.
	Update(ctx context.Context, id string, in PostInput, imageURL *string) error
	Delete(ctx context.Context, id string) error
}

type Authorization interface {
	SignUp(ctx context.Context, email, password string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// Sessions tracks authenticated identities behind client-held tokens.
type Sessions interface {
	Start(ctx context.Context, userID string) (string, error)
	Current(ctx context.Context, token string) (string, error)
	End(ctx context.Context, token string) error
}

// FlashCodec signs one-shot status messages for a cookie round trip.
type FlashCodec interface {
	Encode(f models.Flash) (string, error)
	Decode(token string) (models.Flash, error)
}

// Uploads is the image sink.
type Uploads interface {
	Store(ctx context.Context, postID, filename string, r io.Reader) (string, error)
	Open(name string) (string, error)
}

// Feed fans post events out to live subscribers.
type Feed interface {
	Subscribe() (<-chan models.PostEvent, func())
	Publish(ev models.PostEvent)
}

// Janitor runs the background loop that purges expired sessions.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Posts
	Authorization
	Sessions
	FlashCodec
	Uploads
	Feed
	Janitor
}

// Options carries the settings services need from configuration.
type Options struct {
	SecretKey  []byte
	SessionTTL time.Duration
}

// NewService wires the repository layer and upload sink into concrete services.
func NewService(repos *repository.Repository, uploads Uploads, opts Options, log *logger.Logger) *Service {
	feed := NewFeed()
	return &Service{
		Posts:         NewPostService(repos.Posts, feed),
		Authorization: NewAuthService(repos.Auth),
		Sessions:      NewSessionService(repos.Sessions, opts.SecretKey, opts.SessionTTL),
		FlashCodec:    NewFlashService(opts.SecretKey),
		Uploads:       uploads,
		Feed:          feed,
		Janitor:       NewSessionJanitor(repos.Sessions, log),
	}
}
