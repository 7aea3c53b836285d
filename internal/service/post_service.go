package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const msgPostFieldsRequired = "Title and content are required!"

var validate = validator.New(validator.WithRequiredStructEnabled())

type PostService struct {
	repo repository.PostRepo
	feed Feed
	now  func() time.Time
}

func NewPostService(repo repository.PostRepo, feed Feed) *PostService {
	return &PostService{repo: repo, feed: feed, now: time.Now}
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostService) Create(ctx context.Context, in PostInput) (models.Post, error) {
	if err := in.Validate(); err != nil {
		return models.Post{}, err
	}
	in = in.normalize()
	p, err := s.repo.Create(ctx, models.Post{Title: in.Title, Content: in.Content})
	if err != nil {
		return models.Post{}, err
	}
	s.publish(models.PostCreated, p.ID, &p)
	return p, nil
}

// Get returns ErrPostNotFound for unknown and malformed ids alike.
func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, fmt.Errorf("%w: %q", ErrPostNotFound, id)
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Post{}, mapNotFound(err)
	}
	return p, nil
}

func (s *PostService) Update(ctx context.Context, id string, in PostInput, imageURL *string) error {
	if err := in.Validate(); err != nil {
		return err
	}
	in = in.normalize()
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrPostNotFound, id)
	}
	if err := s.repo.Update(ctx, id, in.Title, in.Content, imageURL); err != nil {
		return mapNotFound(err)
	}
	s.publish(models.PostUpdated, id, nil)
	return nil
}

// Delete removes the post. The store delete is idempotent; an id that
// matched nothing is still reported as ErrPostNotFound.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrPostNotFound, id)
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrPostNotFound, id)
	}
	s.publish(models.PostDeleted, id, nil)
	return nil
}

func (s *PostService) publish(typ, id string, p *models.Post) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(models.PostEvent{Type: typ, PostID: id, Post: p, OccurredAt: s.now().UTC()})
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrPostNotFound, err)
	}
	return err
}
