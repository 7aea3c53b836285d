package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/google/uuid"
)

// memPostRepo is an in-memory repository.PostRepo.
type memPostRepo struct {
	mu    sync.Mutex
	order []string
	posts map[string]models.Post
	err   error
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[string]models.Post{}}
}

func (r *memPostRepo) List(context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Post, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.posts[id])
	}
	return out, nil
}

func (r *memPostRepo) Create(_ context.Context, p models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return models.Post{}, r.err
	}
	p.ID = uuid.NewString()
	r.posts[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *memPostRepo) Get(_ context.Context, id string) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("post %q: %w", id, repository.ErrNotFound)
	}
	return p, nil
}

func (r *memPostRepo) Update(_ context.Context, id, title, content string, imageURL *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post %q: %w", id, repository.ErrNotFound)
	}
	p.Title, p.Content = title, content
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	r.posts[id] = p
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return false, nil
	}
	delete(r.posts, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// memSessionRepo is an in-memory repository.SessionRepo.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	err      error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]models.Session{}}
}

func (r *memSessionRepo) Save(_ context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) Load(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
