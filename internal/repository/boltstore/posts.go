package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

type PostStore struct {
	db *bbolt.DB
}

func NewPostStore(db *bbolt.DB) *PostStore { return &PostStore{db: db} }

var _ repository.PostRepo = (*PostStore)(nil)

// List walks the posts bucket in key order, which is insertion order.
func (s *PostStore) List(_ context.Context) ([]models.Post, error) {
	out := make([]models.Post, 0, 16)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketPosts)).ForEach(func(_, v []byte) error {
			var p models.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode post: %w", err)
			}
			out = append(out, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostStore) Create(_ context.Context, p models.Post) (models.Post, error) {
	if p.Title == "" || p.Content == "" {
		return models.Post{}, repository.ErrInvalidPost
	}
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	err := s.db.Update(func(tx *bbolt.Tx) error {
		posts := tx.Bucket([]byte(bucketPosts))
		seq, err := posts.NextSequence()
		if err != nil {
			return err
		}
		doc, err := json.Marshal(p)
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := posts.Put(key, doc); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketPostIDs)).Put([]byte(p.ID), key)
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (s *PostStore) Get(_ context.Context, id string) (models.Post, error) {
	var p models.Post
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, doc := lookupPost(tx, id)
		if doc == nil {
			return fmt.Errorf("post %q: %w", id, repository.ErrNotFound)
		}
		return json.Unmarshal(doc, &p)
	})
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *PostStore) Update(_ context.Context, id, title, content string, imageURL *string) error {
	if title == "" || content == "" {
		return repository.ErrInvalidPost
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		key, doc := lookupPost(tx, id)
		if doc == nil {
			return fmt.Errorf("post %q: %w", id, repository.ErrNotFound)
		}
		var p models.Post
		if err := json.Unmarshal(doc, &p); err != nil {
			return fmt.Errorf("decode post %q: %w", id, err)
		}
		p.Title, p.Content = title, content
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		p.UpdatedAt = time.Now().UTC()

		updated, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketPosts)).Put(key, updated)
	})
}

func (s *PostStore) Delete(_ context.Context, id string) (bool, error) {
	var found bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		key, doc := lookupPost(tx, id)
		if doc == nil {
			return nil
		}
		found = true
		if err := tx.Bucket([]byte(bucketPosts)).Delete(key); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketPostIDs)).Delete([]byte(id))
	})
	if err != nil {
		return false, fmt.Errorf("delete post %q: %w", id, err)
	}
	return found, nil
}

// lookupPost resolves id to its sequence key and stored document.
func lookupPost(tx *bbolt.Tx, id string) (key, doc []byte) {
	key = tx.Bucket([]byte(bucketPostIDs)).Get([]byte(id))
	if key == nil {
		return nil, nil
	}
	return key, tx.Bucket([]byte(bucketPosts)).Get(key)
}
