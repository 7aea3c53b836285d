package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

type UserStore struct {
	db *bbolt.DB
}

func NewUserStore(db *bbolt.DB) *UserStore { return &UserStore{db: db} }

var _ repository.Authorization = (*UserStore)(nil)

// userDoc is the stored form of a user. models.User hides the hash from
// JSON, so the document carries it explicitly.
type userDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

func toUserDoc(u models.User) userDoc {
	return userDoc{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash}
}

func (d userDoc) user() models.User {
	return models.User{ID: d.ID, Email: d.Email, PasswordHash: d.PasswordHash}
}

// Create checks the email index and writes the user in one update
// transaction; bbolt runs a single writer at a time.
func (s *UserStore) Create(_ context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket([]byte(bucketUserEmails))
		if emails.Get([]byte(u.Email)) != nil {
			return repository.ErrEmailTaken
		}
		doc, err := json.Marshal(toUserDoc(u))
		if err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketUsers)).Put([]byte(u.ID), doc); err != nil {
			return err
		}
		return emails.Put([]byte(u.Email), []byte(u.ID))
	})
	if err != nil {
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return u, nil
}

// GetByEmail returns (nil, nil) if no user has that email.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var u *models.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(bucketUserEmails)).Get([]byte(email))
		if id == nil {
			return nil
		}
		doc := tx.Bucket([]byte(bucketUsers)).Get(id)
		if doc == nil {
			return nil
		}
		var d userDoc
		if err := json.Unmarshal(doc, &d); err != nil {
			return err
		}
		found := d.user()
		u = &found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", email, err)
	}
	return u, nil
}
