// Package boltstore keeps posts, users and sessions as JSON documents in a
// single bbolt file.
package boltstore

import (
	"encoding/binary"
	"fmt"

	"myblog/internal/repository"

	"go.etcd.io/bbolt"
)

const (
	bucketPosts      = "posts"       // seq -> Post
	bucketPostIDs    = "post_ids"    // post id -> seq
	bucketUsers      = "users"       // user id -> User
	bucketUserEmails = "user_emails" // email -> user id
	bucketSessions   = "sessions"    // session id -> Session
)

// Open opens (or creates) the bbolt file at path and ensures all buckets exist.
func Open(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt at %q: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketPosts, bucketPostIDs, bucketUsers, bucketUserEmails, bucketSessions} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewRepository exposes the bbolt stores through the repository interfaces.
func NewRepository(db *bbolt.DB) *repository.Repository {
	return &repository.Repository{
		Posts:    NewPostStore(db),
		Auth:     NewUserStore(db),
		Sessions: NewSessionStore(db),
	}
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
