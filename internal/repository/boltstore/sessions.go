package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository"

	"go.etcd.io/bbolt"
)

type SessionStore struct {
	db *bbolt.DB
}

func NewSessionStore(db *bbolt.DB) *SessionStore { return &SessionStore{db: db} }

var _ repository.SessionRepo = (*SessionStore)(nil)

func (s *SessionStore) Save(_ context.Context, sess models.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()

	doc, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Put([]byte(sess.ID), doc)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(_ context.Context, id string) (*models.Session, error) {
	var sess *models.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		doc := tx.Bucket([]byte(bucketSessions)).Get([]byte(id))
		if doc == nil {
			return nil
		}
		sess = &models.Session{}
		return json.Unmarshal(doc, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Delete([]byte(id))
	})
}

func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	var removed int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketSessions))
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var sess models.Session
			if err := json.Unmarshal(v, &sess); err != nil {
				return err
			}
			if sess.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return removed, nil
}
