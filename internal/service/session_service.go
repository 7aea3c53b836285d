package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultSessionTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// SessionService keeps session rows server-side and hands the client a
// signed token naming the row (jti) and its user (sub).
type SessionService struct {
	repo       repository.SessionRepo
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionService(repo repository.SessionRepo, signingKey []byte, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{repo: repo, signingKey: signingKey, ttl: ttl, now: time.Now}
}

// Start persists a new session for userID and returns its token.
func (s *SessionService) Start(ctx context.Context, userID string) (string, error) {
	now := s.now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Current resolves token to the user id of a live session, or ErrNoSession.
func (s *SessionService) Current(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	claims, err := s.parse(token)
	if err != nil {
		return "", ErrNoSession
	}
	sess, err := s.repo.Load(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if sess == nil || sess.Expired(s.now()) || sess.UserID != claims.Subject {
		return "", ErrNoSession
	}
	return sess.UserID, nil
}

// End discards the session behind token. Unparseable tokens are ignored.
func (s *SessionService) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	return s.repo.Delete(ctx, claims.ID)
}

func (s *SessionService) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
