package service

import (
	"fmt"
	"time"

	"myblog/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const flashTTL = 5 * time.Minute

type flashClaims struct {
	jwt.RegisteredClaims
	Severity string `json:"sev"`
	Message  string `json:"msg"`
}

// FlashService signs status messages so clients cannot forge them.
type FlashService struct {
	signingKey []byte
	now        func() time.Time
}

func NewFlashService(signingKey []byte) *FlashService {
	return &FlashService{signingKey: signingKey, now: time.Now}
}

func (s *FlashService) Encode(f models.Flash) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
		Severity: f.Severity,
		Message:  f.Message,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign flash: %w", err)
	}
	return signed, nil
}

func (s *FlashService) Decode(token string) (models.Flash, error) {
	claims := &flashClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return models.Flash{}, err
	}
	return models.Flash{Severity: claims.Severity, Message: claims.Message}, nil
}
