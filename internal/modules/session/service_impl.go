package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// TokenTTL bounds how long a shopper's cart session stays valid.
const TokenTTL = 30 * 24 * time.Hour

type service struct {
	key []byte
	now func() time.Time
}

// NewService creates a session service signing tokens with secret.
func NewService(secret string) Service {
	return &service{key: []byte(secret), now: time.Now}
}

func (s *service) Issue() (string, string, error) {
	id := uuid.New().String()
	now := s.now()
	claims := &jwt.StandardClaims{
		Subject:   id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", "", fmt.Errorf("sign session token: %w", err)
	}
	return id, signed, nil
}

func (s *service) Parse(raw string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.Subject, nil
}
