package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionPayload is a snapshot taken when the session is written. It is not
// a live reference to the user row.
type SessionPayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type Session struct {
	ID        string         `json:"id"`
	Payload   SessionPayload `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore is the server-side session contract used by auth.
type SessionStore interface {
	Create(ctx context.Context, payload SessionPayload) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Replace(ctx context.Context, id string, payload SessionPayload) (*Session, error)
	Destroy(ctx context.Context, id string) error
}
