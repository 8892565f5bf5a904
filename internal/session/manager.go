package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job-tracker-backend/internal/domain"
)

const (
	// DefaultTTL matches the cookie Max-Age.
	DefaultTTL = 7 * 24 * time.Hour

	keyPrefix = "sess:"
	idBytes   = 32
)

type Options struct {
	TTL time.Duration
	// Rolling extends the TTL on every successful read.
	Rolling bool
}

// record is what goes into the backend. Expiry is owned by the backend TTL.
type record struct {
	ID        string                `json:"id"`
	Payload   domain.SessionPayload `json:"payload"`
	CreatedAt time.Time             `json:"createdAt"`
}

// Manager implements domain.SessionStore on any Backend.
type Manager struct {
	backend Backend
	ttl     time.Duration
	rolling bool
	now     func() time.Time
}

func NewManager(backend Backend, opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		backend: backend,
		ttl:     ttl,
		rolling: opts.Rolling,
		now:     time.Now,
	}
}

// TTL is the lifetime given to new and rewritten sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Create(ctx context.Context, payload domain.SessionPayload) (*domain.Session, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	rec := record{ID: id, Payload: payload, CreatedAt: m.now().UTC()}
	return m.write(ctx, rec)
}

func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	rec, expiresAt, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{
		ID:        rec.ID,
		Payload:   rec.Payload,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: expiresAt,
	}

	now := m.now()
	if !sess.ExpiresAt.IsZero() && sess.Expired(now) {
		_ = m.backend.Delete(ctx, keyPrefix+id)
		return nil, domain.ErrSessionExpired
	}

	if m.rolling {
		if err := m.backend.Expire(ctx, keyPrefix+id, m.ttl); err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				return nil, domain.ErrSessionNotFound
			}
			return nil, fmt.Errorf("touch session: %w", err)
		}
		sess.ExpiresAt = now.Add(m.ttl)
	}

	return sess, nil
}

// Replace swaps the payload of a live session and renews its TTL.
func (m *Manager) Replace(ctx context.Context, id string, payload domain.SessionPayload) (*domain.Session, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := record{ID: current.ID, Payload: payload, CreatedAt: current.CreatedAt}
	return m.write(ctx, rec)
}

// Destroy is idempotent: destroying an unknown id is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.backend.Delete(ctx, keyPrefix+id); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (m *Manager) write(ctx context.Context, rec record) (*domain.Session, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := m.backend.Set(ctx, keyPrefix+rec.ID, data, m.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &domain.Session{
		ID:        rec.ID,
		Payload:   rec.Payload,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

func (m *Manager) load(ctx context.Context, id string) (*record, time.Time, error) {
	entry, err := m.backend.Get(ctx, keyPrefix+id)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, time.Time{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(entry.Value, &rec); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode session: %w", err)
	}
	return &rec, entry.ExpiresAt, nil
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
