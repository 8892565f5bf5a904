package session

import (
	"context"
	"testing"
	"time"

	"job-tracker-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newMemoryManager(opts Options) (*Manager, *MemoryBackend, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	backend := NewMemoryBackend()
	backend.now = clock.Now
	m := NewManager(backend, opts)
	m.now = clock.Now
	return m, backend, clock
}

var alice = domain.SessionPayload{UserID: "u-alice", Name: "Alice", Email: "a@x.com"}

func TestManager_CreateAndGet(t *testing.T) {
	m, _, clock := newMemoryManager(Options{})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, s.ID, 64)
	assert.Equal(t, alice, s.Payload)
	assert.Equal(t, clock.Now().Add(DefaultTTL), s.ExpiresAt)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, alice, got.Payload)

	other, err := m.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID, "ids are random per session")
}

func TestManager_GetUnknown(t *testing.T) {
	m, _, _ := newMemoryManager(Options{})

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = m.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_FixedTTLExpires(t *testing.T) {
	m, backend, clock := newMemoryManager(Options{TTL: time.Hour})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = m.Get(ctx, s.ID)
	require.NoError(t, err, "reads do not extend a fixed TTL")

	clock.Advance(time.Minute)
	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, 0, backend.Len(), "expired session is purged")

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_RollingExtendsOnRead(t *testing.T) {
	m, _, clock := newMemoryManager(Options{TTL: time.Hour, Rolling: true})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		clock.Advance(45 * time.Minute)
		got, err := m.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(time.Hour), got.ExpiresAt)
	}
}

func TestManager_ReplaceRenewsTTLAndPayload(t *testing.T) {
	m, _, clock := newMemoryManager(Options{TTL: time.Hour})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)

	clock.Advance(50 * time.Minute)
	renamed := alice
	renamed.Name = "Alice B"
	updated, err := m.Replace(ctx, s.ID, renamed)
	require.NoError(t, err)
	assert.Equal(t, s.ID, updated.ID)
	assert.Equal(t, s.CreatedAt, updated.CreatedAt)

	clock.Advance(50 * time.Minute)
	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Payload.Name)
}

func TestManager_ReplaceUnknown(t *testing.T) {
	m, _, _ := newMemoryManager(Options{})

	_, err := m.Replace(context.Background(), "missing", alice)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DestroyIsIdempotent(t *testing.T) {
	m, _, _ := newMemoryManager(Options{})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, s.ID))
	require.NoError(t, m.Destroy(ctx, s.ID))
	require.NoError(t, m.Destroy(ctx, ""))

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryBackend_Sweep(t *testing.T) {
	_, backend, clock := newMemoryManager(Options{})
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, backend.Set(ctx, "b", []byte("2"), time.Hour))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, backend.Sweep())
	assert.Equal(t, 1, backend.Len())

	assert.ErrorIs(t, backend.Expire(ctx, "a", time.Hour), ErrKeyNotFound)
	assert.NoError(t, backend.Expire(ctx, "b", time.Hour))
}

func newRedisManager(t *testing.T, opts Options) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(NewRedisBackend(client), opts), mr
}

func TestRedisBackend_Lifecycle(t *testing.T) {
	m, mr := newRedisManager(t, Options{TTL: time.Hour})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+s.ID))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+s.ID))

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got.Payload)
	assert.False(t, got.ExpiresAt.IsZero())

	require.NoError(t, m.Destroy(ctx, s.ID))
	assert.False(t, mr.Exists(keyPrefix+s.ID))
	require.NoError(t, m.Destroy(ctx, s.ID))
}

func TestRedisBackend_TTLExpiry(t *testing.T) {
	m, mr := newRedisManager(t, Options{TTL: time.Hour})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)

	mr.FastForward(time.Hour + time.Second)

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisBackend_RollingTouchesTTL(t *testing.T) {
	m, mr := newRedisManager(t, Options{TTL: time.Hour, Rolling: true})
	ctx := context.Background()

	s, err := m.Create(ctx, alice)
	require.NoError(t, err)

	mr.FastForward(30 * time.Minute)
	_, err = m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+s.ID))
}

func TestRedisBackend_Unavailable(t *testing.T) {
	m, mr := newRedisManager(t, Options{})
	mr.Close()

	_, err := m.Get(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound, "store outages are not reported as a missing session")
}
