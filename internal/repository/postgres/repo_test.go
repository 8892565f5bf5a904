package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB records the last statement and answers from canned results.
type fakeDB struct {
	sql  string
	args []any

	row     pgx.Row
	rows    pgx.Rows
	tag     pgconn.CommandTag
	err     error
	touched bool
}

func (f *fakeDB) record(sql string, args []any) {
	f.touched = true
	f.sql = sql
	f.args = args
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	return f.tag, f.err
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	return f.rows, f.err
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	return f.row
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("scan arity mismatch")
	}
	for i, v := range r.values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return fakeRow{values: r.data[r.pos-1]}.Scan(dest...)
}

const (
	userID  = "6f1c1b1e-8a8e-4c39-9d6b-1f3d2f6a9c01"
	otherID = "0b2e7c55-3d44-4b7a-a0a4-5c6b8f9e1d02"
	appID   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func userRow(now time.Time) []any {
	return []any{userID, "a@x.com", "Alice", "$2a$10$hash", "", "", "", now, now}
}

func appRow(owner string, date time.Time) []any {
	return []any{appID, owner, "Acme", "Engineer", "Applied", date, "", "", "", date, date}
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: pgUniqueViolation}}}
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &domain.User{ID: userID, Email: "a@x.com"})
	assert.True(t, apperror.Is(err, apperror.ErrDuplicateEmail))
	assert.Equal(t, 400, apperror.StatusOf(err))
}

func TestUserRepo_GetByEmail(t *testing.T) {
	now := time.Now().UTC()
	db := &fakeDB{row: fakeRow{values: userRow(now)}}
	repo := NewUserRepository(db)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
	assert.Equal(t, []any{"a@x.com"}, db.args)
}

func TestUserRepo_NotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewUserRepository(db)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))

	db.touched = false
	_, err = repo.GetByID(context.Background(), "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
	assert.False(t, db.touched, "malformed ids never reach the database")
}

func TestUserRepo_UpdatePasswordMissingRow(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewUserRepository(db)

	err := repo.UpdatePassword(context.Background(), userID, "newhash")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))

	db.tag = pgconn.NewCommandTag("UPDATE 1")
	assert.NoError(t, repo.UpdatePassword(context.Background(), userID, "newhash"))
}

func TestUserRepo_UpdateProfilePassesNilsThrough(t *testing.T) {
	now := time.Now().UTC()
	db := &fakeDB{row: fakeRow{values: userRow(now)}}
	repo := NewUserRepository(db)

	bio := ""
	_, err := repo.UpdateProfile(context.Background(), userID, domain.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.Len(t, db.args, 3)
	assert.Nil(t, db.args[1], "nil name leaves the column alone")
	assert.Equal(t, &bio, db.args[2])
}

func TestApplicationRepo_OwnerScopedWrites(t *testing.T) {
	now := time.Now().UTC()
	db := &fakeDB{row: fakeRow{values: appRow(userID, now)}}
	repo := NewApplicationRepository(db)

	_, err := repo.UpdateOwned(context.Background(), appID, userID, domain.ApplicationPatch{Status: "Offer"})
	require.NoError(t, err)
	assert.Contains(t, db.sql, "WHERE id = $1 AND user_id = $2")
	assert.Equal(t, []any{appID, userID, "Offer", "", ""}, db.args)

	db.tag = pgconn.NewCommandTag("DELETE 0")
	deleted, err := repo.DeleteOwned(context.Background(), appID, otherID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Contains(t, db.sql, "user_id = $2")
	assert.Equal(t, []any{appID, otherID}, db.args)
}

func TestApplicationRepo_UpdateForeignIsNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewApplicationRepository(db)

	_, err := repo.UpdateOwned(context.Background(), appID, otherID, domain.ApplicationPatch{Status: "Offer"})
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))

	_, err = repo.UpdateOwned(context.Background(), "123", otherID, domain.ApplicationPatch{Status: "Offer"})
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
}

func TestApplicationRepo_ListByOwner(t *testing.T) {
	d1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: &fakeRows{data: [][]any{appRow(userID, d1), appRow(userID, d2)}}}
	repo := NewApplicationRepository(db)

	apps, err := repo.ListByOwner(context.Background(), userID, "Applied")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, d1, apps[0].ApplicationDate)
	assert.Contains(t, db.sql, "ORDER BY application_date DESC")
	assert.Equal(t, []any{userID, "Applied"}, db.args)
}

func TestApplicationRepo_ListEmptyIsNotNil(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{}}
	apps, err := NewApplicationRepository(db).ListByOwner(context.Background(), userID, "")
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestFeedbackRepo_ListPublic(t *testing.T) {
	now := time.Now().UTC()
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		{appID, "Bob", "b@x.com", "feedback", "Great", true, now},
	}}}
	repo := NewFeedbackRepository(db)

	items, err := repo.ListPublic(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, strings.Contains(db.sql, "WHERE is_public = true"))
	assert.Equal(t, []any{domain.PublicFeedbackLimit}, db.args)
}
