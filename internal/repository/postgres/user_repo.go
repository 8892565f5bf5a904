package postgres

import (
	"context"
	"errors"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, password_hash, bio, profile_pic, resume, created_at, updated_at`

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, name, password_hash)
              VALUES ($1, $2, $3, $4)
              RETURNING bio, profile_pic, resume, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash).Scan(
		&user.Bio, &user.ProfilePic, &user.Resume, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateEmail()
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperror.NotFound("User not found")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if !validID(id) {
		return apperror.NotFound("User not found")
	}
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

// UpdateProfile applies only the non-nil fields of update.
func (r *userRepo) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	if !validID(id) {
		return nil, apperror.NotFound("User not found")
	}
	query := `UPDATE users
              SET name = COALESCE($2, name), bio = COALESCE($3, bio), updated_at = now()
              WHERE id = $1
              RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, update.Name, update.Bio))
}

func (r *userRepo) SetProfilePic(ctx context.Context, id, url string) (*domain.User, error) {
	return r.setColumn(ctx, "profile_pic", id, url)
}

func (r *userRepo) SetResume(ctx context.Context, id, url string) (*domain.User, error) {
	return r.setColumn(ctx, "resume", id, url)
}

// setColumn is only called with the constant column names above.
func (r *userRepo) setColumn(ctx context.Context, column, id, value string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperror.NotFound("User not found")
	}
	query := `UPDATE users SET ` + column + ` = $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, value))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Bio,
		&u.ProfilePic, &u.Resume, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return &u, nil
}
