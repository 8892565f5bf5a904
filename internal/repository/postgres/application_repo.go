package postgres

import (
	"context"
	"errors"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

const applicationColumns = `id, user_id, company, role, status, application_date,
	link, location, salary, created_at, updated_at`

type applicationRepo struct {
	db DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db DB) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Create inserts a new application
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, user_id, company, role, status, application_date, link, location, salary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		app.ID,
		app.UserID,
		app.Company,
		app.Role,
		app.Status,
		app.ApplicationDate,
		app.Link,
		app.Location,
		app.Salary,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	if !validID(id) {
		return nil, apperror.NotFound("Application not found")
	}
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRow(ctx, query, id))
}

// ListByOwner returns the owner's applications, newest application date
// first. An empty status matches every status.
func (r *applicationRepo) ListByOwner(ctx context.Context, ownerID, status string) ([]domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY application_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// UpdateOwned changes the non-empty patch fields in one statement scoped
// by owner, so a foreign id matches nothing.
func (r *applicationRepo) UpdateOwned(ctx context.Context, id, ownerID string, patch domain.ApplicationPatch) (*domain.Application, error) {
	if !validID(id) {
		return nil, apperror.NotFound("Application not found")
	}
	query := `
		UPDATE applications
		SET status     = COALESCE(NULLIF($3, ''), status),
		    location   = COALESCE(NULLIF($4, ''), location),
		    salary     = COALESCE(NULLIF($5, ''), salary),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + applicationColumns

	return scanApplication(r.db.QueryRow(ctx, query, id, ownerID, patch.Status, patch.Location, patch.Salary))
}

func (r *applicationRepo) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &a.Status, &a.ApplicationDate,
		&a.Link, &a.Location, &a.Salary, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}
	return &a, nil
}
