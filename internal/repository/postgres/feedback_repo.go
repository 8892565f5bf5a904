package postgres

import (
	"context"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
)

type feedbackRepo struct {
	db DB
}

func NewFeedbackRepository(db DB) domain.FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	query := `INSERT INTO feedback (id, name, email, message_type, message, is_public)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING created_at`
	err := r.db.QueryRow(ctx, query, f.ID, f.Name, f.Email, f.MessageType, f.Message, f.IsPublic).Scan(&f.CreatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ListPublic returns visible feedback, newest first.
func (r *feedbackRepo) ListPublic(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = domain.PublicFeedbackLimit
	}
	query := `SELECT id, name, email, message_type, message, is_public, created_at
              FROM feedback
              WHERE is_public = true
              ORDER BY created_at DESC
              LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	items := make([]domain.Feedback, 0, limit)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.MessageType, &f.Message, &f.IsPublic, &f.CreatedAt); err != nil {
			return nil, apperror.Internal(err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}
