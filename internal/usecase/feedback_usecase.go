package usecase

import (
	"context"
	"strings"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/google/uuid"
)

type feedbackUsecase struct {
	repo domain.FeedbackRepository
}

func NewFeedbackUsecase(repo domain.FeedbackRepository) domain.FeedbackUsecase {
	return &feedbackUsecase{repo: repo}
}

// Submit stores anonymous feedback. Visibility is derived from the message
// type and cannot be chosen by the submitter.
func (u *feedbackUsecase) Submit(ctx context.Context, in domain.FeedbackInput) error {
	f := &domain.Feedback{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		MessageType: strings.TrimSpace(in.MessageType),
		Message:     strings.TrimSpace(in.Message),
	}
	if f.Name == "" || f.Email == "" || f.MessageType == "" || f.Message == "" {
		return apperror.Validation("All fields are required")
	}
	if !domain.ValidMessageType(f.MessageType) {
		return apperror.Validation("Invalid message type")
	}
	f.IsPublic = f.MessageType == domain.MessageTypeFeedback

	return u.repo.Create(ctx, f)
}

func (u *feedbackUsecase) ListPublic(ctx context.Context) ([]domain.FeedbackPublic, error) {
	items, err := u.repo.ListPublic(ctx, domain.PublicFeedbackLimit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.FeedbackPublic, 0, len(items))
	for i := range items {
		if !items[i].IsPublic {
			continue
		}
		out = append(out, items[i].Public())
		if len(out) == domain.PublicFeedbackLimit {
			break
		}
	}
	return out, nil
}
