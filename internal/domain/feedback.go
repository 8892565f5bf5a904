package domain

import (
	"context"
	"time"
)

const (
	MessageTypeFeedback   = "feedback"
	MessageTypeQuestion   = "question"
	MessageTypeSuggestion = "suggestion"
	MessageTypeOther      = "other"
)

// PublicFeedbackLimit caps the testimonial list.
const PublicFeedbackLimit = 9

var messageTypes = map[string]bool{
	MessageTypeFeedback:   true,
	MessageTypeQuestion:   true,
	MessageTypeSuggestion: true,
	MessageTypeOther:      true,
}

func ValidMessageType(s string) bool {
	return messageTypes[s]
}

type Feedback struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	MessageType string    `json:"messageType"`
	Message     string    `json:"message"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FeedbackPublic leaves out the submitter's email.
type FeedbackPublic struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MessageType string    `json:"messageType"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (f *Feedback) Public() FeedbackPublic {
	return FeedbackPublic{
		ID:          f.ID,
		Name:        f.Name,
		MessageType: f.MessageType,
		Message:     f.Message,
		CreatedAt:   f.CreatedAt,
	}
}

type FeedbackInput struct {
	Name        string
	Email       string
	MessageType string
	Message     string
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	ListPublic(ctx context.Context, limit int) ([]Feedback, error)
}

type FeedbackUsecase interface {
	Submit(ctx context.Context, in FeedbackInput) error
	ListPublic(ctx context.Context) ([]FeedbackPublic, error)
}
