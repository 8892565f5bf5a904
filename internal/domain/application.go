package domain

import (
	"context"
	"time"
)

// Application status constants
const (
	ApplicationStatusApplied   = "Applied"
	ApplicationStatusInterview = "Interview"
	ApplicationStatusOffer     = "Offer"
	ApplicationStatusRejected  = "Rejected"
)

var applicationStatuses = map[string]bool{
	ApplicationStatusApplied:   true,
	ApplicationStatusInterview: true,
	ApplicationStatusOffer:     true,
	ApplicationStatusRejected:  true,
}

func ValidApplicationStatus(s string) bool {
	return applicationStatuses[s]
}

// Application is a job application tracked by its owner.
type Application struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user"`
	Company         string    `json:"company"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	ApplicationDate time.Time `json:"applicationDate"`
	Link            string    `json:"link,omitempty"`
	Location        string    `json:"location,omitempty"`
	Salary          string    `json:"salary,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OwnedBy is the single authorization predicate for application access.
func OwnedBy(identity Identity, app *Application) bool {
	return app != nil && identity.Authenticated() && app.UserID == identity.UserID
}

type ApplicationInput struct {
	Company         string
	Role            string
	Status          string
	ApplicationDate *time.Time
	Link            string
	Location        string
	Salary          string
}

// ApplicationPatch carries the fields a PUT may change. Empty means untouched.
type ApplicationPatch struct {
	Status   string
	Location string
	Salary   string
}

func (p ApplicationPatch) Empty() bool {
	return p.Status == "" && p.Location == "" && p.Salary == ""
}

// ApplicationRepository defines data access methods for applications.
// Every method that reads or writes a single row is scoped by owner.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	ListByOwner(ctx context.Context, ownerID, status string) ([]Application, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch ApplicationPatch) (*Application, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
}

// ApplicationUsecase defines business logic for applications
type ApplicationUsecase interface {
	List(ctx context.Context, identity Identity, status string) ([]Application, error)
	Get(ctx context.Context, identity Identity, id string) (*Application, error)
	Create(ctx context.Context, identity Identity, in ApplicationInput) (*Application, error)
	Update(ctx context.Context, identity Identity, id string, patch ApplicationPatch) (*Application, error)
	Delete(ctx context.Context, identity Identity, id string) error
}
