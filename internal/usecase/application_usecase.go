package usecase

import (
	"context"
	"strings"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/google/uuid"
)

type applicationUsecase struct {
	appRepo domain.ApplicationRepository
	now     func() time.Time
}

func NewApplicationUsecase(appRepo domain.ApplicationRepository) domain.ApplicationUsecase {
	return &applicationUsecase{appRepo: appRepo, now: time.Now}
}

func (u *applicationUsecase) List(ctx context.Context, identity domain.Identity, status string) ([]domain.Application, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	if status != "" && !domain.ValidApplicationStatus(status) {
		return nil, apperror.Validation("Invalid status filter")
	}
	return u.appRepo.ListByOwner(ctx, identity.UserID, status)
}

// Get answers 404 for foreign applications exactly as for missing ones.
func (u *applicationUsecase) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Application, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.OwnedBy(identity, app) {
		return nil, apperror.NotFound("Application not found")
	}
	return app, nil
}

func (u *applicationUsecase) Create(ctx context.Context, identity domain.Identity, in domain.ApplicationInput) (*domain.Application, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	company := strings.TrimSpace(in.Company)
	role := strings.TrimSpace(in.Role)
	if company == "" || role == "" {
		return nil, apperror.Validation("Company and role are required")
	}

	status := in.Status
	if status == "" {
		status = domain.ApplicationStatusApplied
	}
	if !domain.ValidApplicationStatus(status) {
		return nil, apperror.Validation("Invalid status")
	}

	date := u.now().UTC()
	if in.ApplicationDate != nil && !in.ApplicationDate.IsZero() {
		date = in.ApplicationDate.UTC()
	}

	app := &domain.Application{
		ID:              uuid.NewString(),
		UserID:          identity.UserID,
		Company:         company,
		Role:            role,
		Status:          status,
		ApplicationDate: date,
		Link:            strings.TrimSpace(in.Link),
		Location:        strings.TrimSpace(in.Location),
		Salary:          strings.TrimSpace(in.Salary),
	}
	if err := u.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Update writes through a single owner-scoped statement. A foreign id
// matches no row and comes back as 404.
func (u *applicationUsecase) Update(ctx context.Context, identity domain.Identity, id string, patch domain.ApplicationPatch) (*domain.Application, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	if patch.Status != "" && !domain.ValidApplicationStatus(patch.Status) {
		return nil, apperror.Validation("Invalid status")
	}
	patch.Location = strings.TrimSpace(patch.Location)
	patch.Salary = strings.TrimSpace(patch.Salary)

	if patch.Empty() {
		return u.Get(ctx, identity, id)
	}
	return u.appRepo.UpdateOwned(ctx, id, identity.UserID, patch)
}

func (u *applicationUsecase) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if _, err := u.Get(ctx, identity, id); err != nil {
		return err
	}
	deleted, err := u.appRepo.DeleteOwned(ctx, id, identity.UserID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Application not found")
	}
	return nil
}
