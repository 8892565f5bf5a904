package v1_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/session"
	"job-tracker-backend/pkg/apperror"
)

// toggleSigner signs with a real signer until failSign is set.
type toggleSigner struct {
	inner    *session.Signer
	failSign atomic.Bool
}

func (s *toggleSigner) Sign(sessionID string) (string, error) {
	if s.failSign.Load() {
		return "", errors.New("signing key unavailable")
	}
	return s.inner.Sign(sessionID)
}

func (s *toggleSigner) Verify(value string) (string, error) {
	return s.inner.Verify(value)
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]domain.User{}} }

func (r *memUsers) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return apperror.DuplicateEmail()
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (r *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	_, err := r.update(id, func(u *domain.User) { u.PasswordHash = hash })
	return err
}

func (r *memUsers) UpdateProfile(_ context.Context, id string, up domain.ProfileUpdate) (*domain.User, error) {
	return r.update(id, func(u *domain.User) {
		if up.Name != nil {
			u.Name = *up.Name
		}
		if up.Bio != nil {
			u.Bio = *up.Bio
		}
	})
}

func (r *memUsers) SetProfilePic(_ context.Context, id, url string) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.ProfilePic = url })
}

func (r *memUsers) SetResume(_ context.Context, id, url string) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.Resume = url })
}

func (r *memUsers) update(id string, fn func(*domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u
	return &u, nil
}

type memApps struct {
	mu   sync.Mutex
	byID map[string]domain.Application
}

func newMemApps() *memApps { return &memApps{byID: map[string]domain.Application{}} }

func (r *memApps) Create(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now
	r.byID[app.ID] = *app
	return nil
}

func (r *memApps) GetByID(_ context.Context, id string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[id]
	if !ok {
		return nil, apperror.NotFound("Application not found")
	}
	return &app, nil
}

func (r *memApps) ListByOwner(_ context.Context, ownerID, status string) ([]domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Application{}
	for _, app := range r.byID {
		if app.UserID == ownerID && (status == "" || app.Status == status) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicationDate.After(out[j].ApplicationDate) })
	return out, nil
}

func (r *memApps) UpdateOwned(_ context.Context, id, ownerID string, p domain.ApplicationPatch) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[id]
	if !ok || app.UserID != ownerID {
		return nil, apperror.NotFound("Application not found")
	}
	if p.Status != "" {
		app.Status = p.Status
	}
	if p.Location != "" {
		app.Location = p.Location
	}
	if p.Salary != "" {
		app.Salary = p.Salary
	}
	app.UpdatedAt = time.Now().UTC()
	r.byID[id] = app
	return &app, nil
}

func (r *memApps) DeleteOwned(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[id]
	if !ok || app.UserID != ownerID {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type memFeedback struct {
	mu    sync.Mutex
	items []domain.Feedback
}

func (r *memFeedback) Create(_ context.Context, f *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.CreatedAt = time.Now().UTC().Add(time.Duration(len(r.items)) * time.Millisecond)
	r.items = append(r.items, *f)
	return nil
}

func (r *memFeedback) ListPublic(_ context.Context, limit int) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Feedback{}
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].IsPublic {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}
