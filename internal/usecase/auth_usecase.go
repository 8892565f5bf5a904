package usecase

import (
	"context"
	"strings"
	"sync"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/security"

	"github.com/google/uuid"
)

type authUsecase struct {
	userRepo domain.UserRepository
	sessions domain.SessionStore
}

func NewAuthUsecase(userRepo domain.UserRepository, sessions domain.SessionStore) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, sessions: sessions}
}

func (u *authUsecase) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperror.Validation("Name, email and password are required")
	}

	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperror.DuplicateEmail()
	}
	if err != nil && !apperror.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	// A concurrent registration can still win the race; the unique index
	// turns that into DuplicateEmail here.
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.openSession(ctx, user)
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.ErrNotFound) {
			// Burn a comparison so unknown emails cost the same as wrong passwords.
			security.ComparePassword(dummyHash(), password)
			return nil, apperror.InvalidCredentials()
		}
		return nil, err
	}

	if !security.ComparePassword(user.PasswordHash, password) {
		return nil, apperror.InvalidCredentials()
	}

	return u.openSession(ctx, user)
}

// CurrentUser re-reads the user row so profile edits show up immediately.
func (u *authUsecase) CurrentUser(ctx context.Context, identity domain.Identity) (*domain.UserPublic, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	user, err := u.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if apperror.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Unauthorized")
		}
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// Logout succeeds whether or not the session still exists.
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.sessions.Destroy(ctx, sessionID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error {
	if !identity.Authenticated() {
		return apperror.Unauthorized("Unauthorized")
	}
	if currentPassword == "" || newPassword == "" {
		return apperror.Validation("Current and new password are required")
	}

	user, err := u.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if !security.ComparePassword(user.PasswordHash, currentPassword) {
		return apperror.BadRequest("Current password is incorrect")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	return u.userRepo.UpdatePassword(ctx, user.ID, hash)
}

func (u *authUsecase) openSession(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	sess, err := u.sessions.Create(ctx, user.SessionPayload())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{User: user.Public(), Session: sess}, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = security.HashPassword(uuid.NewString())
	})
	return dummy
}
