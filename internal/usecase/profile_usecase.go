package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/imaging"
	"job-tracker-backend/pkg/logger"
	"job-tracker-backend/pkg/security"
)

const (
	profilePictureDir = "profile_pictures"
	resumeDir         = "resumes"
)

type profileUsecase struct {
	userRepo       domain.UserRepository
	sessions       domain.SessionStore
	store          domain.ObjectStore
	maxUploadBytes int64
	now            func() time.Time
}

func NewProfileUsecase(userRepo domain.UserRepository, sessions domain.SessionStore, store domain.ObjectStore, maxUploadBytes int64) domain.ProfileUsecase {
	return &profileUsecase{
		userRepo:       userRepo,
		sessions:       sessions,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, identity domain.Identity) (*domain.UserProfile, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	user, err := u.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile sets bio as given (empty allowed) and name only when it is
// non-blank.
func (u *profileUsecase) UpdateProfile(ctx context.Context, identity domain.Identity, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			update.Name = nil
		} else {
			update.Name = &name
		}
	}

	user, err := u.userRepo.UpdateProfile(ctx, identity.UserID, update)
	if err != nil {
		return nil, err
	}
	return u.finish(ctx, identity, user)
}

// UploadImage stores a 500x500 JPEG rendition and points the profile at it.
func (u *profileUsecase) UploadImage(ctx context.Context, identity domain.Identity, file domain.Upload) (string, error) {
	if !identity.Authenticated() {
		return "", apperror.Unauthorized("Unauthorized")
	}
	if _, err := security.ValidateUpload(security.UploadImage, file.Filename, file.Data, u.maxUploadBytes); err != nil {
		return "", uploadError(err, "Only JPEG, PNG and WEBP images are allowed", u.maxUploadBytes)
	}

	avatar, err := imaging.Avatar(file.Data)
	if err != nil {
		return "", apperror.Validation("Invalid image file")
	}

	key := u.objectKey(profilePictureDir, identity.UserID, ".jpg")
	url, err := u.store.Put(ctx, key, "image/jpeg", avatar)
	if err != nil {
		return "", apperror.Upstream("Failed to upload image", err)
	}

	user, err := u.userRepo.SetProfilePic(ctx, identity.UserID, url)
	if err != nil {
		return "", err
	}
	u.refreshSession(ctx, identity, user)
	return url, nil
}

func (u *profileUsecase) DeleteProfilePicture(ctx context.Context, identity domain.Identity) (*domain.UserProfile, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	user, err := u.userRepo.SetProfilePic(ctx, identity.UserID, "")
	if err != nil {
		return nil, err
	}
	return u.finish(ctx, identity, user)
}

func (u *profileUsecase) UploadResume(ctx context.Context, identity domain.Identity, file domain.Upload) (*domain.UserProfile, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	if _, err := security.ValidateUpload(security.UploadResume, file.Filename, file.Data, u.maxUploadBytes); err != nil {
		return nil, uploadError(err, "Only PDF files are allowed", u.maxUploadBytes)
	}

	key := u.objectKey(resumeDir, identity.UserID, ".pdf")
	url, err := u.store.Put(ctx, key, "application/pdf", file.Data)
	if err != nil {
		return nil, apperror.Upstream("Failed to upload resume", err)
	}

	user, err := u.userRepo.SetResume(ctx, identity.UserID, url)
	if err != nil {
		return nil, err
	}
	return u.finish(ctx, identity, user)
}

func (u *profileUsecase) DeleteResume(ctx context.Context, identity domain.Identity) (*domain.UserProfile, error) {
	if !identity.Authenticated() {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	user, err := u.userRepo.SetResume(ctx, identity.UserID, "")
	if err != nil {
		return nil, err
	}
	return u.finish(ctx, identity, user)
}

func (u *profileUsecase) finish(ctx context.Context, identity domain.Identity, user *domain.User) (*domain.UserProfile, error) {
	u.refreshSession(ctx, identity, user)
	profile := user.Profile()
	return &profile, nil
}

// refreshSession rewrites the session snapshot after a profile mutation.
// The mutation is already committed, so a failure here is logged only.
func (u *profileUsecase) refreshSession(ctx context.Context, identity domain.Identity, user *domain.User) {
	if identity.SessionID == "" {
		return
	}
	if _, err := u.sessions.Replace(ctx, identity.SessionID, user.SessionPayload()); err != nil {
		logger.Log.Warn("session snapshot not refreshed", "user_id", user.ID, "error", err)
	}
}

func (u *profileUsecase) objectKey(dir, userID, ext string) string {
	return fmt.Sprintf("%s/%s_%d%s", dir, userID, u.now().UnixNano(), ext)
}

func uploadError(err error, typeMessage string, maxBytes int64) error {
	switch {
	case errors.Is(err, security.ErrEmptyUpload):
		return apperror.Validation("No file uploaded")
	case errors.Is(err, security.ErrUploadTooLarge):
		return apperror.Validation(fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20))
	default:
		return apperror.Validation(typeMessage)
	}
}
