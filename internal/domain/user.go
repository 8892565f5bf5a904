package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profilePic"`
	Resume       string    `json:"resume"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPublic is what auth routes return. Never carries the hash.
type UserPublic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserProfile is the projection served by the profile routes.
type UserProfile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profilePic"`
	Resume       string    `json:"resume"`
	RegisteredAt time.Time `json:"registeredAt"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func (u *User) Public() UserPublic {
	return UserPublic{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Bio:          u.Bio,
		ProfilePic:   u.ProfilePic,
		Resume:       u.Resume,
		RegisteredAt: u.CreatedAt,
		LastUpdated:  u.UpdatedAt,
	}
}

// SessionPayload snapshots the user for the session store.
func (u *User) SessionPayload() SessionPayload {
	return SessionPayload{UserID: u.ID, Name: u.Name, Email: u.Email}
}

// ProfileUpdate holds the optional fields of a profile edit. Nil means untouched.
type ProfileUpdate struct {
	Name *string
	Bio  *string
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	SetProfilePic(ctx context.Context, id, url string) (*User, error)
	SetResume(ctx context.Context, id, url string) (*User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a successful register/login: the public user plus the
// session that now represents them.
type AuthResult struct {
	User    UserPublic
	Session *Session
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	CurrentUser(ctx context.Context, identity Identity) (*UserPublic, error)
	Logout(ctx context.Context, sessionID string) error
	ChangePassword(ctx context.Context, identity Identity, currentPassword, newPassword string) error
}
