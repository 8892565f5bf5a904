package domain

import "context"

// Upload is a file received from a client, already read into memory.
type Upload struct {
	Filename    string
	ContentType string // as declared by the client
	Data        []byte
}

// ObjectStore persists binary assets and returns a public URL for them.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, identity Identity) (*UserProfile, error)
	UpdateProfile(ctx context.Context, identity Identity, update ProfileUpdate) (*UserProfile, error)
	UploadImage(ctx context.Context, identity Identity, file Upload) (string, error)
	DeleteProfilePicture(ctx context.Context, identity Identity) (*UserProfile, error)
	UploadResume(ctx context.Context, identity Identity, file Upload) (*UserProfile, error)
	DeleteResume(ctx context.Context, identity Identity) (*UserProfile, error)
}
