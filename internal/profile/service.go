package profile

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"skillsync/internal/models"
)

// UserStore reads and writes user records; the auth repository satisfies it.
type UserStore interface {
	GetUserByID(id uint) (*models.User, error)
	UpdateUser(user *models.User) error
}

// ObjectUploader stores avatar bytes and returns an opaque reference.
type ObjectUploader interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}

type Service struct {
	users   UserStore
	objects ObjectUploader
}

func NewService(users UserStore, objects ObjectUploader) *Service {
	return &Service{
		users:   users,
		objects: objects,
	}
}

type ProfileUpdate struct {
	Headline *string `json:"headline"`
	Bio      *string `json:"bio"`
	Skills   *string `json:"skills"`
}

// Get returns the caller's own profile.
func (s *Service) Get(principal models.Principal) (*models.User, error) {
	return s.users.GetUserByID(principal.ID)
}

// GetPublic returns another user's profile.
func (s *Service) GetPublic(id uint) (*models.User, error) {
	return s.users.GetUserByID(id)
}

// Update applies the provided profile fields to the caller's record.
func (s *Service) Update(principal models.Principal, update ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetUserByID(principal.ID)
	if err != nil {
		return nil, err
	}

	if update.Headline != nil {
		user.Headline = *update.Headline
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Skills != nil {
		user.Skills = *update.Skills
	}

	if err := s.users.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores the bytes and records the returned reference.
func (s *Service) UploadAvatar(ctx context.Context, principal models.Principal, filename string, reader io.Reader, size int64, contentType string) (*models.User, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty upload", models.ErrInvalidArgument)
	}

	user, err := s.users.GetUserByID(principal.ID)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("avatars/%d/%s%s", principal.ID, uuid.New().String(), path.Ext(filename))
	ref, err := s.objects.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	user.AvatarRef = ref
	if err := s.users.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
