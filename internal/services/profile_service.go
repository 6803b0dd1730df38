package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/models"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes.
const MaxAvatarSize = 5 << 20

// UploadAvatar stores img in the image store and records its URL on the user.
func (s *AuthService) UploadAvatar(ctx context.Context, userID uuid.UUID, img AvatarUpload) (*models.User, error) {
	if len(img.Data) == 0 {
		return nil, newError(KindValidation, "Provide an image")
	}
	if len(img.Data) > MaxAvatarSize {
		return nil, newError(KindValidation, "Image is too large")
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, newError(KindValidation, "Only image files are allowed")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.avatars.Upload(ctx, user.ID, img)
	if err != nil {
		return nil, wrapError(KindUpstream, "Failed to upload image", err)
	}

	if err := s.users.Update(ctx, user.ID, models.UserUpdate{Avatar: &url}); err != nil {
		return nil, s.storeError("Update", err)
	}

	s.invalidateProfile(ctx, user.ID)
	user.Avatar = url
	return user.Sanitized(), nil
}

// UpdateDetailsInput lists the profile fields to change. Nil fields are left
// as they are. Name, email and password may not be set to an empty string;
// mobile may.
type UpdateDetailsInput struct {
	Name     *string
	Email    *string
	Mobile   *string
	Password *string
}

// UpdateUserDetails applies the present fields of in to the user, re-hashing
// the password when one is given.
func (s *AuthService) UpdateUserDetails(ctx context.Context, userID uuid.UUID, in UpdateDetailsInput) (*models.User, error) {
	if in.Name == nil && in.Email == nil && in.Mobile == nil && in.Password == nil {
		return nil, newError(KindValidation, "Provide at least one field to update")
	}
	if (in.Name != nil && *in.Name == "") || (in.Email != nil && *in.Email == "") || (in.Password != nil && *in.Password == "") {
		return nil, newError(KindValidation, "name, email and password cannot be empty")
	}

	upd := models.UserUpdate{Name: in.Name, Email: in.Email, Mobile: in.Mobile}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	if err := s.users.Update(ctx, userID, upd); err != nil {
		switch {
		case errors.Is(err, database.ErrEmailTaken):
			return nil, newError(KindConflict, "This email is already in use")
		case errors.Is(err, database.ErrUserNotFound):
			return nil, newError(KindNotFound, "User not found")
		default:
			return nil, s.storeError("Update", err)
		}
	}

	s.invalidateProfile(ctx, userID)

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// GetUserDetails returns the user's profile without credentials, reading
// through the profile cache.
func (s *AuthService) GetUserDetails(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	cached, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		logging.LogError(s.logger, "profile cache read failed", err)
	}
	if ok {
		return cached, nil
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user = user.Sanitized()
	if err := s.cache.Set(ctx, user); err != nil {
		logging.LogError(s.logger, "profile cache write failed", err)
	}
	return user, nil
}

func (s *AuthService) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, newError(KindNotFound, "User not found")
		}
		return nil, s.storeError("FindByID", err)
	}
	return user, nil
}
