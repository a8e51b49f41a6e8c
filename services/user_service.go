package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/internal/media"
)

// UserService covers profile management outside the credential core: account
// details, password change, avatar/cover replacement and watch history.
type UserService struct {
	users    domain.UserRepository
	videos   domain.VideoRepository
	hasher   PasswordHasher
	uploader media.Uploader
}

// NewUserService wires the profile service.
func NewUserService(
	users domain.UserRepository,
	videos domain.VideoRepository,
	hasher PasswordHasher,
	uploader media.Uploader,
) *UserService {
	return &UserService{users: users, videos: videos, hasher: hasher, uploader: uploader}
}

// UpdateAccountInput carries optional profile fields; empty values are left
// untouched.
type UpdateAccountInput struct {
	FullName string
	Email    string
}

// UpdateAccount updates full name and/or email.
func (s *UserService) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (*domain.PublicUser, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" && in.Email == "" {
		return nil, serrors.NewValidation("nothing to update")
	}

	upd := domain.UserUpdate{}
	if in.FullName != "" {
		upd.FullName = &in.FullName
	}
	if in.Email != "" {
		upd.Email = &in.Email
	}

	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, serrors.NewNotFound("user not found")
		case errors.Is(err, domain.ErrDuplicate):
			return nil, serrors.NewConflict("email already in use")
		default:
			return nil, serrors.NewInternal("failed to update account", err)
		}
	}
	return user.Sanitized(), nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return serrors.NewValidation("old and new password are required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return serrors.NewNotFound("user not found")
		}
		return serrors.NewInternal("failed to look up user", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, oldPassword); err != nil {
		return serrors.NewInvalidCredentials()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return serrors.NewInternal("failed to hash password", err)
	}
	if _, err := s.users.Update(ctx, userID, domain.UserUpdate{PasswordHash: &hash}); err != nil {
		return serrors.NewInternal("failed to update password", err)
	}

	log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// UpdateAvatar replaces the avatar image.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, filename string, r io.Reader) (*domain.PublicUser, error) {
	return s.updateImage(ctx, userID, filename, r, true)
}

// UpdateCoverImage replaces the cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, filename string, r io.Reader) (*domain.PublicUser, error) {
	return s.updateImage(ctx, userID, filename, r, false)
}

func (s *UserService) updateImage(ctx context.Context, userID, filename string, r io.Reader, avatar bool) (*domain.PublicUser, error) {
	if r == nil {
		return nil, serrors.NewValidation("image file is required")
	}

	asset, err := s.uploader.Upload(ctx, filename, r)
	if err != nil {
		return nil, serrors.NewInternal("failed to upload image", err)
	}

	upd := domain.UserUpdate{}
	if avatar {
		upd.Avatar = &asset.URL
	} else {
		upd.CoverImage = &asset.URL
	}
	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, serrors.NewNotFound("user not found")
		}
		return nil, serrors.NewInternal("failed to update image", err)
	}
	return user.Sanitized(), nil
}

// WatchHistory returns the user's watched videos, most recent last. Videos
// deleted since watching are skipped.
func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]*domain.Video, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, serrors.NewNotFound("user not found")
		}
		return nil, serrors.NewInternal("failed to look up user", err)
	}

	history := make([]*domain.Video, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		video, err := s.videos.FindByID(ctx, videoID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, serrors.NewInternal("failed to load watch history", err)
		}
		history = append(history, video)
	}
	return history, nil
}
