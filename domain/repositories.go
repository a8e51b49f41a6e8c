package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by repositories when no matching record exists.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// UserUpdate describes a partial update of a user record. Nil fields are left
// untouched.
type UserUpdate struct {
	FullName     *string
	Email        *string
	Avatar       *string
	CoverImage   *string
	PasswordHash *string
}

// UserRepository is the credential store contract. Implementations must make
// RotateRefreshToken an atomic compare-and-swap so that concurrent refresh
// calls racing on the same token cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByUsernameOrEmail matches either field; username comparison is
	// case-insensitive.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// Login uses this: any previously issued refresh token is invalidated.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces the stored refresh token only if the stored
	// value still equals current. Returns ErrNotFound when the swap did not
	// apply (user gone, or the token was already superseded).
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	// ClearRefreshToken unsets the stored refresh token. Clearing an already
	// cleared token is a no-op success.
	ClearRefreshToken(ctx context.Context, id string) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
	Delete(ctx context.Context, id string) error
}

// VideoListFilter selects and orders a page of videos.
type VideoListFilter struct {
	Page  int64
	Limit int64
	// Query is a free-text match against title and description.
	Query   string
	SortBy  string // created_at, views, duration, title
	SortAsc bool
	OwnerID string
	// IncludeUnpublished lists drafts too; only valid when OwnerID is the
	// requesting user.
	IncludeUnpublished bool
}

// Normalize clamps paging to usable values: page starts at 1, limit defaults
// to 10 and is capped at 100.
func (f *VideoListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
}

// VideoUpdate describes a partial update of a video record.
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *string
	IsPublished *bool
}

// VideoRepository persists video metadata.
type VideoRepository interface {
	Create(ctx context.Context, video *Video) error
	FindByID(ctx context.Context, id string) (*Video, error)
	List(ctx context.Context, filter VideoListFilter) ([]*Video, int64, error)
	Update(ctx context.Context, id string, upd VideoUpdate) (*Video, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}
