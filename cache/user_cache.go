// Package cache maps verified access tokens to their sanitized identities so
// the auth gate can skip signature verification and the user lookup on
// repeated requests. Entries expire with the token.
package cache

import (
	"context"
	"time"

	"github.com/mujeeb218353/youtube-backend/domain"
)

// Entry is a cached authentication result.
type Entry struct {
	User      *domain.PublicUser `json:"user"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// UserCache stores authentication results keyed by access token. Lookups for
// missing or expired entries report !ok; cache failures are never fatal to a
// request.
type UserCache interface {
	Get(ctx context.Context, token string) (*Entry, bool)
	Set(ctx context.Context, token string, entry *Entry) error
	Delete(ctx context.Context, token string) error
}
