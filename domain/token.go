package domain

import "time"

// TokenPair carries a freshly issued access/refresh token pair. The refresh
// token is mirrored onto the user record by the caller; the access token is
// never persisted.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}
