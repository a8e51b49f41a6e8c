package domain

import "time"

// User is the persisted account record underlying authentication and
// authorization decisions. The PasswordHash and RefreshToken fields never
// leave the backend; use Sanitized for anything client-facing.
type User struct {
	ID           string    `bson:"_id,omitempty"        json:"id"`
	Username     string    `bson:"username"             json:"username"` // unique, stored lowercased
	Email        string    `bson:"email"                json:"email"`    // unique
	FullName     string    `bson:"full_name"            json:"fullName"`
	Avatar       string    `bson:"avatar"               json:"avatar"`
	CoverImage   string    `bson:"cover_image,omitempty" json:"coverImage,omitempty"`
	PasswordHash string    `bson:"password_hash"        json:"-"`
	RefreshToken string    `bson:"refresh_token,omitempty" json:"-"` // single active session per account
	WatchHistory []string  `bson:"watch_history,omitempty" json:"-"` // ordered video ids, most recent last
	CreatedAt    time.Time `bson:"created_at"           json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at"           json:"updatedAt"`
}

// PublicUser is the sanitized view of a User: the password hash and the
// refresh token are stripped.
type PublicUser struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Sanitized returns the client-facing view of the user.
func (u *User) Sanitized() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
	}
}
