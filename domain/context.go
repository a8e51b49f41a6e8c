package domain

import "context"

type userContextKey struct{}

// WithUser returns a context carrying the authenticated user's sanitized view.
func WithUser(ctx context.Context, user *PublicUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the authenticated user attached by the auth
// middleware, if any.
func UserFromContext(ctx context.Context) (*PublicUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(*PublicUser)
	return user, ok
}
