// Package middleware holds the request-level guards applied by the HTTP
// surface.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/mujeeb218353/youtube-backend/cache"
	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/services"
)

// AccessTokenCookie is the cookie carrying the access token; the
// Authorization header is accepted as an alternative carrier.
const AccessTokenCookie = "accessToken"

// Auth returns the auth gate: it extracts a bearer access token from the
// cookie or Authorization header, verifies it, loads the identity and
// attaches the sanitized view to the request context. Every failure mode is
// surfaced as 401; the specific cause goes to the logs only.
func Auth(tokens *services.TokenService, users domain.UserRepository, userCache cache.UserCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return serrors.NewUnauthorized("unauthorized request", nil)
			}

			ctx := c.Request().Context()

			if entry, ok := userCache.Get(ctx, raw); ok {
				c.SetRequest(c.Request().WithContext(domain.WithUser(ctx, entry.User)))
				return next(c)
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				log.Debug().Err(err).Msg("access token verification failed")
				return serrors.NewUnauthorized("invalid access token", err)
			}

			user, err := users.FindByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Deleted account with a still-valid token.
					log.Debug().Str("user_id", claims.Subject).Msg("token for deleted user")
					return serrors.NewUnauthorized("invalid access token", nil)
				}
				return serrors.NewInternal("failed to load user", err)
			}

			public := user.Sanitized()
			if err := userCache.Set(ctx, raw, &cache.Entry{
				User:      public,
				ExpiresAt: claims.ExpiresAt.Time,
			}); err != nil {
				log.Warn().Err(err).Msg("failed to cache authenticated user")
			}

			c.SetRequest(c.Request().WithContext(domain.WithUser(ctx, public)))
			return next(c)
		}
	}
}

// OptionalAuth attaches the identity when a valid access token is present
// but never rejects the request. Public routes use it so logged-in viewers
// are still recognized (view counting, watch history).
func OptionalAuth(tokens *services.TokenService, users domain.UserRepository, userCache cache.UserCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return next(c)
			}
			ctx := c.Request().Context()

			if entry, ok := userCache.Get(ctx, raw); ok {
				c.SetRequest(c.Request().WithContext(domain.WithUser(ctx, entry.User)))
				return next(c)
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				return next(c)
			}
			user, err := users.FindByID(ctx, claims.Subject)
			if err != nil {
				return next(c)
			}

			public := user.Sanitized()
			if err := userCache.Set(ctx, raw, &cache.Entry{
				User:      public,
				ExpiresAt: claims.ExpiresAt.Time,
			}); err != nil {
				log.Warn().Err(err).Msg("failed to cache authenticated user")
			}
			c.SetRequest(c.Request().WithContext(domain.WithUser(ctx, public)))
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireUser fetches the authenticated user attached by Auth, for handlers
// on protected routes.
func RequireUser(c echo.Context) (*domain.PublicUser, error) {
	user, ok := domain.UserFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}
	return user, nil
}
