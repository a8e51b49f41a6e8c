// Package echo wires the HTTP surface: routes, handlers, cookie emission and
// the error handler that renders every failure through the shared envelope.
package echo

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/middleware"
	"github.com/mujeeb218353/youtube-backend/mongodb"
	"github.com/mujeeb218353/youtube-backend/services"
)

// RefreshTokenCookie names the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// API holds the handler dependencies.
type API struct {
	sessions     *services.SessionService
	users        *services.UserService
	videos       *services.VideoService
	cookieSecure bool
}

// NewAPI initializes the HTTP API.
func NewAPI(
	sessions *services.SessionService,
	users *services.UserService,
	videos *services.VideoService,
	cookieSecure bool,
) *API {
	return &API{
		sessions:     sessions,
		users:        users,
		videos:       videos,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers all routes under /api/v1. authGate guards the
// protected ones; optionalGate attaches the identity on public video reads
// without requiring one.
func (a *API) RegisterRoutes(e *echo.Echo, authGate, optionalGate echo.MiddlewareFunc) {
	e.GET("/healthz", a.HealthHandler)

	v1 := e.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", a.RegisterHandler)
	users.POST("/login", a.LoginHandler)
	users.POST("/refresh-token", a.RefreshHandler)
	users.POST("/logout", a.LogoutHandler, authGate)
	users.GET("/current-user", a.CurrentUserHandler, authGate)
	users.PATCH("/update-account", a.UpdateAccountHandler, authGate)
	users.POST("/change-password", a.ChangePasswordHandler, authGate)
	users.PATCH("/avatar", a.UpdateAvatarHandler, authGate)
	users.PATCH("/cover-image", a.UpdateCoverImageHandler, authGate)
	users.GET("/history", a.WatchHistoryHandler, authGate)

	videos := v1.Group("/videos")
	videos.GET("", a.ListVideosHandler, optionalGate)
	videos.GET("/:id", a.GetVideoHandler, optionalGate)
	videos.POST("", a.PublishVideoHandler, authGate)
	videos.PATCH("/:id", a.UpdateVideoHandler, authGate)
	videos.DELETE("/:id", a.DeleteVideoHandler, authGate)
	videos.PATCH("/:id/toggle-publish", a.TogglePublishHandler, authGate)
}

// HealthHandler reports liveness and store reachability.
func (a *API) HealthHandler(c echo.Context) error {
	if err := mongodb.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorHandler renders every error through the shared envelope. Wire it as
// echo's HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var apiErr *serrors.APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
		message = apiErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
	}

	if jsonErr := c.JSON(status, &serrors.APIError{
		StatusCode: status,
		Message:    message,
	}); jsonErr != nil {
		log.Error().Err(jsonErr).Msg("failed to write error response")
	}
}

func (a *API) setTokenCookies(c echo.Context, access, refresh string, accessExp, refreshExp time.Time) {
	c.SetCookie(a.tokenCookie(middleware.AccessTokenCookie, access, accessExp))
	c.SetCookie(a.tokenCookie(RefreshTokenCookie, refresh, refreshExp))
}

func (a *API) clearTokenCookies(c echo.Context) {
	expired := time.Now().Add(-time.Hour)
	c.SetCookie(a.tokenCookie(middleware.AccessTokenCookie, "", expired))
	c.SetCookie(a.tokenCookie(RefreshTokenCookie, "", expired))
}

func (a *API) tokenCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
