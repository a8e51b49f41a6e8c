package echo

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mujeeb218353/youtube-backend/api"
	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/middleware"
	"github.com/mujeeb218353/youtube-backend/services"
)

// RegisterHandler creates a new account from a multipart form with avatar
// (required) and coverImage (optional) files.
func (a *API) RegisterHandler(c echo.Context) error {
	in := services.RegisterInput{
		FullName: c.FormValue("fullName"),
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	avatar, avatarFile, err := formFile(c, "avatar")
	if err != nil {
		return serrors.NewValidation("avatar file is required")
	}
	defer avatarFile.Close()
	in.AvatarName = avatar.Filename
	in.Avatar = avatarFile

	if cover, coverFile, err := formFile(c, "coverImage"); err == nil {
		defer coverFile.Close()
		in.CoverName = cover.Filename
		in.Cover = coverFile
	}

	user, err := a.sessions.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.NewResponse(http.StatusCreated, user, "user created successfully"))
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates by username or email and emits the token pair
// both as httpOnly cookies and in the body.
func (a *API) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return serrors.NewValidation("malformed request body")
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	result, err := a.sessions.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		return err
	}

	a.setTokenCookies(c,
		result.Tokens.AccessToken, result.Tokens.RefreshToken,
		result.Tokens.AccessExpiresAt, result.Tokens.RefreshExpiresAt)

	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, &api.LoginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "user logged in successfully"))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshHandler rotates the refresh token. The token arrives via the
// refreshToken cookie or, as a fallback, a body field.
func (a *API) RefreshHandler(c echo.Context) error {
	presented := ""
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := a.sessions.Refresh(c.Request().Context(), presented)
	if err != nil {
		return err
	}

	a.setTokenCookies(c, pair.AccessToken, pair.RefreshToken,
		pair.AccessExpiresAt, pair.RefreshExpiresAt)

	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, &api.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "access token refreshed"))
}

// LogoutHandler clears the stored refresh token and both cookies.
func (a *API) LogoutHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	if err := a.sessions.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}
	a.clearTokenCookies(c)
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, nil, "user logged out successfully"))
}

// CurrentUserHandler returns the authenticated identity.
func (a *API) CurrentUserHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, user, "current user fetched"))
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccountHandler updates full name and/or email.
func (a *API) UpdateAccountHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return serrors.NewValidation("malformed request body")
	}

	updated, err := a.users.UpdateAccount(c.Request().Context(), user.ID, services.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, updated, "account updated successfully"))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordHandler verifies the old password and stores the new one.
func (a *API) ChangePasswordHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return serrors.NewValidation("malformed request body")
	}

	if err := a.users.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, nil, "password changed successfully"))
}

// UpdateAvatarHandler replaces the avatar image.
func (a *API) UpdateAvatarHandler(c echo.Context) error {
	return a.updateImage(c, "avatar", a.users.UpdateAvatar)
}

// UpdateCoverImageHandler replaces the cover image.
func (a *API) UpdateCoverImageHandler(c echo.Context) error {
	return a.updateImage(c, "coverImage", a.users.UpdateCoverImage)
}

type imageUpdateFunc func(ctx context.Context, userID, filename string, r io.Reader) (*domain.PublicUser, error)

func (a *API) updateImage(c echo.Context, field string, update imageUpdateFunc) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	header, file, err := formFile(c, field)
	if err != nil {
		return serrors.NewValidation(field + " file is required")
	}
	defer file.Close()

	updated, err := update(c.Request().Context(), user.ID, header.Filename, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, updated, field+" updated successfully"))
}

// WatchHistoryHandler lists the authenticated user's watched videos.
func (a *API) WatchHistoryHandler(c echo.Context) error {
	user, err := middleware.RequireUser(c)
	if err != nil {
		return err
	}
	history, err := a.users.WatchHistory(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.NewResponse(http.StatusOK, history, "watch history fetched"))
}

func formFile(c echo.Context, field string) (*multipart.FileHeader, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return header, file, nil
}
