package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/internal/media"
)

// SessionService orchestrates the credential lifecycle: registration, login,
// token refresh and logout. Each account holds at most one active refresh
// token; issuing a new one invalidates the previous session.
type SessionService struct {
	users    domain.UserRepository
	hasher   PasswordHasher
	tokens   *TokenService
	uploader media.Uploader
}

// NewSessionService wires the session coordinator.
func NewSessionService(
	users domain.UserRepository,
	hasher PasswordHasher,
	tokens *TokenService,
	uploader media.Uploader,
) *SessionService {
	return &SessionService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
	}
}

// RegisterInput carries the registration form. Avatar is required; the cover
// image is optional.
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string

	AvatarName string
	Avatar     io.Reader
	CoverName  string
	Cover      io.Reader
}

// Register creates a new account and returns its sanitized view.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*domain.PublicUser, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, serrors.NewValidation("fullName, username, email and password are required")
	}
	if in.Avatar == nil {
		return nil, serrors.NewValidation("avatar file is required")
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, serrors.NewInternal("failed to check existing user", err)
	}
	if existing != nil {
		return nil, serrors.NewConflict("user with email or username already exists")
	}

	avatar, err := s.uploader.Upload(ctx, in.AvatarName, in.Avatar)
	if err != nil {
		return nil, serrors.NewInternal("failed to upload avatar", err)
	}
	var coverURL string
	if in.Cover != nil {
		cover, err := s.uploader.Upload(ctx, in.CoverName, in.Cover)
		if err != nil {
			return nil, serrors.NewInternal("failed to upload cover image", err)
		}
		coverURL = cover.URL
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, serrors.NewInternal("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, serrors.NewConflict("user with email or username already exists")
		}
		return nil, serrors.NewInternal("failed to create user", err)
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user.Sanitized(), nil
}

// LoginResult is what a successful login returns: the token pair plus the
// sanitized identity.
type LoginResult struct {
	User   *domain.PublicUser
	Tokens *domain.TokenPair
}

// Login authenticates by username or email. Unknown identity and wrong
// password are indistinguishable to the caller; the concrete cause goes to
// the debug log only.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, serrors.NewValidation("username/email and password are required")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, strings.ToLower(identifier), strings.ToLower(identifier))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug().Str("identifier", identifier).Msg("login failed: unknown identity")
			return nil, serrors.NewInvalidCredentials()
		}
		return nil, serrors.NewInternal("failed to look up user", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		log.Debug().Str("user_id", user.ID).Msg("login failed: password mismatch")
		return nil, serrors.NewInvalidCredentials()
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, serrors.NewInternal("failed to issue tokens", err)
	}

	// Overwriting the stored value invalidates any previously issued,
	// still-unexpired refresh token: single session per account.
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, serrors.NewInternal("failed to persist refresh token", err)
	}

	log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &LoginResult{User: user.Sanitized(), Tokens: pair}, nil
}

// Refresh exchanges a still-valid refresh token for a fresh pair, rotating
// the stored token. The rotation is a compare-and-swap at the store: of two
// concurrent calls presenting the same token, exactly one wins and the other
// gets an unauthorized failure.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*domain.TokenPair, error) {
	if presented == "" {
		return nil, serrors.NewUnauthorized("refresh token required", nil)
	}

	claims, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, serrors.NewUnauthorized("invalid refresh token", err)
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, serrors.NewUnauthorized("invalid refresh token", nil)
		}
		return nil, serrors.NewInternal("failed to look up user", err)
	}

	// Fast reject before issuing anything. The CAS below remains the
	// authoritative check.
	if user.RefreshToken != presented {
		log.Warn().Str("user_id", user.ID).Msg("refresh token reuse detected")
		return nil, serrors.NewUnauthorized("invalid refresh token", serrors.ErrTokenReused)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, serrors.NewInternal("failed to issue tokens", err)
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the rotation race, or logout cleared the token meanwhile.
			log.Warn().Str("user_id", user.ID).Msg("refresh token rotation lost")
			return nil, serrors.NewUnauthorized("invalid refresh token", serrors.ErrTokenReused)
		}
		return nil, serrors.NewInternal("failed to rotate refresh token", err)
	}

	return pair, nil
}

// Logout clears the stored refresh token. Calling it when no token is set,
// or for an already deleted account, is a no-op success.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return serrors.NewInternal("failed to clear refresh token", err)
	}
	log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}
