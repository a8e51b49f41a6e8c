package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
)

// Claims are the signed assertions embedded in both token kinds. Access
// tokens additionally carry username and email so handlers can authorize
// without a store round trip; refresh tokens carry only the subject.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig carries the signing material for a TokenService. Secrets are
// injected explicitly; there is no ambient signing state.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService issues and verifies access/refresh token pairs. Access and
// refresh tokens are HMAC-signed with distinct secrets and distinct expiry
// windows. The service has no side effects: persisting the refresh token is
// the caller's responsibility.
type TokenService struct {
	cfg TokenConfig
}

// NewTokenService creates a TokenService from the given signing config.
func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssuePair creates a signed access/refresh token pair for the user.
func (s *TokenService) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(s.cfg.AccessTTL)
	refreshExp := now.Add(s.cfg.RefreshTTL)

	access, err := s.sign(Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			ID:        uuid.NewString(),
		},
	}, s.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        uuid.NewString(),
		},
	}, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *TokenService) sign(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccessToken checks signature and expiry of an access token and
// returns its claims.
func (s *TokenService) VerifyAccessToken(raw string) (*Claims, error) {
	return s.verify(raw, s.cfg.AccessSecret)
}

// VerifyRefreshToken checks signature and expiry of a refresh token and
// returns its claims.
func (s *TokenService) VerifyRefreshToken(raw string) (*Claims, error) {
	return s.verify(raw, s.cfg.RefreshSecret)
}

func (s *TokenService) verify(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, serrors.ErrTokenExpired
		}
		return nil, serrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, serrors.ErrInvalidToken
	}
	return claims, nil
}
