package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mujeeb218353/youtube-backend/domain"
	serrors "github.com/mujeeb218353/youtube-backend/errors"
	"github.com/mujeeb218353/youtube-backend/internal/media"
)

// --- Test doubles ---

// fakeUserRepo is an in-memory UserRepository. Flow tests read better against
// a real map than against mock expectations.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.CoverImage != nil {
		u.CoverImage = *upd.CoverImage
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(_ context.Context, id, current, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshToken != current {
		return domain.ErrNotFound
	}
	u.RefreshToken = next
	return nil
}

func (r *fakeUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RefreshToken = ""
	return nil
}

func (r *fakeUserRepo) AddWatchHistory(_ context.Context, userID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, id := range u.WatchHistory {
		if id == videoID {
			u.WatchHistory = append(u.WatchHistory[:i], u.WatchHistory[i+1:]...)
			break
		}
	}
	u.WatchHistory = append(u.WatchHistory, videoID)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeHasher avoids bcrypt cost in flow tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeUploader returns deterministic URLs without touching the network.
type fakeUploader struct {
	fail bool
	n    int
}

func (u *fakeUploader) Upload(_ context.Context, filename string, _ io.Reader) (*media.Asset, error) {
	if u.fail {
		return nil, errors.New("media host down")
	}
	u.n++
	return &media.Asset{URL: fmt.Sprintf("https://media.test/%d/%s", u.n, filename), Duration: 42}, nil
}

func newTestSessionService(repo *fakeUserRepo) *SessionService {
	return NewSessionService(repo, fakeHasher{}, NewTokenService(testTokenConfig()), &fakeUploader{})
}

func registerAlice(t *testing.T, svc *SessionService) *domain.PublicUser {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Alice Example",
		Username:   "alice",
		Email:      "a@x.com",
		Password:   "p1",
		AvatarName: "avatar.png",
		Avatar:     strings.NewReader("img"),
	})
	require.NoError(t, err)
	return user
}

// --- Tests ---

func TestSessionService_Register(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)

	user := registerAlice(t, svc)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.Avatar)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "p1", stored.PasswordHash)
}

func TestSessionService_Register_Validation(t *testing.T) {
	svc := newTestSessionService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bob"})
	assert.Equal(t, 400, serrors.StatusCode(err))

	_, err = svc.Register(ctx, RegisterInput{
		FullName: "Bob", Username: "bob", Email: "b@x.com", Password: "p",
	})
	assert.Equal(t, 400, serrors.StatusCode(err), "missing avatar")
}

func TestSessionService_Register_Duplicate(t *testing.T) {
	svc := newTestSessionService(newFakeUserRepo())
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Other Alice",
		Username:   "ALICE", // usernames are case-normalized
		Email:      "other@x.com",
		Password:   "p2",
		AvatarName: "a.png",
		Avatar:     strings.NewReader("img"),
	})
	assert.Equal(t, 409, serrors.StatusCode(err))
}

func TestSessionService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)
	user := registerAlice(t, svc)
	ctx := context.Background()

	for _, identifier := range []string{"alice", "a@x.com"} {
		result, err := svc.Login(ctx, identifier, "p1")
		require.NoError(t, err, "login via %q", identifier)
		assert.Equal(t, user.ID, result.User.ID)

		// Both tokens resolve to the identity.
		accessClaims, err := svc.tokens.VerifyAccessToken(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, accessClaims.Subject)
		refreshClaims, err := svc.tokens.VerifyRefreshToken(result.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, refreshClaims.Subject)

		// Stored refresh token equals the returned one exactly.
		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Tokens.RefreshToken, stored.RefreshToken)
	}
}

func TestSessionService_Login_IndistinguishableFailures(t *testing.T) {
	svc := newTestSessionService(newFakeUserRepo())
	registerAlice(t, svc)
	ctx := context.Background()

	_, errUnknown := svc.Login(ctx, "nosuchuser", "p1")
	_, errWrongPw := svc.Login(ctx, "alice", "wrong")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	// Identical outward-facing failure for unknown user and wrong password.
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	assert.Equal(t, 401, serrors.StatusCode(errUnknown))
	assert.Equal(t, 401, serrors.StatusCode(errWrongPw))
}

func TestSessionService_Login_OverwritesPriorSession(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)
	registerAlice(t, svc)
	ctx := context.Background()

	first, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)

	// The first session's refresh token was superseded by the second login.
	_, err = svc.Refresh(ctx, first.Tokens.RefreshToken)
	assert.Equal(t, 401, serrors.StatusCode(err))
}

func TestSessionService_RefreshRotation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)
	user := registerAlice(t, svc)
	ctx := context.Background()

	t1, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)

	t2, err := svc.Refresh(ctx, t1.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, t1.Tokens.RefreshToken, t2.RefreshToken)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, t2.RefreshToken, stored.RefreshToken)

	// Re-presenting the rotated-away token is reuse.
	_, err = svc.Refresh(ctx, t1.Tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, 401, serrors.StatusCode(err))
	assert.ErrorIs(t, err, serrors.ErrTokenReused)

	// The winner keeps working.
	t3, err := svc.Refresh(ctx, t2.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, t2.RefreshToken, t3.RefreshToken)
}

func TestSessionService_Refresh_Failures(t *testing.T) {
	svc := newTestSessionService(newFakeUserRepo())
	registerAlice(t, svc)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "")
	assert.Equal(t, 401, serrors.StatusCode(err), "missing token")

	_, err = svc.Refresh(ctx, "not-a-jwt")
	assert.Equal(t, 401, serrors.StatusCode(err), "malformed token")
	assert.ErrorIs(t, err, serrors.ErrInvalidToken)

	expired := NewTokenService(TokenConfig{
		AccessSecret:  testTokenConfig().AccessSecret,
		RefreshSecret: testTokenConfig().RefreshSecret,
		AccessTTL:     -time.Minute,
		RefreshTTL:    -time.Minute,
		Issuer:        "test",
	})
	pair, err := expired.IssuePair(&domain.User{ID: "whoever"})
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.Equal(t, 401, serrors.StatusCode(err), "expired token")
	assert.ErrorIs(t, err, serrors.ErrTokenExpired)
}

// rotationLosingRepo fails every rotation swap, as if a concurrent refresh or
// logout always commits between the read and the swap.
type rotationLosingRepo struct {
	*fakeUserRepo
}

func (r *rotationLosingRepo) RotateRefreshToken(context.Context, string, string, string) error {
	return domain.ErrNotFound
}

func TestSessionService_Refresh_LosesRotationRace(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)
	registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)

	losing := NewSessionService(&rotationLosingRepo{repo}, fakeHasher{},
		NewTokenService(testTokenConfig()), &fakeUploader{})

	// The stored token still matches the presented one, so the read-side
	// check passes; only the swap reports the lost race.
	_, err = losing.Refresh(ctx, result.Tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, 401, serrors.StatusCode(err))
	assert.ErrorIs(t, err, serrors.ErrTokenReused)

	// The store is untouched: the token that actually won still works.
	_, err = svc.Refresh(ctx, result.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestSessionService_Refresh_DeletedUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)
	user := registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err = svc.Refresh(ctx, result.Tokens.RefreshToken)
	assert.Equal(t, 401, serrors.StatusCode(err))
}

func TestSessionService_LogoutInvalidatesRefresh(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSessionService(repo)
	user := registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))
	// Logout with nothing stored is still a success.
	require.NoError(t, svc.Logout(ctx, user.ID))
	// Logout of a missing account is a no-op success too.
	require.NoError(t, svc.Logout(ctx, "no-such-user"))

	_, err = svc.Refresh(ctx, result.Tokens.RefreshToken)
	assert.Equal(t, 401, serrors.StatusCode(err))
}

// Full lifecycle: register → login → rotate → reuse rejected.
func TestSessionService_Scenario(t *testing.T) {
	svc := newTestSessionService(newFakeUserRepo())
	registerAlice(t, svc)
	ctx := context.Background()

	t1, err := svc.Login(ctx, "alice", "p1")
	require.NoError(t, err)

	t2, err := svc.Refresh(ctx, t1.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, t1.Tokens.RefreshToken, t2.RefreshToken)

	_, err = svc.Refresh(ctx, t1.Tokens.RefreshToken)
	assert.Equal(t, 401, serrors.StatusCode(err))
}
