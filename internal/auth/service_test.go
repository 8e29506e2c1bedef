package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-tasks-api/internal/logging"
	"github.com/redmonkez12/go-tasks-api/internal/user"
)

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*user.User
	getErr    error
	createErr error
	creates   int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*user.User{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrDuplicateEmail
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	m.creates++
	return nil
}

func newTestService(t *testing.T, users UserStore) *Service {
	t.Helper()
	svc, err := NewService(users, NewHasher(testHasherParams), newTestTokens(t, "jwt", time.Now), logging.Discard())
	require.NoError(t, err)
	return svc
}

func TestService_RegisterThenLogin(t *testing.T) {
	t.Parallel()
	users := newMemUsers()
	svc := newTestService(t, users)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "  Alice@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.False(t, reg.User.CreatedAt.IsZero())

	stored, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	login, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	claims, err := svc.tokens.VerifyAccess(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	claims, err = svc.tokens.VerifyRefresh(login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID)
}

func TestService_RegisterDuplicate(t *testing.T) {
	t.Parallel()
	users := newMemUsers()
	svc := newTestService(t, users)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "BOB@example.com", "another")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 1, users.creates)
}

func TestService_RegisterRaceMapsToConflict(t *testing.T) {
	t.Parallel()
	users := newMemUsers()
	users.createErr = user.ErrDuplicateEmail
	svc := newTestService(t, users)

	_, err := svc.Register(context.Background(), "carol@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_RegisterStoreFailure(t *testing.T) {
	t.Parallel()
	users := newMemUsers()
	users.getErr = errors.New("connection reset")
	svc := newTestService(t, users)

	_, err := svc.Register(context.Background(), "dave@example.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserExists)
}

func TestService_LoginFailuresAreIdentical(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, newMemUsers())
	ctx := context.Background()

	_, err := svc.Register(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "erin@example.com", "nope-nope")
	_, noSuchUser := svc.Login(ctx, "ghost@example.com", "secret1")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, noSuchUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), noSuchUser.Error())
}

func TestService_Refresh(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, newMemUsers())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "frank@example.com", "secret1")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.tokens.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID)
	assert.Equal(t, "frank@example.com", claims.Email)

	// the same refresh token keeps working until it expires
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	assert.NoError(t, err)
}

func TestService_RefreshRejectsUniformly(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, newMemUsers())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "gina@example.com", "secret1")
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", reg.AccessToken} {
		_, err := svc.Refresh(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken, "token %q", tok)
		assert.Equal(t, "invalid or expired refresh token", err.Error())
	}
}

func TestService_Logout(t *testing.T) {
	t.Parallel()
	assert.NoError(t, newTestService(t, newMemUsers()).Logout(context.Background()))
}
