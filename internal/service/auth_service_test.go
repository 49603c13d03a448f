package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindspeak-server/pkg/jwt"
)

func newAuthService(t *testing.T) (*AuthService, *testStore, *jwt.JWTService) {
	t.Helper()
	store := newTestStore(t)
	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(store.users, nil, jwtService, nil), store, jwtService
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _, jwtService := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Password: "hunter22", Email: "Alice@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.User.Name)
	require.NotNil(t, reg.User.Email)
	assert.Equal(t, "alice@example.com", *reg.User.Email)

	claims, err := jwtService.ValidateToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	login, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Equal(t, int64(3600), login.ExpiresIn)

	byEmail, err := svc.Login(ctx, &LoginRequest{Username: "ALICE@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, byEmail.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, ErrPasswordWrong)

	_, err = svc.Login(ctx, &LoginRequest{Username: "bob", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_RegisterDuplicates(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Username: "carol", Password: "secret1", Email: "c@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "carol", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "carol2", Password: "secret1", Email: "c@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	// 两个没有邮箱的用户不应冲突
	_, err = svc.Register(ctx, &RegisterRequest{Username: "dave", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &RegisterRequest{Username: "erin", Password: "secret1"})
	require.NoError(t, err)
}

func TestAuthService_GuestCannotPasswordLogin(t *testing.T) {
	svc, _, jwtService := newAuthService(t)
	ctx := context.Background()

	guest, err := svc.Guest(ctx)
	require.NoError(t, err)
	assert.True(t, guest.User.IsGuest)
	assert.True(t, strings.HasPrefix(guest.User.Username, "guest_"))

	claims, err := jwtService.ValidateToken(guest.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsGuest)

	_, err = svc.Login(ctx, &LoginRequest{Username: guest.User.Username, Password: ""})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _, jwtService := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &RegisterRequest{Username: "frank", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "frank", claims.Username)

	_, err = svc.RefreshToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestAuthService_LogoutWithoutRedis(t *testing.T) {
	svc, _, _ := newAuthService(t)
	assert.NoError(t, svc.Logout(context.Background(), "hash", time.Now().Add(time.Hour)))
}
