package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-tracker/internal/config"
	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/events"
)

func newAuthService(users *fakeUserRepo, dispatcher *recordingDispatcher) *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, AuthDependencies{
		UserRepo:   users,
		Dispatcher: dispatcher,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := newAuthService(users, dispatcher)
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Alice", "  ALICE@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.Len(t, dispatcher.byType(events.EventUserRegistered), 1)

	_, _, _, err = svc.Register(ctx, "Imposter", "alice@example.com", "other")
	assertErrCode(t, err, "CONFLICT")

	logged, token, _, err := svc.Login(ctx, "Alice@example.COM", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginFailures(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &recordingDispatcher{})
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
	assertErrCode(t, err, "UNAUTHORIZED")

	_, _, _, err = svc.Register(ctx, "Bob", "bob@example.com", "rightpass")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "bob@example.com", "wrongpass")
	assertErrCode(t, err, "UNAUTHORIZED")
}

func TestLoginDeactivatedAccount(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &recordingDispatcher{})
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Dora", "dora@example.com", "pass")
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, users.Update(ctx, user))

	_, _, _, err = svc.Login(ctx, "dora@example.com", "pass")
	assertErrCode(t, err, "FORBIDDEN")
}

func TestChangePassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &recordingDispatcher{})
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Eve", "eve@example.com", "oldpass")
	require.NoError(t, err)

	assertErrCode(t, svc.ChangePassword(ctx, user, "wrong", "newpass"), "UNAUTHORIZED")
	require.NoError(t, svc.ChangePassword(ctx, user, "oldpass", "newpass"))

	_, _, _, err = svc.Login(ctx, "eve@example.com", "oldpass")
	assertErrCode(t, err, "UNAUTHORIZED")
	_, _, _, err = svc.Login(ctx, "eve@example.com", "newpass")
	require.NoError(t, err)
}
