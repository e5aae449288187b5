package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
	jwtpkg "eventtix/registrar/pkg/jwt"
)

func newAuthFixture(t *testing.T) (AuthService, AdminService, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	audit := NewAuditService(store.Repositories().AuditLogs, zap.NewNop())
	admins := NewAdminService(store, audit, zap.NewNop())
	auth := NewAuthService(
		store.Repositories().Admins,
		repository.NewMemoryStateStore(),
		jwtpkg.NewManager("test-signing-key", "registrar", time.Hour),
		audit,
		zap.NewNop(),
	)
	_, err := admins.Create(context.Background(), CreateAdminInput{
		Username: "gate",
		Email:    "gate@example.com",
		Name:     "Gate",
		Password: "correct-horse",
	}, superadmin)
	require.NoError(t, err)
	return auth, admins, store
}

func TestAuthService_Login(t *testing.T) {
	auth, _, store := newAuthFixture(t)
	ctx := context.Background()

	t.Run("ByUsername", func(t *testing.T) {
		tokens, err := auth.Login(ctx, "gate", "correct-horse", "10.0.0.9", "scanner")
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Equal(t, "Bearer", tokens.TokenType)
		assert.Equal(t, int64(3600), tokens.ExpiresIn)
		require.NotNil(t, tokens.Admin.LastLogin)
	})

	t.Run("ByEmail", func(t *testing.T) {
		_, err := auth.Login(ctx, "GATE@example.com", "correct-horse", "", "")
		require.NoError(t, err)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := auth.Login(ctx, "gate", "wrong", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := auth.Login(ctx, "ghost", "correct-horse", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	entries, err := store.Repositories().AuditLogs.List(ctx, repository.AuditFilter{Action: ptr(model.AuditActionLogin)})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuthService_InactiveAdmin(t *testing.T) {
	auth, admins, store := newAuthFixture(t)
	ctx := context.Background()

	tokens, err := auth.Login(ctx, "gate", "correct-horse", "", "")
	require.NoError(t, err)

	a, err := store.Repositories().Admins.GetByLogin(ctx, "gate")
	require.NoError(t, err)
	inactive := false
	_, err = admins.Update(ctx, a.ID, UpdateAdminInput{IsActive: &inactive}, superadmin)
	require.NoError(t, err)

	_, err = auth.Login(ctx, "gate", "correct-horse", "", "")
	assert.ErrorIs(t, err, ErrAdminInactive)

	_, _, err = auth.Authenticate(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrAdminInactive)
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	ctx := context.Background()

	tokens, err := auth.Login(ctx, "gate", "correct-horse", "", "")
	require.NoError(t, err)

	claims, admin, err := auth.Authenticate(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "gate", claims.Username)
	assert.Equal(t, "gate", admin.Username)

	actor := Actor{AdminID: admin.ID, Username: admin.Username, Role: admin.Role}
	require.NoError(t, auth.Logout(ctx, claims, actor))

	_, _, err = auth.Authenticate(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, _, err = auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func ptr[T any](v T) *T { return &v }
