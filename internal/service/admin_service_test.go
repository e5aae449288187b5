package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
	"eventtix/registrar/pkg/crypto"
)

func newAdminService(t *testing.T) (*adminService, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	audit := NewAuditService(store.Repositories().AuditLogs, zap.NewNop())
	return NewAdminService(store, audit, zap.NewNop()).(*adminService), store
}

func TestAdminService_EnsureBootstrap(t *testing.T) {
	svc, store := newAdminService(t)
	ctx := context.Background()

	t.Run("GeneratedPassword", func(t *testing.T) {
		require.NoError(t, svc.EnsureBootstrap(ctx, config.BootstrapConfig{Email: "Root@Example.com"}))

		admins, err := store.Repositories().Admins.List(ctx)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "root", admins[0].Username)
		assert.Equal(t, "root@example.com", admins[0].Email)
		assert.Equal(t, model.AdminRoleSuperadmin, admins[0].Role)
		assert.True(t, admins[0].IsActive)
		assert.NotEmpty(t, admins[0].PasswordHash)
	})

	t.Run("SkipsWhenAdminsExist", func(t *testing.T) {
		require.NoError(t, svc.EnsureBootstrap(ctx, config.BootstrapConfig{Email: "other@example.com", Password: "another-password"}))
		n, err := store.Repositories().Admins.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestAdminService_Create(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	t.Run("DerivesUsername", func(t *testing.T) {
		admin, err := svc.Create(ctx, CreateAdminInput{
			Email:    "Jane.Doe+scan@example.com",
			Name:     "Jane",
			Password: "correct-horse",
		}, superadmin)
		require.NoError(t, err)
		assert.Equal(t, "jane.doescan", admin.Username)
		assert.Equal(t, model.AdminRoleReviewer, admin.Role)
		assert.True(t, crypto.CheckPassword("correct-horse", admin.PasswordHash))
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateAdminInput{
			Username: "someone",
			Email:    "JANE.DOE+scan@example.com",
			Name:     "Jane",
			Password: "correct-horse",
		}, superadmin)
		assert.ErrorIs(t, err, ErrAdminExists)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateAdminInput{
			Email:    "x@example.com",
			Name:     "X",
			Password: "correct-horse",
			Role:     "owner",
		}, superadmin)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateAdminInput{Email: "y@example.com", Name: "Y", Password: "short"}, superadmin)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("ReviewerForbidden", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateAdminInput{Email: "z@example.com", Name: "Z", Password: "correct-horse"}, reviewer)
		assert.ErrorIs(t, err, ErrInsufficientRole)
	})
}

func TestAdminService_LastSuperadmin(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateAdminInput{Username: "root", Email: "root@example.com", Name: "Root", Password: "correct-horse", Role: model.AdminRoleSuperadmin}, superadmin)
	require.NoError(t, err)
	rev, err := svc.Create(ctx, CreateAdminInput{Username: "rev", Email: "rev@example.com", Name: "Rev", Password: "correct-horse"}, superadmin)
	require.NoError(t, err)

	demote := model.AdminRoleReviewer
	inactive := false

	_, err = svc.Update(ctx, root.ID, UpdateAdminInput{Role: &demote}, superadmin)
	assert.ErrorIs(t, err, ErrLastSuperadmin)
	_, err = svc.Update(ctx, root.ID, UpdateAdminInput{IsActive: &inactive}, superadmin)
	assert.ErrorIs(t, err, ErrLastSuperadmin)
	assert.ErrorIs(t, svc.Delete(ctx, root.ID, superadmin), ErrLastSuperadmin)

	unchanged, err := svc.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AdminRoleSuperadmin, unchanged.Role)
	assert.True(t, unchanged.IsActive)

	promote := model.AdminRoleSuperadmin
	_, err = svc.Update(ctx, rev.ID, UpdateAdminInput{Role: &promote}, superadmin)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, root.ID, superadmin))
	_, err = svc.Get(ctx, root.ID)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminService_DeleteKeepsAuditHistory(t *testing.T) {
	svc, store := newAdminService(t)
	ctx := context.Background()

	root := Actor{AdminID: 99, Username: "root", Role: model.AdminRoleSuperadmin}
	gate, err := svc.Create(ctx, CreateAdminInput{Username: "gate", Email: "gate@example.com", Name: "Gate", Password: "correct-horse"}, root)
	require.NoError(t, err)
	gateActor := Actor{AdminID: gate.ID, Username: gate.Username, Role: gate.Role}
	svc.audit.Record(ctx, gateActor.record(model.AuditActionLogin, nil, nil))
	svc.audit.Record(ctx, gateActor.record(model.AuditActionTicketCheckIn, nil, map[string]any{"serial_code": "EVT25-000001"}))

	require.NoError(t, svc.Delete(ctx, gate.ID, root))

	entries, err := store.Repositories().AuditLogs.List(ctx, repository.AuditFilter{AdminID: &gate.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.AuditActionTicketCheckIn, entries[0].Action)
	assert.Empty(t, entries[0].AdminName)
}

func TestAdminService_Update(t *testing.T) {
	svc, store := newAdminService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAdminInput{Username: "amy", Email: "amy@example.com", Name: "Amy", Password: "correct-horse"}, superadmin)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAdminInput{Username: "bo", Email: "bo@example.com", Name: "Bo", Password: "correct-horse"}, superadmin)
	require.NoError(t, err)

	t.Run("EmailTaken", func(t *testing.T) {
		taken := "BO@example.com"
		_, err := svc.Update(ctx, a.ID, UpdateAdminInput{Email: &taken}, superadmin)
		assert.ErrorIs(t, err, ErrAdminExists)
	})

	t.Run("Partial", func(t *testing.T) {
		name := "Amy Pond"
		password := "new-password-1"
		updated, err := svc.Update(ctx, a.ID, UpdateAdminInput{Name: &name, Password: &password}, superadmin)
		require.NoError(t, err)
		assert.Equal(t, "Amy Pond", updated.Name)
		assert.Equal(t, "amy@example.com", updated.Email)
		assert.True(t, crypto.CheckPassword(password, updated.PasswordHash))

		entries, err := store.Repositories().AuditLogs.List(ctx, repository.AuditFilter{})
		require.NoError(t, err)
		assert.Equal(t, model.AuditActionUpdateAdmin, entries[0].Action)
	})

	t.Run("Missing", func(t *testing.T) {
		name := "Nobody"
		_, err := svc.Update(ctx, 999, UpdateAdminInput{Name: &name}, superadmin)
		assert.ErrorIs(t, err, ErrAdminNotFound)
	})
}
