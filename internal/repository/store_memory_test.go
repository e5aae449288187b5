package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

func seedRegistration(t *testing.T, repos *Repositories, email string) *model.Registration {
	t.Helper()
	ctx := context.Background()
	reg := &model.Registration{Name: "Alice", Email: email, Phone: "9999999999", PaymentType: model.PaymentTypeIndividual}
	require.NoError(t, repos.Registrations.Create(ctx, reg))
	require.NoError(t, repos.Payments.Create(ctx, &model.Payment{RegistrationID: reg.ID, Amount: 500}))
	ticket := &model.Ticket{RegistrationID: reg.ID, MemberName: reg.Name, SerialCode: "EVT25-" + email, IsActive: true}
	require.NoError(t, repos.Tickets.Create(ctx, ticket))
	require.NoError(t, repos.Attendance.Create(ctx, &model.Attendance{TicketID: ticket.ID}))
	return reg
}

func TestMemoryStore_WithTxRollsBack(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *Repositories) error {
		seedRegistration(t, tx, "alice@x.com")
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = store.Repositories().Registrations.GetByEmail(ctx, "alice@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	n, _ := store.Repositories().Tickets.Count(ctx)
	assert.Zero(t, n)
}

func TestMemoryStore_UniqueEmailIgnoresCase(t *testing.T) {
	store := NewMemoryStore()
	repos := store.Repositories()
	seedRegistration(t, repos, "alice@x.com")

	err := repos.Registrations.Create(context.Background(), &model.Registration{Name: "A", Email: "ALICE@x.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMemoryStore_DetailAndPurge(t *testing.T) {
	store := NewMemoryStore()
	repos := store.Repositories()
	ctx := context.Background()
	reg := seedRegistration(t, repos, "alice@x.com")
	require.NoError(t, repos.Messages.Create(ctx, &model.Message{RegistrationID: reg.ID, MessageType: model.MessageTypeConfirmation}))

	detail, err := repos.Registrations.GetDetail(ctx, reg.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Payment)
	require.Len(t, detail.Tickets, 1)
	assert.NotNil(t, detail.Tickets[0].Attendance)
	assert.Len(t, detail.Messages, 1)

	require.NoError(t, repos.Registrations.Delete(ctx, reg.ID))
	_, err = repos.Payments.GetByRegistrationID(ctx, reg.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	n, _ := repos.Tickets.Count(ctx)
	assert.Zero(t, n)
	msgs, _ := repos.Messages.ListByRegistrationID(ctx, reg.ID)
	assert.Empty(t, msgs)
}

func TestMemoryStore_ListFiltersAndPages(t *testing.T) {
	store := NewMemoryStore()
	repos := store.Repositories()
	ctx := context.Background()
	first := seedRegistration(t, repos, "a@x.com")
	seedRegistration(t, repos, "b@x.com")
	seedRegistration(t, repos, "c@x.com")

	p, err := repos.Payments.GetByRegistrationID(ctx, first.ID)
	require.NoError(t, err)
	p.Status = model.PaymentStatusApproved
	require.NoError(t, repos.Payments.Update(ctx, p))

	pending := model.PaymentStatusPending
	rows, total, err := repos.Registrations.List(ctx, RegistrationFilter{Status: &pending, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 1)

	counts, err := repos.Registrations.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.PaymentStatusPending])
	assert.Equal(t, int64(1), counts[model.PaymentStatusApproved])
}

func TestMemoryStore_AuditListNewestFirstWithAdmin(t *testing.T) {
	store := NewMemoryStore()
	repos := store.Repositories()
	ctx := context.Background()

	admin := &model.Admin{Username: "root", Email: "root@x.com", Name: "Root", Role: model.AdminRoleSuperadmin, IsActive: true}
	require.NoError(t, repos.Admins.Create(ctx, admin))
	require.NoError(t, repos.AuditLogs.Create(ctx, &model.AuditLog{AdminID: admin.ID, Action: model.AuditActionLogin}))
	require.NoError(t, repos.AuditLogs.Create(ctx, &model.AuditLog{AdminID: admin.ID, Action: model.AuditActionLogout}))

	entries, err := repos.AuditLogs.List(ctx, AuditFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.AuditActionLogout, entries[0].Action)
	assert.Equal(t, "Root", entries[0].AdminName)
	assert.Equal(t, "root@x.com", entries[0].AdminEmail)
}
