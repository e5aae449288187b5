package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventtix/registrar/internal/model"
)

func TestTicketService_AliceScenario(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()
	f.allowQRCodes()
	ctx := context.Background()

	res := f.submitIndividual(t, "Alice", "alice@example.com")
	serial := fmt.Sprintf("EVT25-%06d", res.ID)
	require.Equal(t, []string{serial}, res.Serials)

	_, err := f.review.Approve(ctx, res.ID, reviewer)
	require.NoError(t, err)

	v, err := f.tickets.Verify(ctx, serial)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, ReasonReady, v.Reason)
	require.NotNil(t, v.Details)
	assert.Equal(t, "Alice", v.Details.MemberName)
	assert.Equal(t, "alice@example.com", v.Details.RegistrantEmail)

	checkedAt := f.now
	d, err := f.tickets.CheckIn(ctx, serial, reviewer)
	require.NoError(t, err)
	assert.True(t, d.CheckedIn)
	require.NotNil(t, d.CheckInTime)
	assert.True(t, d.CheckInTime.Equal(checkedAt))

	f.now = f.now.Add(10 * time.Minute)
	_, err = f.tickets.CheckIn(ctx, serial, reviewer)
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Contains(t, err.Error(), checkedAt.Format(time.RFC3339))

	v, err = f.tickets.Verify(ctx, serial)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonAlreadyCheckedIn, v.Reason)
	assert.Equal(t, ErrAlreadyCheckedIn.Code, v.Code)
	require.NotNil(t, v.Details.CheckInTime)
	assert.True(t, v.Details.CheckInTime.Equal(checkedAt), "check-in time must not move")

	assert.Contains(t, f.auditActions(t), model.AuditActionTicketCheckIn)
}

func TestTicketService_VerifyOrder(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()
	f.allowQRCodes()
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		v, err := f.tickets.Verify(ctx, "EVT25-999999")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonNotFound, v.Reason)
		assert.Nil(t, v.Details)
	})

	pending := f.submitIndividual(t, "Pat", "pat@example.com")

	t.Run("PaymentNotApproved", func(t *testing.T) {
		// Attendance is set directly; payment status still wins.
		repos := f.store.Repositories()
		tk, err := repos.Tickets.GetBySerial(ctx, pending.Serials[0])
		require.NoError(t, err)
		now := f.now
		tk.Attendance.CheckedIn = true
		tk.Attendance.CheckInTime = &now
		require.NoError(t, repos.Attendance.Update(ctx, tk.Attendance))

		v, err := f.tickets.Verify(ctx, "  "+pending.Serials[0]+" ")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonPaymentNotApproved, v.Reason)
		assert.Equal(t, model.PaymentStatusPending, v.Details.PaymentStatus)
	})

	t.Run("CheckInNotApproved", func(t *testing.T) {
		_, err := f.tickets.CheckIn(ctx, pending.Serials[0], reviewer)
		assert.ErrorIs(t, err, ErrPaymentNotApproved)
	})

	team := f.submitTeam(t, "lead@example.com", "Ann,Ben,Cy,Dee")
	_, err := f.review.Approve(ctx, team.ID, reviewer)
	require.NoError(t, err)

	t.Run("Deactivated", func(t *testing.T) {
		_, err := f.tickets.SetActive(ctx, "team002-b", false, superadmin)
		require.NoError(t, err)

		v, err := f.tickets.Verify(ctx, "TEAM002-B")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonDeactivated, v.Reason)

		_, err = f.tickets.CheckIn(ctx, "TEAM002-B", reviewer)
		assert.ErrorIs(t, err, ErrTicketDeactivated)

		_, err = f.tickets.SetActive(ctx, "TEAM002-B", true, superadmin)
		require.NoError(t, err)
		v, err = f.tickets.Verify(ctx, "TEAM002-B")
		require.NoError(t, err)
		assert.True(t, v.Valid)
	})

	t.Run("SetActiveRequiresSuperadmin", func(t *testing.T) {
		_, err := f.tickets.SetActive(ctx, "TEAM002-A", false, reviewer)
		assert.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("CheckInUnknown", func(t *testing.T) {
		_, err := f.tickets.CheckIn(ctx, "TEAM999-A", reviewer)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})
}

func TestTicketService_CheckOutAndReset(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()
	f.allowQRCodes()
	ctx := context.Background()
	res := f.submitIndividual(t, "Alice", "alice@example.com")
	_, err := f.review.Approve(ctx, res.ID, reviewer)
	require.NoError(t, err)
	serial := res.Serials[0]

	_, err = f.tickets.CheckOut(ctx, serial, reviewer)
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	_, err = f.tickets.CheckIn(ctx, serial, reviewer)
	require.NoError(t, err)

	d, err := f.tickets.CheckOut(ctx, serial, reviewer)
	require.NoError(t, err)
	assert.True(t, d.CheckedOut)
	require.NotNil(t, d.CheckOutTime)

	_, err = f.tickets.CheckOut(ctx, serial, reviewer)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

	_, err = f.tickets.ResetAttendance(ctx, serial, reviewer)
	assert.ErrorIs(t, err, ErrInsufficientRole)

	d, err = f.tickets.ResetAttendance(ctx, serial, superadmin)
	require.NoError(t, err)
	assert.False(t, d.CheckedIn)
	assert.False(t, d.CheckedOut)
	assert.Nil(t, d.CheckInTime)

	_, err = f.tickets.CheckIn(ctx, serial, reviewer)
	require.NoError(t, err)

	actions := f.auditActions(t)
	assert.Contains(t, actions, model.AuditActionTicketCheckOut)
	assert.Contains(t, actions, model.AuditActionResetCheckIn)
}

func TestTicketService_CheckInCreatesMissingAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repos := f.store.Repositories()

	reg := &model.Registration{Name: "Walk In", Email: "walkin@example.com", Phone: "9876543210", PaymentType: model.PaymentTypeIndividual}
	require.NoError(t, repos.Registrations.Create(ctx, reg))
	require.NoError(t, repos.Payments.Create(ctx, &model.Payment{RegistrationID: reg.ID, Status: model.PaymentStatusApproved}))
	require.NoError(t, repos.Tickets.Create(ctx, &model.Ticket{RegistrationID: reg.ID, MemberName: "Walk In", SerialCode: "EVT25-000001", IsActive: true}))

	d, err := f.tickets.CheckIn(ctx, "EVT25-000001", reviewer)
	require.NoError(t, err)
	assert.True(t, d.CheckedIn)

	checkedIn, err := repos.Attendance.CountCheckedIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), checkedIn)
}
