package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventtix/registrar/internal/model"
)

func countRegistrations(t *testing.T, f *fixture) int64 {
	t.Helper()
	counts, err := f.store.Repositories().Registrations.CountByStatus(context.Background())
	require.NoError(t, err)
	var n int64
	for _, c := range counts {
		n += c
	}
	return n
}

func TestRegistrationService_SubmitIndividual(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()

	res := f.submitIndividual(t, "Alice", "Alice@Example.com")

	assert.Equal(t, "alice@example.com", res.Email)
	assert.Equal(t, model.PaymentStatusPending, res.Status)
	assert.Equal(t, []string{"EVT25-000001"}, res.Serials)
	assert.Equal(t, []model.MessageType{model.MessageTypeConfirmation}, f.notifier.types())

	tickets, err := f.store.Repositories().Tickets.ListByRegistrationID(context.Background(), res.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Alice", tickets[0].MemberName)
	assert.Nil(t, tickets[0].QRCodeURL)
	require.NotNil(t, tickets[0].Attendance)
	assert.False(t, tickets[0].Attendance.CheckedIn)

	payment, err := f.store.Repositories().Payments.GetByRegistrationID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "upi", payment.Method)
	assert.Equal(t, "https://files.test/screenshot.png", payment.ScreenshotURL)
}

func TestRegistrationService_SubmitTeam(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()

	t.Run("JSONMembers", func(t *testing.T) {
		res := f.submitTeam(t, "lead@example.com", `["Ann","Ben","Cy","Dee"]`)
		assert.Equal(t, []string{"TEAM001-A", "TEAM001-B", "TEAM001-C", "TEAM001-D"}, res.Serials)

		tickets, err := f.store.Repositories().Tickets.ListByRegistrationID(context.Background(), res.ID)
		require.NoError(t, err)
		names := make([]string, 0, len(tickets))
		for _, tk := range tickets {
			names = append(names, tk.MemberName)
		}
		assert.Equal(t, []string{"Ann", "Ben", "Cy", "Dee"}, names)
	})

	t.Run("CommaSeparatedMembers", func(t *testing.T) {
		res := f.submitTeam(t, "lead2@example.com", "Eve, Fay ,,Gus, Hal")
		assert.Equal(t, []string{"TEAM002-A", "TEAM002-B", "TEAM002-C", "TEAM002-D"}, res.Serials)
	})
}

func TestRegistrationService_SubmitWrongTeamSize(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()

	_, err := f.registration.Submit(context.Background(), SubmitInput{
		Name:        "Team Lead",
		Email:       "lead@example.com",
		Phone:       "9876543210",
		TeamName:    "Rockets",
		Members:     "Ann, Ben, Cy",
		PaymentType: model.PaymentTypeBulk,
		Amount:      1000,
		Screenshot:  Screenshot{Data: pngHeader},
	})

	assert.ErrorIs(t, err, ErrInvalidTeamSize)
	assert.Zero(t, countRegistrations(t, f))
	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.types())
}

func TestRegistrationService_SubmitDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()
	f.submitIndividual(t, "Alice", "alice@example.com")

	_, err := f.registration.Submit(context.Background(), SubmitInput{
		Name:        "Alice Again",
		Email:       "ALICE@example.com",
		Phone:       "9876543210",
		PaymentType: model.PaymentTypeIndividual,
		Amount:      300,
		Screenshot:  Screenshot{Data: pngHeader},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindConflict, svcErr.Kind)
	assert.Equal(t, int64(1), countRegistrations(t, f))

	count, err := f.store.Repositories().Tickets.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegistrationService_SubmitRejectsInput(t *testing.T) {
	valid := func() SubmitInput {
		return SubmitInput{
			Name:        "Alice",
			Email:       "alice@example.com",
			Phone:       "9876543210",
			PaymentType: model.PaymentTypeIndividual,
			Amount:      300,
			Screenshot:  Screenshot{Data: pngHeader},
		}
	}
	cases := []struct {
		name   string
		mutate func(in *SubmitInput)
		want   error
	}{
		{"BadEmail", func(in *SubmitInput) { in.Email = "not-an-email" }, ErrValidation},
		{"ShortName", func(in *SubmitInput) { in.Name = "A" }, ErrValidation},
		{"ShortPhone", func(in *SubmitInput) { in.Phone = "123" }, ErrValidation},
		{"ZeroAmount", func(in *SubmitInput) { in.Amount = 0 }, ErrValidation},
		{"UnknownPaymentType", func(in *SubmitInput) { in.PaymentType = "group" }, ErrValidation},
		{"MissingScreenshot", func(in *SubmitInput) { in.Screenshot.Data = nil }, ErrValidation},
		{"NotAnImage", func(in *SubmitInput) { in.Screenshot.Data = []byte("plain text, not a picture") }, ErrUnsupportedFileType},
		{"TeamWithoutName", func(in *SubmitInput) {
			in.PaymentType = model.PaymentTypeBulk
			in.Members = "Ann,Ben,Cy,Dee"
		}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := valid()
			tc.mutate(&in)

			_, err := f.registration.Submit(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, countRegistrations(t, f))
		})
	}
}

func TestRegistrationService_SubmitStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.uploader.On("Upload", mock.Anything, pngHeader, mock.Anything, "image/png").
		Return("", errors.New("bucket offline"))

	_, err := f.registration.Submit(context.Background(), SubmitInput{
		Name:        "Alice",
		Email:       "alice@example.com",
		Phone:       "9876543210",
		PaymentType: model.PaymentTypeIndividual,
		Amount:      300,
		Screenshot:  Screenshot{Data: pngHeader},
	})

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Zero(t, countRegistrations(t, f))
	assert.Empty(t, f.notifier.types())
}

func TestRegistrationService_Status(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()
	res := f.submitTeam(t, "lead@example.com", "Ann,Ben,Cy,Dee")

	t.Run("Found", func(t *testing.T) {
		st, err := f.registration.Status(context.Background(), " LEAD@example.com ")
		require.NoError(t, err)
		assert.Equal(t, res.ID, st.ID)
		assert.Equal(t, model.PaymentStatusPending, st.Status)
		require.NotNil(t, st.TeamName)
		assert.Equal(t, "Rockets", *st.TeamName)
		require.Len(t, st.Tickets, 4)
		assert.Equal(t, "TEAM001-A", st.Tickets[0].SerialCode)
		assert.False(t, st.Tickets[0].CheckedIn)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := f.registration.Status(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, ErrRegistrationNotFound)
	})
}
