package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/utils"
	"carrental/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingParties struct {
	owner  *models.User
	renter *models.User
	car    *models.Car
}

func setupParties(t *testing.T, f *fixture) bookingParties {
	t.Helper()
	owner := f.addUser(t, "owner")
	return bookingParties{
		owner:  owner,
		renter: f.addUser(t, "renter"),
		car:    f.addCar(t, owner.ID, "TS09AB1234", models.CarStatusApproved, 78.40, 17.40),
	}
}

func submitInput(carID primitive.ObjectID, interval models.DateRange) SubmitBookingInput {
	return SubmitBookingInput{
		CarID:          carID,
		Interval:       interval,
		PickupLocation: "Banjara Hills, Hyderabad",
	}
}

func TestBookingService_SubmitBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)

	booking, err := f.bookingSvc.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(10, 12)))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusRequested, booking.Status)
	assert.Equal(t, "upcoming", booking.Status.LegacyValue())
	assert.Equal(t, 2, booking.TotalDays)
	assert.Equal(t, 2000.0, booking.PricePerDay)
	assert.Equal(t, 4000.0, booking.BasePrice)
	assert.Equal(t, 4000.0, booking.FinalPrice)
	assert.Equal(t, 1000.0, booking.DepositAmount)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.Equal(t, "Banjara Hills, Hyderabad", booking.DropoffLocation)

	renter, err := f.users.GetByID(ctx, p.renter.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{booking.ID}, renter.BookedCars)
}

func TestBookingService_SubmitBookingRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	pending := f.addCar(t, p.owner.ID, "TS09AB9999", models.CarStatusPending, 78.40, 17.40)

	tests := []struct {
		name    string
		renter  primitive.ObjectID
		input   SubmitBookingInput
		wantErr error
	}{
		{"inverted interval", p.renter.ID, submitInput(p.car.ID, marchRange(12, 10)), utils.ErrValidation},
		{"empty interval", p.renter.ID, submitInput(p.car.ID, marchRange(10, 10)), utils.ErrValidation},
		{"unknown car", p.renter.ID, submitInput(primitive.NewObjectID(), marchRange(10, 12)), utils.ErrNotFound},
		{"car not approved", p.renter.ID, submitInput(pending.ID, marchRange(10, 12)), utils.ErrValidation},
		{"own car", p.owner.ID, submitInput(p.car.ID, marchRange(10, 12)), utils.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookingSvc.SubmitBooking(ctx, tt.renter, tt.input)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	bookings, err := f.bookings.GetByCars(ctx, []primitive.ObjectID{p.car.ID, pending.ID})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_SubmitBookingOverlapConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	other := f.addUser(t, "other")

	_, err := f.bookingSvc.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(10, 12)))
	require.NoError(t, err)

	_, err = f.bookingSvc.SubmitBooking(ctx, other.ID, submitInput(p.car.ID, marchRange(11, 13)))
	assert.True(t, errors.Is(err, utils.ErrConflict))

	// Back-to-back stays share only an endpoint.
	_, err = f.bookingSvc.SubmitBooking(ctx, other.ID, submitInput(p.car.ID, marchRange(12, 14)))
	assert.NoError(t, err)
}

func TestBookingService_SubmitBookingWithoutWriteEnforcement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	other := f.addUser(t, "other")

	service := NewBookingService(f.ledger, f.cars, f.users, NewLocalLockService(), &config.BookingConfig{
		EnforceOverlapOnWrite: false,
		LockTTL:               time.Second,
	}, logger.NewNopLogger())

	_, err := service.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(10, 12)))
	require.NoError(t, err)
	_, err = service.SubmitBooking(ctx, other.ID, submitInput(p.car.ID, marchRange(11, 13)))
	assert.NoError(t, err)
}

func TestBookingService_ConcurrentSubmitsForSameDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)

	const renters = 8
	ids := make([]primitive.ObjectID, renters)
	for i := range ids {
		ids[i] = f.addUser(t, "renter"+string(rune('a'+i))).ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for _, renterID := range ids {
		wg.Add(1)
		go func(renterID primitive.ObjectID) {
			defer wg.Done()
			_, err := f.bookingSvc.SubmitBooking(ctx, renterID, submitInput(p.car.ID, marchRange(10, 12)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, utils.ErrConflict):
				conflicts++
			}
		}(renterID)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, renters-1, conflicts)
}

func TestBookingService_SubmitBookingRollsBackOnHistoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)

	service := NewBookingService(f.ledger, f.cars, brokenUsers{}, NewLocalLockService(), &config.BookingConfig{
		EnforceOverlapOnWrite: true,
		LockTTL:               time.Second,
		DepositRate:           0.25,
	}, logger.NewNopLogger())

	_, err := service.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(10, 12)))
	assert.True(t, errors.Is(err, utils.ErrInternal), "got %v", err)

	bookings, err := f.bookings.GetByCars(ctx, []primitive.ObjectID{p.car.ID})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookingService_SubmitBookingForNewAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	newcomer := primitive.NewObjectID()

	booking, err := f.bookingSvc.SubmitBooking(ctx, newcomer, submitInput(p.car.ID, marchRange(10, 12)))
	require.NoError(t, err)

	stored, err := f.users.GetByID(ctx, newcomer)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{booking.ID}, stored.BookedCars)
}

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)

	booking, err := f.bookingSvc.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(10, 12)))
	require.NoError(t, err)

	_, err = f.bookingSvc.Approve(ctx, p.renter.ID, booking.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = f.bookingSvc.Complete(ctx, p.owner.ID, booking.ID)
	assert.True(t, errors.Is(err, utils.ErrInvalidStateTransition))

	stored, err := f.ledger.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRequested, stored.Status)

	approved, err := f.bookingSvc.Approve(ctx, p.owner.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, approved.Status)
	assert.Equal(t, "active", approved.Status.LegacyValue())

	_, err = f.bookingSvc.Approve(ctx, p.owner.ID, booking.ID)
	assert.True(t, errors.Is(err, utils.ErrInvalidStateTransition))

	completed, err := f.bookingSvc.Complete(ctx, p.owner.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	assert.True(t, completed.Status.IsTerminal())

	_, err = f.bookingSvc.Cancel(ctx, p.renter.ID, booking.ID)
	assert.True(t, errors.Is(err, utils.ErrInvalidStateTransition))
}

func TestBookingService_RejectAndCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	stranger := f.addUser(t, "stranger")

	first, err := f.bookingSvc.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(1, 3)))
	require.NoError(t, err)

	rejected, err := f.bookingSvc.Reject(ctx, p.owner.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, rejected.Status)
	assert.Equal(t, "cancelled", rejected.Status.LegacyValue())

	_, err = f.bookingSvc.Approve(ctx, p.owner.ID, first.ID)
	assert.True(t, errors.Is(err, utils.ErrInvalidStateTransition))

	second, err := f.bookingSvc.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(5, 7)))
	require.NoError(t, err)
	_, err = f.bookingSvc.Approve(ctx, p.owner.ID, second.ID)
	require.NoError(t, err)

	_, err = f.bookingSvc.Cancel(ctx, stranger.ID, second.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	cancelled, err := f.bookingSvc.Cancel(ctx, p.renter.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
}

func TestBookingService_ApproveRechecksConfirmedOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	other := f.addUser(t, "other")

	// Requests that slipped in before write-time checks were enabled.
	first := f.addBooking(t, p.car.ID, p.renter.ID, marchRange(10, 12), models.BookingStatusRequested)
	second := f.addBooking(t, p.car.ID, other.ID, marchRange(11, 13), models.BookingStatusRequested)

	_, err := f.bookingSvc.Approve(ctx, p.owner.ID, first.ID)
	require.NoError(t, err)

	_, err = f.bookingSvc.Approve(ctx, p.owner.ID, second.ID)
	assert.True(t, errors.Is(err, utils.ErrConflict))

	stored, err := f.ledger.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRequested, stored.Status)
}

func TestBookingService_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)
	stranger := f.addUser(t, "stranger")

	booking, err := f.bookingSvc.SubmitBooking(ctx, p.renter.ID, submitInput(p.car.ID, marchRange(10, 12)))
	require.NoError(t, err)

	for _, viewer := range []primitive.ObjectID{p.renter.ID, p.owner.ID} {
		got, err := f.bookingSvc.GetBooking(ctx, viewer, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	}

	_, err = f.bookingSvc.GetBooking(ctx, stranger.ID, booking.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	mine, err := f.bookingSvc.GetRenterBookings(ctx, p.renter.ID, p.renter.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Car)
	assert.Equal(t, p.car.ID, mine[0].Car.ID)

	_, err = f.bookingSvc.GetRenterBookings(ctx, stranger.ID, p.renter.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	requests, err := f.bookingSvc.GetOwnerBookings(ctx, p.owner.ID, p.owner.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, booking.ID, requests[0].ID)
	assert.Equal(t, "Swift", requests[0].Car.Model)

	_, err = f.bookingSvc.GetOwnerBookings(ctx, p.renter.ID, p.owner.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))
}

func TestBookingService_DescribeDeletedCar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := setupParties(t, f)

	booking := f.addBooking(t, p.car.ID, p.renter.ID, marchRange(10, 12), models.BookingStatusCompleted)
	require.NoError(t, f.cars.Delete(ctx, p.car.ID))

	details, err := f.bookingSvc.Describe(ctx, booking)
	require.NoError(t, err)
	assert.Nil(t, details.Car)
	assert.Equal(t, booking.ID, details.ID)
}
