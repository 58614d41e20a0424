package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/utils"
	"carrental/internal/validators"
	"carrental/pkg/logger"
	"carrental/pkg/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, request *ml.VerificationRequest) (*ml.VerificationVerdict, error) {
	args := m.Called(ctx, request)
	verdict, _ := args.Get(0).(*ml.VerificationVerdict)
	return verdict, args.Error(1)
}

func newTestVerificationService(f *fixture, verifier ml.ListingVerifier, maxAttempts int) *verificationService {
	cfg := &config.VerificationConfig{
		Enabled:     true,
		Timeout:     time.Second,
		Workers:     2,
		QueueSize:   4,
		MaxAttempts: maxAttempts,
		StaleAfter:  30 * time.Minute,
	}
	return NewVerificationService(verifier, f.cars, cfg, logger.NewNopLogger()).(*verificationService)
}

func TestVerificationService_WorkerAppliesVerdict(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner")
	car := f.addCar(t, owner.ID, "TS09AB1234", models.CarStatusPending, 78.40, 17.40)

	mileage := 42150.0
	verifier := &mockVerifier{}
	verifier.On("Verify", mock.Anything, mock.MatchedBy(func(r *ml.VerificationRequest) bool {
		return r.CarID == car.ID.Hex() && r.Brand == "Maruti"
	})).Return(&ml.VerificationVerdict{Verified: true, EstimatedMileage: &mileage}, nil)

	service := newTestVerificationService(f, verifier, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)
	defer service.Stop()

	require.True(t, service.Enqueue(car))

	require.Eventually(t, func() bool {
		stored, err := f.cars.GetByID(context.Background(), car.ID)
		return err == nil && stored.IsApproved()
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := f.cars.GetByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.True(t, stored.AIVerification.Verified)
	assert.False(t, stored.AIVerification.Processing)
	assert.Equal(t, 1, stored.AIVerification.Attempts)
	require.NotNil(t, stored.AIVerification.CompletedAt)
	require.NotNil(t, stored.AIVerification.EstimatedMileage)
	assert.Equal(t, mileage, *stored.AIVerification.EstimatedMileage)
}

func TestVerificationService_VerifierFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps car pending while attempts remain", func(t *testing.T) {
		f := newFixture(t)
		car := f.addCar(t, f.addUser(t, "owner").ID, "TS09AB1234", models.CarStatusPending, 78.40, 17.40)

		verifier := &mockVerifier{}
		verifier.On("Verify", mock.Anything, mock.Anything).Return(nil, errors.New("status 503"))

		service := newTestVerificationService(f, verifier, 3)
		service.process(ctx, car.ID)

		stored, err := f.cars.GetByID(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CarStatusPending, stored.Status)
		assert.Equal(t, 1, stored.AIVerification.Attempts)
	})

	t.Run("rejects with a system error after the last attempt", func(t *testing.T) {
		f := newFixture(t)
		car := f.addCar(t, f.addUser(t, "owner").ID, "TS09AB1234", models.CarStatusPending, 78.40, 17.40)

		verifier := &mockVerifier{}
		verifier.On("Verify", mock.Anything, mock.Anything).Return(nil, errors.New("status 503"))

		service := newTestVerificationService(f, verifier, 1)
		service.process(ctx, car.ID)

		stored, err := f.cars.GetByID(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CarStatusRejected, stored.Status)
		require.Len(t, stored.AIVerification.Issues, 1)
		assert.Contains(t, stored.AIVerification.Issues[0], "System Error:")
	})
}

func TestVerificationService_SkipsDecidedCars(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	car := f.addCar(t, f.addUser(t, "owner").ID, "TS09AB1234", models.CarStatusApproved, 78.40, 17.40)

	verifier := &mockVerifier{}
	service := newTestVerificationService(f, verifier, 3)
	service.process(ctx, car.ID)

	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestVerificationService_HandleVerdict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	car := f.addCar(t, f.addUser(t, "owner").ID, "TS09AB1234", models.CarStatusPending, 78.40, 17.40)

	service := newTestVerificationService(f, nil, 3)

	rejected, err := service.HandleVerdict(ctx, car.ID, &validators.VerificationCallbackRequest{
		Verified: false,
		Issues:   []string{"Front view does not match the declared model"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusRejected, rejected.Status)
	assert.Equal(t, []string{"Front view does not match the declared model"}, rejected.AIVerification.Issues)

	_, err = service.HandleVerdict(ctx, car.ID, &validators.VerificationCallbackRequest{Verified: true})
	assert.True(t, errors.Is(err, utils.ErrInvalidStateTransition))
}

func TestVerificationService_Enqueue(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner")
	car := f.addCar(t, owner.ID, "TS09AB1234", models.CarStatusPending, 78.40, 17.40)

	assert.False(t, newTestVerificationService(f, nil, 3).Enqueue(car))

	service := newTestVerificationService(f, &mockVerifier{}, 3)
	assert.True(t, service.Enqueue(car))
	assert.False(t, service.Enqueue(car), "a queued car is not queued twice")
}

func TestVerificationService_RetryStuck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addUser(t, "owner")
	stale := f.addCar(t, owner.ID, "TS09AB0001", models.CarStatusPending, 78.40, 17.40)
	exhausted := f.addCar(t, owner.ID, "TS09AB0002", models.CarStatusPending, 78.40, 17.40)
	fresh := f.addCar(t, owner.ID, "TS09AB0003", models.CarStatusPending, 78.40, 17.40)

	longAgo := time.Now().Add(-time.Hour)
	_, err := f.cars.RecordVerificationAttempt(ctx, stale.ID, longAgo)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.cars.RecordVerificationAttempt(ctx, exhausted.ID, longAgo)
		require.NoError(t, err)
	}
	_, err = f.cars.RecordVerificationAttempt(ctx, fresh.ID, time.Now())
	require.NoError(t, err)

	service := newTestVerificationService(f, &mockVerifier{}, 3)

	requeued, err := service.RetryStuck(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, requeued)

	select {
	case id := <-service.queue:
		assert.Equal(t, stale.ID, id)
	default:
		t.Fatal("expected the stale car to be queued")
	}

	stored, err := f.cars.GetByID(ctx, exhausted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusRejected, stored.Status)

	stored, err = f.cars.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarStatusPending, stored.Status)
}

func TestVerificationService_ApprovalOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	car := f.addCar(t, f.addUser(t, "owner").ID, "TS09AB1234", models.CarStatusPending, 78.40, 17.40)

	service := newTestVerificationService(f, nil, 3)

	_, err := service.HandleVerdict(ctx, primitive.NewObjectID(), &validators.VerificationCallbackRequest{Verified: true})
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	approved, err := service.HandleVerdict(ctx, car.ID, &validators.VerificationCallbackRequest{Verified: true})
	require.NoError(t, err)
	assert.True(t, approved.IsApproved())
	assert.Empty(t, approved.AIVerification.Issues)
	assert.NotNil(t, approved.AIVerification.CompletedAt)

	_, err = service.HandleVerdict(ctx, car.ID, &validators.VerificationCallbackRequest{Verified: false})
	assert.True(t, errors.Is(err, utils.ErrInvalidStateTransition))
}
