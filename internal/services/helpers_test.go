package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/repositories/memory"
	"carrental/internal/utils"
	"carrental/pkg/cache"
	"carrental/pkg/logger"
	"carrental/pkg/maps"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func march(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

func marchRange(from, to int) models.DateRange {
	return models.NewDateRange(march(from), march(to))
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*maps.GeocodeResponse, error) {
	args := m.Called(ctx, address)
	resp, _ := args.Get(0).(*maps.GeocodeResponse)
	return resp, args.Error(1)
}

func (m *mockGeocoder) Name() string {
	return "mock"
}

func geocodeHit(lat, lng float64) *maps.GeocodeResponse {
	return &maps.GeocodeResponse{Results: []maps.GeocodeResult{{
		Coordinates: maps.Location{Latitude: lat, Longitude: lng},
	}}}
}

// stubGeocoding resolves every address to the same point unless err is set.
type stubGeocoding struct {
	point models.GeoPoint
	err   error
	calls int
}

func (s *stubGeocoding) Resolve(ctx context.Context, address string) (models.GeoPoint, error) {
	s.calls++
	if s.err != nil {
		return models.GeoPoint{}, s.err
	}
	return s.point, nil
}

// memoryCache is a CacheService backed by a map.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.items[key]; held {
		return false, nil
	}
	c.items[key] = []byte(token)
	return true, nil
}

func (c *memoryCache) ReleaseLock(ctx context.Context, key, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if string(c.items[key]) == token {
		delete(c.items, key)
	}
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return nil
}

type recordingQueue struct {
	cars []*models.Car
}

func (q *recordingQueue) Enqueue(car *models.Car) bool {
	q.cars = append(q.cars, car)
	return true
}

type fixture struct {
	cars     *memory.CarRepository
	bookings *memory.BookingRepository
	users    *memory.UserRepository

	geocoding *stubGeocoding
	queue     *recordingQueue

	carService   CarService
	ledger       BookingLedger
	availability AvailabilityService
	bookingSvc   BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewNopLogger()
	f := &fixture{
		cars:      memory.NewCarRepository(),
		bookings:  memory.NewBookingRepository(),
		users:     memory.NewUserRepository(),
		geocoding: &stubGeocoding{point: models.NewGeoPoint(78.41, 17.41)},
		queue:     &recordingQueue{},
	}

	f.carService = NewCarService(f.cars, f.users, f.geocoding, f.queue, log)
	f.ledger = NewBookingLedger(f.bookings, f.cars, 0.25)
	f.availability = NewAvailabilityService(f.geocoding, f.carService, f.ledger, 20000, log)
	f.bookingSvc = NewBookingService(f.ledger, f.cars, f.users, NewLocalLockService(), &config.BookingConfig{
		EnforceOverlapOnWrite: true,
		LockTTL:               time.Second,
		DepositRate:           0.25,
	}, log)

	return f
}

func (f *fixture) addUser(t *testing.T, name string) *models.User {
	t.Helper()
	// Accounts belong to the auth service; the store learns about a user on first write.
	return &models.User{ID: primitive.NewObjectID(), FullName: name, Email: name + "@example.com"}
}

func (f *fixture) addCar(t *testing.T, ownerID primitive.ObjectID, plate string, status models.CarStatus, lng, lat float64) *models.Car {
	t.Helper()
	car := &models.Car{
		OwnerID:     ownerID,
		Brand:       "Maruti",
		Model:       "Swift",
		NumberPlate: plate,
		PricePerDay: 2000,
		Status:      status,
		Location:    models.NewGeoPoint(lng, lat),
	}
	require.NoError(t, f.cars.Create(context.Background(), car))
	return car
}

func (f *fixture) addBooking(t *testing.T, carID, renterID primitive.ObjectID, interval models.DateRange, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		CarID:       carID,
		UserID:      renterID,
		PickupDate:  interval.Start,
		DropoffDate: interval.End,
		Status:      status,
	}
	require.NoError(t, f.bookings.Create(context.Background(), booking))
	return booking
}

// brokenUsers fails every history write.
type brokenUsers struct{}

func (brokenUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return nil, utils.NewNotFoundError("user")
}

func (brokenUsers) AppendBooking(ctx context.Context, userID, bookingID primitive.ObjectID) error {
	return utils.NewInternalError("failed to update user", errors.New("connection reset"))
}

func (brokenUsers) AppendListedCar(ctx context.Context, userID, carID primitive.ObjectID) error {
	return utils.NewInternalError("failed to update user", errors.New("connection reset"))
}
