package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[primitive.ObjectID]*models.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

var _ interfaces.BookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.bookings[booking.ID] = cloneBooking(booking)

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, utils.NewNotFoundError("booking")
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return utils.NewNotFoundError("booking")
	}
	delete(r.bookings, id)
	return nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus) ([]*models.Booking, error) {
	cars := idSet(carIDs)
	wanted := make(map[models.BookingStatus]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	return r.filter(func(b *models.Booking) bool {
		if _, ok := cars[b.CarID]; !ok {
			return false
		}
		if _, ok := wanted[b.Status]; !ok {
			return false
		}
		return b.Interval().Overlaps(interval)
	}), nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[id]
	if !ok {
		return nil, utils.NewNotFoundError("booking")
	}
	if stored.Status != from {
		return nil, utils.NewInvalidStateTransitionError("booking", stored.Status, to)
	}

	updated := cloneBooking(stored)
	updated.Status = to
	updated.UpdatedAt = time.Now()
	r.bookings[id] = updated

	return cloneBooking(updated), nil
}

func (r *BookingRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Booking, error) {
	return r.filter(func(b *models.Booking) bool { return b.UserID == userID }), nil
}

func (r *BookingRepository) GetByCars(ctx context.Context, carIDs []primitive.ObjectID) ([]*models.Booking, error) {
	cars := idSet(carIDs)
	return r.filter(func(b *models.Booking) bool {
		_, ok := cars[b.CarID]
		return ok
	}), nil
}

// filter returns matches newest first.
func (r *BookingRepository) filter(keep func(*models.Booking) bool) []*models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]*models.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return bookings
}
