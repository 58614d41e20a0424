package interfaces

import (
	"context"

	"carrental/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingRepository is the booking ledger's storage.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// FindOverlapping returns bookings on any of carIDs, in one of statuses,
	// whose [pickup, dropoff) interval intersects interval.
	FindOverlapping(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus) ([]*models.Booking, error)

	// UpdateStatus moves a booking from one status to another atomically. It
	// fails with an invalid state transition error when the stored status is
	// no longer from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus) (*models.Booking, error)

	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Booking, error)
	GetByCars(ctx context.Context, carIDs []primitive.ObjectID) ([]*models.Booking, error)
}
