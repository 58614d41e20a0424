package interfaces

import (
	"context"

	"carrental/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// AppendBooking records a booking in the renter's history.
	AppendBooking(ctx context.Context, userID, bookingID primitive.ObjectID) error
	// AppendListedCar records a listing and flags the user as an owner.
	AppendListedCar(ctx context.Context, userID, carID primitive.ObjectID) error
}
