package mongodb

import (
	"context"
	"errors"
	"time"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"
	"carrental/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection(database.CollectionBookings),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return wrapError(err, "booking", "create")
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return nil, wrapError(err, "booking", "get")
	}

	return &booking, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapError(err, "booking", "delete")
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("booking")
	}

	return nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus) ([]*models.Booking, error) {
	if len(carIDs) == 0 || len(statuses) == 0 {
		return []*models.Booking{}, nil
	}

	cursor, err := r.collection.Find(ctx, overlapFilter(carIDs, interval, statuses))
	if err != nil {
		return nil, wrapError(err, "bookings", "find overlapping")
	}

	return decodeBookings(ctx, cursor)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.BookingStatus) (*models.Booking, error) {
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, wrapError(err, "booking", "update")
	}

	// Either the booking is gone or someone moved it first.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, utils.NewInvalidStateTransitionError("booking", current.Status, to)
}

func (r *bookingRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, wrapError(err, "bookings", "list user")
	}

	return decodeBookings(ctx, cursor)
}

func (r *bookingRepository) GetByCars(ctx context.Context, carIDs []primitive.ObjectID) ([]*models.Booking, error) {
	if len(carIDs) == 0 {
		return []*models.Booking{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"car_id": bson.M{"$in": carIDs}}, opts)
	if err != nil {
		return nil, wrapError(err, "bookings", "list cars")
	}

	return decodeBookings(ctx, cursor)
}

func decodeBookings(ctx context.Context, cursor *mongo.Cursor) ([]*models.Booking, error) {
	defer cursor.Close(ctx)

	bookings := make([]*models.Booking, 0)
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, wrapError(err, "booking", "decode")
		}
		bookings = append(bookings, &booking)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err, "bookings", "iterate")
	}

	return bookings, nil
}
