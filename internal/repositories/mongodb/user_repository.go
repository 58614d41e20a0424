package mongodb

import (
	"context"
	"time"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"
	"carrental/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.CollectionUsers),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, wrapError(err, "user", "get")
	}

	return &user, nil
}

func (r *userRepository) AppendBooking(ctx context.Context, userID, bookingID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{
		"$push": bson.M{"booked_cars": bookingID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

func (r *userRepository) AppendListedCar(ctx context.Context, userID, carID primitive.ObjectID) error {
	return r.update(ctx, userID, bson.M{
		"$push": bson.M{"listed_cars": carID},
		"$set":  bson.M{"is_owner": true, "updated_at": time.Now()},
	})
}

func (r *userRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return wrapError(err, "user", "update")
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("user")
	}

	return nil
}
