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

type carRepository struct {
	collection *mongo.Collection
}

func NewCarRepository(db *mongo.Database) interfaces.CarRepository {
	return &carRepository{
		collection: db.Collection(database.CollectionCars),
	}
}

// Basic CRUD operations
func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	car.UpdatedAt = car.CreatedAt

	if _, err := r.collection.InsertOne(ctx, car); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("a car with number plate %s already exists", car.NumberPlate)
		}
		return wrapError(err, "car", "create")
	}

	return nil
}

func (r *carRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	var car models.Car
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&car)
	if err != nil {
		return nil, wrapError(err, "car", "get")
	}

	return &car, nil
}

func (r *carRepository) GetByNumberPlate(ctx context.Context, plate string) (*models.Car, error) {
	var car models.Car
	err := r.collection.FindOne(ctx, bson.M{"number_plate": plate}).Decode(&car)
	if err != nil {
		return nil, wrapError(err, "car", "get")
	}

	return &car, nil
}

func (r *carRepository) Update(ctx context.Context, car *models.Car) error {
	car.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": car.ID}, car)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("a car with number plate %s already exists", car.NumberPlate)
		}
		return wrapError(err, "car", "update")
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("car")
	}

	return nil
}

func (r *carRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapError(err, "car", "delete")
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("car")
	}

	return nil
}

// Listing queries
func (r *carRepository) FindApprovedNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Car, error) {
	// No limit: $near sorts nearest first, so a cap would drop free cars
	// farther out before booked ones are subtracted.
	cursor, err := r.collection.Find(ctx, nearApprovedFilter(point, radiusMeters))
	if err != nil {
		return nil, wrapError(err, "cars", "find nearby")
	}

	return decodeCars(ctx, cursor)
}

func (r *carRepository) ListApproved(ctx context.Context, excludeOwner primitive.ObjectID) ([]*models.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(utils.MaxSearchResults)

	cursor, err := r.collection.Find(ctx, listApprovedFilter(excludeOwner), opts)
	if err != nil {
		return nil, wrapError(err, "cars", "list")
	}

	return decodeCars(ctx, cursor)
}

func (r *carRepository) Search(ctx context.Context, text string, limit int) ([]*models.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, searchFilter(text), opts)
	if err != nil {
		return nil, wrapError(err, "cars", "search")
	}

	return decodeCars(ctx, cursor)
}

func (r *carRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Car, error) {
	if len(ids) == 0 {
		return []*models.Car{}, nil
	}

	cursor, err := r.collection.Find(ctx, idsFilter(ids))
	if err != nil {
		return nil, wrapError(err, "cars", "list ids")
	}

	return decodeCars(ctx, cursor)
}

func (r *carRepository) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, wrapError(err, "cars", "list owner")
	}

	return decodeCars(ctx, cursor)
}

// Verification
func (r *carRepository) SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status models.CarStatus, verification models.AIVerification) (*models.Car, error) {
	update := bson.M{
		"$set": bson.M{
			"status":          status,
			"ai_verification": verification,
			"updated_at":      time.Now(),
		},
	}

	return r.updatePending(ctx, id, status, update)
}

func (r *carRepository) RecordVerificationAttempt(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Car, error) {
	update := bson.M{
		"$inc": bson.M{"ai_verification.attempts": 1},
		"$set": bson.M{
			"ai_verification.processing":   true,
			"ai_verification.requested_at": at,
			"updated_at":                   time.Now(),
		},
	}

	return r.updatePending(ctx, id, models.CarStatusPending, update)
}

func (r *carRepository) FindPendingVerification(ctx context.Context, requestedBefore time.Time, limit int) ([]*models.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, pendingVerificationFilter(requestedBefore), opts)
	if err != nil {
		return nil, wrapError(err, "cars", "find pending")
	}

	return decodeCars(ctx, cursor)
}

// updatePending applies update only while the car is still pending.
func (r *carRepository) updatePending(ctx context.Context, id primitive.ObjectID, target models.CarStatus, update bson.M) (*models.Car, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var car models.Car
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": models.CarStatusPending}, update, opts).Decode(&car)
	if err == nil {
		return &car, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, wrapError(err, "car", "update")
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, utils.NewInvalidStateTransitionError("car", current.Status, target)
}

func decodeCars(ctx context.Context, cursor *mongo.Cursor) ([]*models.Car, error) {
	defer cursor.Close(ctx)

	cars := make([]*models.Car, 0)
	for cursor.Next(ctx) {
		var car models.Car
		if err := cursor.Decode(&car); err != nil {
			return nil, wrapError(err, "car", "decode")
		}
		cars = append(cars, &car)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err, "cars", "iterate")
	}

	return cars, nil
}
