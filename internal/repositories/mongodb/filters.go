package mongodb

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"carrental/internal/models"
	"carrental/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// nearApprovedFilter matches approved cars whose location lies within
// radiusMeters of point. Requires the 2dsphere index on location.
func nearApprovedFilter(point models.GeoPoint, radiusMeters float64) bson.M {
	return bson.M{
		"status": models.CarStatusApproved,
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{point.Longitude(), point.Latitude()},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}
}

// overlapFilter matches bookings whose half-open [pickup, dropoff) interval
// intersects interval. Touching endpoints do not match.
func overlapFilter(carIDs []primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus) bson.M {
	return bson.M{
		"car_id":       bson.M{"$in": carIDs},
		"status":       bson.M{"$in": statuses},
		"pickup_date":  bson.M{"$lt": interval.End},
		"dropoff_date": bson.M{"$gt": interval.Start},
	}
}

func listApprovedFilter(excludeOwner primitive.ObjectID) bson.M {
	filter := bson.M{"status": models.CarStatusApproved}
	if !excludeOwner.IsZero() {
		filter["owner_id"] = bson.M{"$ne": excludeOwner}
	}
	return filter
}

func searchFilter(text string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(text)), Options: "i"}
	return bson.M{
		"status": models.CarStatusApproved,
		"$or": bson.A{
			bson.M{"brand": pattern},
			bson.M{"model": pattern},
			bson.M{"vehicle_type": pattern},
		},
	}
}

func pendingVerificationFilter(requestedBefore time.Time) bson.M {
	return bson.M{
		"status": models.CarStatusPending,
		"$or": bson.A{
			bson.M{"ai_verification.requested_at": bson.M{"$lt": requestedBefore}},
			bson.M{"ai_verification.requested_at": bson.M{"$exists": false}},
		},
	}
}

// wrapError translates driver errors into application errors.
func wrapError(err error, resource, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.NewNotFoundError(resource)
	}
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewConflictError("%s already exists", resource)
	}
	return utils.NewInternalError("failed to "+action+" "+resource, err)
}

func idsFilter(ids []primitive.ObjectID) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}
