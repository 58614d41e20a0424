package mongodb

import (
	"errors"
	"testing"
	"time"

	"carrental/internal/models"
	"carrental/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNearApprovedFilter(t *testing.T) {
	filter := nearApprovedFilter(models.NewGeoPoint(78.40, 17.40), 20000)

	assert.Equal(t, models.CarStatusApproved, filter["status"])

	near := filter["location"].(bson.M)["$near"].(bson.M)
	assert.Equal(t, 20000.0, near["$maxDistance"])

	geometry := near["$geometry"].(bson.M)
	assert.Equal(t, "Point", geometry["type"])
	// GeoJSON order is longitude first.
	assert.Equal(t, []float64{78.40, 17.40}, geometry["coordinates"])
}

func TestOverlapFilter_HalfOpenBounds(t *testing.T) {
	carID := primitive.NewObjectID()
	start := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)

	filter := overlapFilter([]primitive.ObjectID{carID}, models.NewDateRange(start, end), models.CalendarBlockingStatuses)

	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{carID}}, filter["car_id"])
	assert.Equal(t, bson.M{"$in": models.CalendarBlockingStatuses}, filter["status"])
	// Strict comparisons so back-to-back stays never match.
	assert.Equal(t, bson.M{"$lt": end}, filter["pickup_date"])
	assert.Equal(t, bson.M{"$gt": start}, filter["dropoff_date"])
}

func TestIDsFilter(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	assert.Equal(t, bson.M{"_id": bson.M{"$in": ids}}, idsFilter(ids))
}

func TestListApprovedFilter(t *testing.T) {
	assert.NotContains(t, listApprovedFilter(primitive.NilObjectID), "owner_id")

	owner := primitive.NewObjectID()
	filter := listApprovedFilter(owner)
	assert.Equal(t, bson.M{"$ne": owner}, filter["owner_id"])
}

func TestSearchFilter_EscapesRegex(t *testing.T) {
	filter := searchFilter("  c.r+ ")
	clauses := filter["$or"].(bson.A)
	require.Len(t, clauses, 3)

	brand := clauses[0].(bson.M)["brand"].(primitive.Regex)
	assert.Equal(t, `c\.r\+`, brand.Pattern)
	assert.Equal(t, "i", brand.Options)
}

func TestPendingVerificationFilter(t *testing.T) {
	before := time.Now()
	filter := pendingVerificationFilter(before)
	assert.Equal(t, models.CarStatusPending, filter["status"])
	assert.Len(t, filter["$or"], 2)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, wrapError(nil, "car", "get"))
	assert.True(t, errors.Is(wrapError(mongo.ErrNoDocuments, "car", "get"), utils.ErrNotFound))

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.True(t, errors.Is(wrapError(dup, "car", "create"), utils.ErrConflict))

	other := wrapError(errors.New("connection reset"), "car", "get")
	assert.Equal(t, utils.KindInternal, utils.KindOf(other))
}
