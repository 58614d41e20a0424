package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLogger_JSONFields(t *testing.T) {
	log, err := NewLogger(&Config{Level: InfoLevel, Format: "json", AppName: "CarRental"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	bookingID := primitive.NewObjectID()
	log.WithRequestID("req-1").LogBookingEvent(bookingID, "booking_requested", map[string]interface{}{
		"total_days": 2,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Booking event occurred", entry["message"])
	assert.Equal(t, bookingID.Hex(), entry["booking_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "CarRental", entry["app"])
	assert.EqualValues(t, 2, entry["total_days"])
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	parent := NewNopLogger()
	child := parent.WithField("car_id", "abc")

	assert.Empty(t, parent.fields)
	assert.Equal(t, "abc", child.fields["car_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, err := NewLogger(&Config{Level: WarnLevel, Format: "json"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithContext(t *testing.T) {
	userID := primitive.NewObjectID()
	ctx := ContextWithRequestID(context.Background(), "req-7")
	ctx = ContextWithUserID(ctx, userID)

	log := NewNopLogger().WithContext(ctx)
	assert.Equal(t, "req-7", log.fields["request_id"])
	assert.Equal(t, userID.Hex(), log.fields["user_id"])

	assert.Empty(t, NewNopLogger().WithContext(context.Background()).fields)
}
