package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookingStatus_Transitions(t *testing.T) {
	all := []BookingStatus{
		BookingStatusRequested, BookingStatusConfirmed, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled,
	}
	legal := map[BookingStatus]map[BookingStatus]bool{
		BookingStatusRequested: {BookingStatusConfirmed: true, BookingStatusRejected: true},
		BookingStatusConfirmed: {BookingStatusCompleted: true, BookingStatusCancelled: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.False(t, BookingStatusRequested.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusRejected.IsTerminal())
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
}

func TestBookingStatus_BlocksCalendar(t *testing.T) {
	assert.True(t, BookingStatusRequested.BlocksCalendar())
	assert.True(t, BookingStatusConfirmed.BlocksCalendar())
	assert.False(t, BookingStatusRejected.BlocksCalendar())
	assert.False(t, BookingStatusCompleted.BlocksCalendar())
	assert.False(t, BookingStatusCancelled.BlocksCalendar())
}

func TestBookingStatus_LegacyValue(t *testing.T) {
	assert.Equal(t, "upcoming", BookingStatusRequested.LegacyValue())
	assert.Equal(t, "active", BookingStatusConfirmed.LegacyValue())
	assert.Equal(t, "cancelled", BookingStatusRejected.LegacyValue())
	assert.Equal(t, "completed", BookingStatusCompleted.LegacyValue())
	assert.Equal(t, "cancelled", BookingStatusCancelled.LegacyValue())
}

func TestNewQuote(t *testing.T) {
	t.Run("whole days", func(t *testing.T) {
		q := NewQuote(2000, NewDateRange(date(10), date(12)), 0.25)
		assert.Equal(t, 2, q.TotalDays)
		assert.Equal(t, 4000.0, q.BasePrice)
		assert.Equal(t, 4000.0, q.FinalPrice)
		assert.Equal(t, 1000.0, q.DepositAmount)
	})

	t.Run("partial day truncates", func(t *testing.T) {
		q := NewQuote(1500, NewDateRange(date(10), date(13).Add(20*time.Hour)), 0.25)
		assert.Equal(t, 3, q.TotalDays)
		assert.Equal(t, 4500.0, q.BasePrice)
		assert.Equal(t, 1125.0, q.DepositAmount)
	})

	t.Run("final price never below base", func(t *testing.T) {
		q := NewQuote(999.5, NewDateRange(date(1), date(8)), 0.25)
		assert.GreaterOrEqual(t, q.FinalPrice, q.BasePrice)
	})
}

func TestGeoPoint(t *testing.T) {
	p := NewGeoPoint(78.40, 17.40)
	assert.Equal(t, 78.40, p.Longitude())
	assert.Equal(t, 17.40, p.Latitude())
	assert.True(t, p.IsValid())
	assert.False(t, NewGeoPoint(181, 0).IsValid())
	assert.False(t, NewGeoPoint(0, -91).IsValid())
	assert.False(t, GeoPoint{}.IsValid())
}

func TestBooking_MarshalJSONAddsLegacyStatus(t *testing.T) {
	booking := Booking{
		Status:      BookingStatusConfirmed,
		PickupDate:  date(10),
		DropoffDate: date(12),
		TotalDays:   2,
	}

	data, err := json.Marshal(&booking)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Confirmed", decoded["status"])
	assert.Equal(t, "active", decoded["bookingStatus"])
	assert.EqualValues(t, 2, decoded["totalDays"])
}

func TestBookingDetails_MarshalJSONEmbedsCar(t *testing.T) {
	carID := primitive.NewObjectID()
	booking := &Booking{CarID: carID, Status: BookingStatusRequested}

	data, err := json.Marshal(&BookingDetails{
		Booking: booking,
		Car:     &Car{ID: carID, Brand: "Hyundai", Model: "Creta"},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	car, ok := decoded["carId"].(map[string]interface{})
	require.True(t, ok, string(data))
	assert.Equal(t, "Hyundai", car["brand"])
	assert.Equal(t, carID.Hex(), car["id"])
	assert.Equal(t, "upcoming", decoded["bookingStatus"])

	// Without the car the reference stays a plain id.
	data, err = json.Marshal(&BookingDetails{Booking: booking})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, carID.Hex(), decoded["carId"])
}
