package utils

import "time"

const (
	AppName    = "CarRental"
	AppVersion = "1.0.0"

	DefaultSearchRadiusMeters = 20000.0
	DefaultDepositRate        = 0.25

	DateLayout = "2006-01-02"

	MaxSearchResults = 500
	MaxSearchQuery   = 100

	GeocodeCacheTTL   = 24 * time.Hour
	BookingLockPrefix = "lock:booking:car:"
	GeocodeKeyPrefix  = "geocode:"
)

const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "not authorized"
	ErrValidationFailed = "validation failed"
	ErrMissingFields    = "Missing required fields"
	ErrCarUnavailable   = "car is not available for the selected dates"
)

// Context keys set by middleware.
const (
	ContextUserID    = "user_id"
	ContextRequestID = "request_id"
)

// Booking lifecycle events, used as log fields.
const (
	EventBookingRequested = "booking_requested"
	EventBookingApproved  = "booking_approved"
	EventBookingRejected  = "booking_rejected"
	EventBookingCompleted = "booking_completed"
	EventBookingCancelled = "booking_cancelled"
	EventCarListed        = "car_listed"
	EventCarVerified      = "car_verified"
)

const (
	EarthRadiusKM     = 6371.0
	EarthRadiusMeters = EarthRadiusKM * 1000
)
