package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string
type PaymentStatus string

const (
	BookingStatusRequested BookingStatus = "Requested"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusRejected  BookingStatus = "Rejected"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// CalendarBlockingStatuses are the states in which a booking occupies the
// car's calendar.
var CalendarBlockingStatuses = []BookingStatus{BookingStatusRequested, BookingStatusConfirmed}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusRequested: {BookingStatusConfirmed, BookingStatusRejected},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusRequested, BookingStatusConfirmed, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) BlocksCalendar() bool {
	for _, blocking := range CalendarBlockingStatuses {
		if s == blocking {
			return true
		}
	}
	return false
}

// LegacyValue is the value of the older bookingStatus field that clients of
// the previous API still read.
func (s BookingStatus) LegacyValue() string {
	switch s {
	case BookingStatusRequested:
		return "upcoming"
	case BookingStatusConfirmed:
		return "active"
	case BookingStatusCompleted:
		return "completed"
	default:
		return "cancelled"
	}
}

type Booking struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CarID  primitive.ObjectID `json:"carId" bson:"car_id"`
	UserID primitive.ObjectID `json:"userId" bson:"user_id"`

	PickupDate      time.Time `json:"pickupDate" bson:"pickup_date"`
	DropoffDate     time.Time `json:"dropoffDate" bson:"dropoff_date"`
	PickupLocation  string    `json:"pickupLocation" bson:"pickup_location"`
	DropoffLocation string    `json:"dropoffLocation" bson:"dropoff_location"`

	PricePerDay     float64 `json:"pricePerDay" bson:"price_per_day"`
	TotalDays       int     `json:"totalDays" bson:"total_days"`
	BasePrice       float64 `json:"basePrice" bson:"base_price"`
	ExtraKmUsed     float64 `json:"extraKmUsed" bson:"extra_km_used"`
	ExtraKmCharge   float64 `json:"extraKmCharge" bson:"extra_km_charge"`
	DiscountApplied float64 `json:"discountApplied" bson:"discount_applied"`
	FinalPrice      float64 `json:"finalPrice" bson:"final_price"`
	DepositAmount   float64 `json:"depositAmount" bson:"deposit_amount"`

	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"payment_status"`
	PaymentMethod string        `json:"paymentMethod,omitempty" bson:"payment_method,omitempty"`

	Status BookingStatus `json:"status" bson:"status"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// MarshalJSON writes the derived legacy bookingStatus next to status.
func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	return json.Marshal(struct {
		plain
		BookingStatus string `json:"bookingStatus"`
	}{
		plain:         plain(b),
		BookingStatus: b.Status.LegacyValue(),
	})
}

// BookingDetails is a booking with its car embedded in place of the carId
// reference. Car is nil when the listing has since been deleted.
type BookingDetails struct {
	*Booking
	Car *Car
}

func (d BookingDetails) MarshalJSON() ([]byte, error) {
	type plain Booking
	var car interface{} = d.Booking.CarID
	if d.Car != nil {
		car = d.Car
	}
	return json.Marshal(struct {
		plain
		CarID         interface{} `json:"carId"`
		BookingStatus string      `json:"bookingStatus"`
	}{
		plain:         plain(*d.Booking),
		CarID:         car,
		BookingStatus: d.Booking.Status.LegacyValue(),
	})
}

func (b *Booking) Interval() DateRange {
	return DateRange{Start: b.PickupDate, End: b.DropoffDate}
}

// Quote is the deterministic price of a stay.
type Quote struct {
	PricePerDay   float64
	TotalDays     int
	BasePrice     float64
	FinalPrice    float64
	DepositAmount float64
}

func NewQuote(pricePerDay float64, interval DateRange, depositRate float64) Quote {
	days := interval.Days()
	base := pricePerDay * float64(days)
	return Quote{
		PricePerDay:   pricePerDay,
		TotalDays:     days,
		BasePrice:     base,
		FinalPrice:    base,
		DepositAmount: base * depositRate,
	}
}
