package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarStatus string
type CarCondition string

const (
	CarStatusPending  CarStatus = "pending"
	CarStatusApproved CarStatus = "approved"
	CarStatusRejected CarStatus = "rejected"

	CarConditionExcellent CarCondition = "Excellent"
	CarConditionGood      CarCondition = "Good"
	CarConditionAverage   CarCondition = "Average"
)

func (s CarStatus) IsValid() bool {
	switch s {
	case CarStatusPending, CarStatusApproved, CarStatusRejected:
		return true
	}
	return false
}

type CarImages struct {
	FrontView         string `json:"frontView" bson:"front_view"`
	SideView          string `json:"sideView,omitempty" bson:"side_view,omitempty"`
	RearView          string `json:"rearView,omitempty" bson:"rear_view,omitempty"`
	InteriorDashboard string `json:"interiorDashboard,omitempty" bson:"interior_dashboard,omitempty"`
	Seats             string `json:"seats,omitempty" bson:"seats,omitempty"`
	Odometer          string `json:"odometer,omitempty" bson:"odometer,omitempty"`
}

type OwnerRules struct {
	NoSmoking        bool `json:"noSmoking" bson:"no_smoking"`
	NoPets           bool `json:"noPets" bson:"no_pets"`
	NoOutstation     bool `json:"noOutstation" bson:"no_outstation"`
	FuelReturnPolicy bool `json:"fuelReturnPolicy" bson:"fuel_return_policy"`
}

type VerificationDocs struct {
	RCBook               string `json:"rcBook,omitempty" bson:"rc_book,omitempty"`
	Insurance            string `json:"insurance,omitempty" bson:"insurance,omitempty"`
	PollutionCertificate string `json:"pollutionCertificate,omitempty" bson:"pollution_certificate,omitempty"`
}

// AIVerification holds the verdict metadata delivered by the listing
// verification pipeline.
type AIVerification struct {
	Processing       bool       `json:"processing" bson:"processing"`
	Verified         bool       `json:"verified" bson:"verified"`
	Issues           []string   `json:"issues" bson:"issues"`
	EstimatedMileage *float64   `json:"estimatedMileage,omitempty" bson:"estimated_mileage,omitempty"`
	Attempts         int        `json:"attempts" bson:"attempts"`
	RequestedAt      *time.Time `json:"requestedAt,omitempty" bson:"requested_at,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
}

type Car struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID primitive.ObjectID `json:"ownerId" bson:"owner_id"`

	Brand            string `json:"brand" bson:"brand"`
	Model            string `json:"model" bson:"model"`
	Year             int    `json:"year" bson:"year"`
	VehicleType      string `json:"vehicleType" bson:"vehicle_type"`
	FuelType         string `json:"fuelType" bson:"fuel_type"`
	TransmissionType string `json:"transmissionType" bson:"transmission_type"`
	SeatingCapacity  int    `json:"seatingCapacity" bson:"seating_capacity"`

	Images CarImages `json:"images" bson:"images"`

	NumberPlate      string  `json:"carNumberPlate" bson:"number_plate"`
	Mileage          float64 `json:"mileage" bson:"mileage"`
	EngineCapacity   float64 `json:"engineCapacity" bson:"engine_capacity"`
	AirConditioning  bool    `json:"airConditioning" bson:"air_conditioning"`
	FuelTankCapacity float64 `json:"fuelTankCapacity" bson:"fuel_tank_capacity"`
	Color            string  `json:"color,omitempty" bson:"color,omitempty"`

	PricePerDay float64 `json:"pricePerDay" bson:"price_per_day"`
	Deposit     float64 `json:"deposit" bson:"deposit"`

	PickupAddress     string  `json:"pickupAddress" bson:"pickup_address"`
	DropOffAllowed    bool    `json:"dropOffAllowed" bson:"drop_off_allowed"`
	DeliveryAvailable bool    `json:"deliveryAvailable" bson:"delivery_available"`
	DeliveryCharge    float64 `json:"deliveryCharge" bson:"delivery_charge"`

	Condition     CarCondition `json:"condition" bson:"condition"`
	KmLimit       float64      `json:"kmLimit" bson:"km_limit"`
	ExtraKmCharge float64      `json:"extraKmCharge" bson:"extra_km_charge"`
	OwnerRules    OwnerRules   `json:"ownerRules" bson:"owner_rules"`

	OwnerName       string `json:"ownerName" bson:"owner_name"`
	OwnerPhone      string `json:"ownerPhone" bson:"owner_phone"`
	OwnerDocumentID string `json:"ownerDocumentId,omitempty" bson:"owner_document_id,omitempty"`

	VerificationDocs VerificationDocs `json:"verificationDocs" bson:"verification_docs"`

	Status         CarStatus      `json:"status" bson:"status"`
	AIVerification AIVerification `json:"aiVerification" bson:"ai_verification"`

	// Location is resolved once from PickupAddress and never re-geocoded on read.
	Location GeoPoint `json:"location" bson:"location"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (c *Car) IsApproved() bool {
	return c.Status == CarStatusApproved
}
