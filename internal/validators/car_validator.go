package validators

import (
	"carrental/internal/models"
)

type CarImagesRequest struct {
	FrontView         string `json:"frontView" validate:"required,url"`
	SideView          string `json:"sideView" validate:"omitempty,url"`
	RearView          string `json:"rearView" validate:"omitempty,url"`
	InteriorDashboard string `json:"interiorDashboard" validate:"omitempty,url"`
	Seats             string `json:"seats" validate:"omitempty,url"`
	Odometer          string `json:"odometer" validate:"omitempty,url"`
}

type VerificationDocsRequest struct {
	RCBook               string `json:"rcBook" validate:"omitempty,url"`
	Insurance            string `json:"insurance" validate:"omitempty,url"`
	PollutionCertificate string `json:"pollutionCertificate" validate:"omitempty,url"`
}

// CarCreateRequest carries a new listing. Images and documents are URLs of
// files already uploaded to blob storage.
type CarCreateRequest struct {
	Brand            string  `json:"brand" validate:"required,min=2,max=50"`
	Model            string  `json:"model" validate:"required,min=1,max=50"`
	Year             int     `json:"year" validate:"required,model_year"`
	VehicleType      string  `json:"vehicleType" validate:"required,max=30"`
	FuelType         string  `json:"fuelType" validate:"required,oneof=Petrol Diesel Electric Hybrid CNG"`
	TransmissionType string  `json:"transmissionType" validate:"required,oneof=Manual Automatic"`
	SeatingCapacity  int     `json:"seatingCapacity" validate:"required,min=1,max=20"`
	NumberPlate      string  `json:"carNumberPlate" validate:"required,license_plate"`
	Mileage          float64 `json:"mileage" validate:"gte=0"`
	EngineCapacity   float64 `json:"engineCapacity" validate:"gte=0"`
	AirConditioning  bool    `json:"airConditioning"`
	FuelTankCapacity float64 `json:"fuelTankCapacity" validate:"gte=0"`
	Color            string  `json:"color" validate:"omitempty,max=30"`

	PricePerDay float64 `json:"pricePerDay" validate:"required,gt=0"`
	Deposit     float64 `json:"deposit" validate:"gte=0"`

	PickupAddress     string  `json:"pickupAddress" validate:"required,min=3,max=300"`
	DropOffAllowed    bool    `json:"dropOffAllowed"`
	DeliveryAvailable bool    `json:"deliveryAvailable"`
	DeliveryCharge    float64 `json:"deliveryCharge" validate:"gte=0"`

	Condition     string            `json:"condition" validate:"omitempty,oneof=Excellent Good Average"`
	KmLimit       float64           `json:"kmLimit" validate:"gte=0"`
	ExtraKmCharge float64           `json:"extraKmCharge" validate:"gte=0"`
	OwnerRules    models.OwnerRules `json:"ownerRules"`

	OwnerName       string `json:"ownerName" validate:"required,min=2,max=100"`
	OwnerPhone      string `json:"ownerPhone" validate:"required,phone_number"`
	OwnerDocumentID string `json:"ownerDocumentId" validate:"omitempty,max=30"`

	Images           CarImagesRequest        `json:"images"`
	VerificationDocs VerificationDocsRequest `json:"verificationDocs"`
}

// ToCar builds the pending car record. Location and status are set by the
// caller.
func (r *CarCreateRequest) ToCar() *models.Car {
	return &models.Car{
		Brand:            SanitizeInput(r.Brand),
		Model:            SanitizeInput(r.Model),
		Year:             r.Year,
		VehicleType:      SanitizeInput(r.VehicleType),
		FuelType:         r.FuelType,
		TransmissionType: r.TransmissionType,
		SeatingCapacity:  r.SeatingCapacity,
		Images: models.CarImages{
			FrontView:         r.Images.FrontView,
			SideView:          r.Images.SideView,
			RearView:          r.Images.RearView,
			InteriorDashboard: r.Images.InteriorDashboard,
			Seats:             r.Images.Seats,
			Odometer:          r.Images.Odometer,
		},
		NumberPlate:       NormalizeNumberPlate(r.NumberPlate),
		Mileage:           r.Mileage,
		EngineCapacity:    r.EngineCapacity,
		AirConditioning:   r.AirConditioning,
		FuelTankCapacity:  r.FuelTankCapacity,
		Color:             SanitizeInput(r.Color),
		PricePerDay:       r.PricePerDay,
		Deposit:           r.Deposit,
		PickupAddress:     SanitizeInput(r.PickupAddress),
		DropOffAllowed:    r.DropOffAllowed,
		DeliveryAvailable: r.DeliveryAvailable,
		DeliveryCharge:    r.DeliveryCharge,
		Condition:         models.CarCondition(r.Condition),
		KmLimit:           r.KmLimit,
		ExtraKmCharge:     r.ExtraKmCharge,
		OwnerRules:        r.OwnerRules,
		OwnerName:         SanitizeInput(r.OwnerName),
		OwnerPhone:        r.OwnerPhone,
		OwnerDocumentID:   r.OwnerDocumentID,
		VerificationDocs: models.VerificationDocs{
			RCBook:               r.VerificationDocs.RCBook,
			Insurance:            r.VerificationDocs.Insurance,
			PollutionCertificate: r.VerificationDocs.PollutionCertificate,
		},
	}
}

// CarUpdateRequest edits a listing. Status and location are not editable;
// a new pickup address is geocoded again by the service.
type CarUpdateRequest struct {
	PricePerDay       *float64           `json:"pricePerDay" validate:"omitempty,gt=0"`
	Deposit           *float64           `json:"deposit" validate:"omitempty,gte=0"`
	PickupAddress     *string            `json:"pickupAddress" validate:"omitempty,min=3,max=300"`
	DropOffAllowed    *bool              `json:"dropOffAllowed"`
	DeliveryAvailable *bool              `json:"deliveryAvailable"`
	DeliveryCharge    *float64           `json:"deliveryCharge" validate:"omitempty,gte=0"`
	Condition         *string            `json:"condition" validate:"omitempty,oneof=Excellent Good Average"`
	KmLimit           *float64           `json:"kmLimit" validate:"omitempty,gte=0"`
	ExtraKmCharge     *float64           `json:"extraKmCharge" validate:"omitempty,gte=0"`
	Color             *string            `json:"color" validate:"omitempty,max=30"`
	Mileage           *float64           `json:"mileage" validate:"omitempty,gte=0"`
	OwnerRules        *models.OwnerRules `json:"ownerRules"`
}

// Apply copies the set fields onto car. It reports whether the pickup
// address changed.
func (r *CarUpdateRequest) Apply(car *models.Car) (addressChanged bool) {
	if r.PricePerDay != nil {
		car.PricePerDay = *r.PricePerDay
	}
	if r.Deposit != nil {
		car.Deposit = *r.Deposit
	}
	if r.PickupAddress != nil {
		address := SanitizeInput(*r.PickupAddress)
		if address != car.PickupAddress {
			car.PickupAddress = address
			addressChanged = true
		}
	}
	if r.DropOffAllowed != nil {
		car.DropOffAllowed = *r.DropOffAllowed
	}
	if r.DeliveryAvailable != nil {
		car.DeliveryAvailable = *r.DeliveryAvailable
	}
	if r.DeliveryCharge != nil {
		car.DeliveryCharge = *r.DeliveryCharge
	}
	if r.Condition != nil {
		car.Condition = models.CarCondition(*r.Condition)
	}
	if r.KmLimit != nil {
		car.KmLimit = *r.KmLimit
	}
	if r.ExtraKmCharge != nil {
		car.ExtraKmCharge = *r.ExtraKmCharge
	}
	if r.Color != nil {
		car.Color = SanitizeInput(*r.Color)
	}
	if r.Mileage != nil {
		car.Mileage = *r.Mileage
	}
	if r.OwnerRules != nil {
		car.OwnerRules = *r.OwnerRules
	}
	return addressChanged
}

type VerificationCallbackRequest struct {
	Verified         bool     `json:"verified"`
	Issues           []string `json:"issues" validate:"omitempty,max=50"`
	EstimatedMileage *float64 `json:"estimatedMileage" validate:"omitempty,gte=0"`
}
