package validators

import (
	"errors"
	"testing"

	"carrental/internal/models"
	"carrental/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCarRequest() *CarCreateRequest {
	return &CarCreateRequest{
		Brand:            "Hyundai",
		Model:            "Creta",
		Year:             2022,
		VehicleType:      "SUV",
		FuelType:         "Petrol",
		TransmissionType: "Automatic",
		SeatingCapacity:  5,
		NumberPlate:      "ts 09-ab 1234",
		PricePerDay:      2000,
		Deposit:          5000,
		PickupAddress:    "Gachibowli, Hyderabad",
		Condition:        "Good",
		OwnerName:        "Ravi Kumar",
		OwnerPhone:       "+919876543210",
		Images:           CarImagesRequest{FrontView: "https://cdn.example.com/front.jpg"},
	}
}

func TestCarCreateRequest_Valid(t *testing.T) {
	req := validCarRequest()
	require.NoError(t, Validate(req))

	car := req.ToCar()
	assert.Equal(t, "TS09AB1234", car.NumberPlate)
	assert.Equal(t, models.CarCondition("Good"), car.Condition)
	assert.Equal(t, "https://cdn.example.com/front.jpg", car.Images.FrontView)
}

func TestCarCreateRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CarCreateRequest)
		field  string
	}{
		{"missing brand", func(r *CarCreateRequest) { r.Brand = "" }, "Brand"},
		{"zero price", func(r *CarCreateRequest) { r.PricePerDay = 0 }, "PricePerDay"},
		{"bad fuel", func(r *CarCreateRequest) { r.FuelType = "Steam" }, "FuelType"},
		{"ancient year", func(r *CarCreateRequest) { r.Year = 1900 }, "Year"},
		{"bad plate", func(r *CarCreateRequest) { r.NumberPlate = "!!" }, "NumberPlate"},
		{"missing front view", func(r *CarCreateRequest) { r.Images.FrontView = "" }, "FrontView"},
		{"bad phone", func(r *CarCreateRequest) { r.OwnerPhone = "call me" }, "OwnerPhone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCarRequest()
			tt.mutate(req)

			errs := ValidateStruct(req)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)

			err := Validate(req)
			assert.True(t, errors.Is(err, utils.ErrValidation))
		})
	}
}

func TestCarUpdateRequest_Apply(t *testing.T) {
	car := &models.Car{PricePerDay: 1500, PickupAddress: "Madhapur"}

	price := 1800.0
	same := "Madhapur"
	changed := (&CarUpdateRequest{PricePerDay: &price, PickupAddress: &same}).Apply(car)
	assert.False(t, changed)
	assert.Equal(t, 1800.0, car.PricePerDay)

	moved := "Kondapur"
	changed = (&CarUpdateRequest{PickupAddress: &moved}).Apply(car)
	assert.True(t, changed)
	assert.Equal(t, "Kondapur", car.PickupAddress)
}

func TestBookingCreateRequest(t *testing.T) {
	req := &BookingCreateRequest{
		CarID:          "65f0c0ffee0000000000beef",
		PickupDate:     "2025-03-10",
		DropoffDate:    "2025-03-12",
		PickupLocation: "Hitech City",
	}
	require.NoError(t, Validate(req))
	assert.Equal(t, "Hitech City", req.DropoffOrPickup())

	interval, err := req.Interval()
	require.NoError(t, err)
	assert.Equal(t, 2, interval.Days())

	req.CarID = "not-an-id"
	assert.Error(t, Validate(req))
}

func TestParseInterval_RejectsInvertedAndEmpty(t *testing.T) {
	_, err := parseInterval("2025-03-12", "2025-03-10")
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = parseInterval("2025-03-12", "2025-03-12")
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = parseInterval("tomorrow", "2025-03-12")
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestAvailabilityRequest_MissingFields(t *testing.T) {
	errs := ValidateStruct(&AvailabilityRequest{PickupDate: "2025-03-10"})
	require.Len(t, errs, 2)
	assert.Equal(t, "PickupLocation", errs[0].Field)
	assert.Equal(t, "DropoffDate", errs[1].Field)
}

func TestNormalizeNumberPlate(t *testing.T) {
	assert.Equal(t, "KA01MJ2022", NormalizeNumberPlate("  ka-01 mj-2022 "))
}
