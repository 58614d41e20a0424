package validators

import (
	"strings"

	"carrental/internal/models"
	"carrental/internal/utils"
)

type AvailabilityRequest struct {
	PickupLocation string `json:"pickupLocation" validate:"required,max=300"`
	PickupDate     string `json:"pickupDate" validate:"required,date_string"`
	DropoffDate    string `json:"dropoffDate" validate:"required,date_string"`
}

func (r *AvailabilityRequest) Interval() (models.DateRange, error) {
	return parseInterval(r.PickupDate, r.DropoffDate)
}

type BookingCreateRequest struct {
	CarID           string `json:"carId" validate:"required,object_id"`
	PickupDate      string `json:"pickupDate" validate:"required,date_string"`
	DropoffDate     string `json:"dropoffDate" validate:"required,date_string"`
	PickupLocation  string `json:"pickupLocation" validate:"required,max=300"`
	DropoffLocation string `json:"dropoffLocation" validate:"omitempty,max=300"`
}

func (r *BookingCreateRequest) Interval() (models.DateRange, error) {
	return parseInterval(r.PickupDate, r.DropoffDate)
}

// DropoffOrPickup returns the drop-off location, defaulting to the pickup.
func (r *BookingCreateRequest) DropoffOrPickup() string {
	if dropoff := strings.TrimSpace(r.DropoffLocation); dropoff != "" {
		return SanitizeInput(dropoff)
	}
	return SanitizeInput(r.PickupLocation)
}

func parseInterval(pickup, dropoff string) (models.DateRange, error) {
	start, err := utils.ParseDate(pickup)
	if err != nil {
		return models.DateRange{}, err
	}
	end, err := utils.ParseDate(dropoff)
	if err != nil {
		return models.DateRange{}, err
	}

	interval := models.NewDateRange(start, end)
	if !interval.IsValid() {
		return models.DateRange{}, utils.NewValidationError("Dropoff date must be after pickup date")
	}
	return interval, nil
}
