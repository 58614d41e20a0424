package services

import (
	"context"

	"carrental/internal/models"
	"carrental/internal/utils"
	"carrental/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityService answers which cars can take a rental request.
type AvailabilityService interface {
	ResolveAvailability(ctx context.Context, pickupAddress string, interval models.DateRange) ([]*models.Car, error)
}

type availabilityService struct {
	geocoding    GeocodingService
	cars         CarService
	ledger       BookingLedger
	radiusMeters float64
	logger       *logger.Logger
}

func NewAvailabilityService(geocoding GeocodingService, cars CarService, ledger BookingLedger, radiusMeters float64, logger *logger.Logger) AvailabilityService {
	if radiusMeters <= 0 {
		radiusMeters = utils.DefaultSearchRadiusMeters
	}
	return &availabilityService{
		geocoding:    geocoding,
		cars:         cars,
		ledger:       ledger,
		radiusMeters: radiusMeters,
		logger:       logger,
	}
}

// ResolveAvailability returns approved cars within the search radius of the
// pickup address that have no Requested or Confirmed booking overlapping the
// interval. An empty result is not an error.
func (s *availabilityService) ResolveAvailability(ctx context.Context, pickupAddress string, interval models.DateRange) ([]*models.Car, error) {
	if !interval.IsValid() {
		return nil, utils.NewValidationError("Dropoff date must be after pickup date")
	}

	point, err := s.geocoding.Resolve(ctx, pickupAddress)
	if err != nil {
		return nil, err
	}

	nearby, err := s.cars.FindApprovedNear(ctx, point, s.radiusMeters)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return []*models.Car{}, nil
	}

	carIDs := make([]primitive.ObjectID, 0, len(nearby))
	for _, car := range nearby {
		carIDs = append(carIDs, car.ID)
	}

	overlapping, err := s.ledger.FindOverlapping(ctx, carIDs, interval)
	if err != nil {
		return nil, err
	}

	booked := make(map[primitive.ObjectID]struct{}, len(overlapping))
	for _, booking := range overlapping {
		booked[booking.CarID] = struct{}{}
	}

	available := make([]*models.Car, 0, len(nearby))
	for _, car := range nearby {
		if _, taken := booked[car.ID]; !taken {
			available = append(available, car)
		}
	}

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"point":     point.String(),
		"nearby":    len(nearby),
		"booked":    len(booked),
		"available": len(available),
	}).Debug("Resolved availability")

	return available, nil
}
