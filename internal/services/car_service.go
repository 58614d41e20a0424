package services

import (
	"context"
	"errors"
	"strings"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"
	"carrental/internal/validators"
	"carrental/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationQueue accepts newly listed cars for asynchronous verification.
type VerificationQueue interface {
	Enqueue(car *models.Car) bool
}

// CarService is the car directory.
type CarService interface {
	// Directory queries
	FindApprovedNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Car, error)
	GetCar(ctx context.Context, carID primitive.ObjectID) (*models.Car, error)
	ListCars(ctx context.Context, viewerID primitive.ObjectID) ([]*models.Car, error)
	SearchCars(ctx context.Context, query string) ([]*models.Car, error)
	GetOwnerCars(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error)

	// Listing management
	CreateListing(ctx context.Context, ownerID primitive.ObjectID, request *validators.CarCreateRequest) (*models.Car, error)
	UpdateListing(ctx context.Context, ownerID, carID primitive.ObjectID, request *validators.CarUpdateRequest) (*models.Car, error)
	DeleteListing(ctx context.Context, ownerID, carID primitive.ObjectID) error
}

type carService struct {
	carRepo   interfaces.CarRepository
	userRepo  interfaces.UserRepository
	geocoding GeocodingService
	queue     VerificationQueue
	logger    *logger.Logger
}

func NewCarService(
	carRepo interfaces.CarRepository,
	userRepo interfaces.UserRepository,
	geocoding GeocodingService,
	queue VerificationQueue,
	logger *logger.Logger,
) CarService {
	return &carService{
		carRepo:   carRepo,
		userRepo:  userRepo,
		geocoding: geocoding,
		queue:     queue,
		logger:    logger,
	}
}

func (s *carService) FindApprovedNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Car, error) {
	if !point.IsValid() {
		return nil, utils.NewValidationError("invalid search point %v", point.Coordinates)
	}
	if radiusMeters <= 0 {
		return nil, utils.NewValidationError("search radius must be positive")
	}
	return s.carRepo.FindApprovedNear(ctx, point, radiusMeters)
}

func (s *carService) GetCar(ctx context.Context, carID primitive.ObjectID) (*models.Car, error) {
	return s.carRepo.GetByID(ctx, carID)
}

// ListCars returns approved cars, hiding the viewer's own listings when a
// viewer is known.
func (s *carService) ListCars(ctx context.Context, viewerID primitive.ObjectID) ([]*models.Car, error) {
	return s.carRepo.ListApproved(ctx, viewerID)
}

func (s *carService) SearchCars(ctx context.Context, query string) ([]*models.Car, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Car{}, nil
	}
	if runes := []rune(query); len(runes) > utils.MaxSearchQuery {
		query = string(runes[:utils.MaxSearchQuery])
	}
	return s.carRepo.Search(ctx, query, utils.MaxSearchResults)
}

func (s *carService) GetOwnerCars(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	return s.carRepo.GetByOwner(ctx, ownerID)
}

func (s *carService) CreateListing(ctx context.Context, ownerID primitive.ObjectID, request *validators.CarCreateRequest) (*models.Car, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	car := request.ToCar()

	if _, err := s.carRepo.GetByNumberPlate(ctx, car.NumberPlate); err == nil {
		return nil, utils.NewConflictError("a car with number plate %s already exists", car.NumberPlate)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	location, err := s.geocoding.Resolve(ctx, car.PickupAddress)
	if err != nil {
		return nil, err
	}

	car.OwnerID = ownerID
	car.Location = location
	car.Status = models.CarStatusPending
	car.AIVerification = models.AIVerification{
		Processing: true,
		Issues:     []string{},
	}

	// The unique index still guards the plate if two listings race past the
	// lookup above.
	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, err
	}

	if err := s.userRepo.AppendListedCar(ctx, ownerID, car.ID); err != nil {
		if delErr := s.carRepo.Delete(ctx, car.ID); delErr != nil {
			s.logger.WithContext(ctx).WithError(delErr).WithCarID(car.ID).WithUserID(ownerID).Error("Failed to roll back car listing")
		}
		return nil, err
	}

	s.logger.WithContext(ctx).LogCarEvent(car.ID, utils.EventCarListed, map[string]interface{}{
		"owner_id":     ownerID.Hex(),
		"number_plate": car.NumberPlate,
	})

	if s.queue != nil && !s.queue.Enqueue(car) {
		s.logger.WithCarID(car.ID).Warn("Verification queue unavailable; car left pending for retry")
	}

	return car, nil
}

func (s *carService) UpdateListing(ctx context.Context, ownerID, carID primitive.ObjectID, request *validators.CarUpdateRequest) (*models.Car, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	car, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}

	if request.Apply(car) {
		location, err := s.geocoding.Resolve(ctx, car.PickupAddress)
		if err != nil {
			return nil, err
		}
		car.Location = location
	}

	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}

	return car, nil
}

func (s *carService) DeleteListing(ctx context.Context, ownerID, carID primitive.ObjectID) error {
	if _, err := s.ownedCar(ctx, ownerID, carID); err != nil {
		return err
	}
	return s.carRepo.Delete(ctx, carID)
}

func (s *carService) ownedCar(ctx context.Context, ownerID, carID primitive.ObjectID) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != ownerID {
		return nil, utils.NewForbiddenError("only the car's owner can change this listing")
	}
	return car, nil
}
