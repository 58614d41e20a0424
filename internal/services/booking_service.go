package services

import (
	"context"

	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"
	"carrental/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmitBookingInput struct {
	CarID           primitive.ObjectID
	Interval        models.DateRange
	PickupLocation  string
	DropoffLocation string
}

// BookingService runs the booking lifecycle on top of the ledger.
type BookingService interface {
	SubmitBooking(ctx context.Context, renterID primitive.ObjectID, input SubmitBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, viewerID, bookingID primitive.ObjectID) (*models.Booking, error)

	Approve(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error)
	Reject(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error)
	Complete(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error)
	Cancel(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error)

	GetRenterBookings(ctx context.Context, actorID, renterID primitive.ObjectID) ([]*models.BookingDetails, error)
	GetOwnerBookings(ctx context.Context, actorID, ownerID primitive.ObjectID) ([]*models.BookingDetails, error)

	// Describe embeds the booked car for display.
	Describe(ctx context.Context, booking *models.Booking) (*models.BookingDetails, error)
}

type bookingService struct {
	ledger   BookingLedger
	carRepo  interfaces.CarRepository
	userRepo interfaces.UserRepository
	locks    LockService
	config   *config.BookingConfig
	logger   *logger.Logger
}

func NewBookingService(
	ledger BookingLedger,
	carRepo interfaces.CarRepository,
	userRepo interfaces.UserRepository,
	locks LockService,
	config *config.BookingConfig,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		ledger:   ledger,
		carRepo:  carRepo,
		userRepo: userRepo,
		locks:    locks,
		config:   config,
		logger:   logger,
	}
}

func (s *bookingService) SubmitBooking(ctx context.Context, renterID primitive.ObjectID, input SubmitBookingInput) (*models.Booking, error) {
	if !input.Interval.IsValid() {
		return nil, utils.NewValidationError("Dropoff date must be after pickup date")
	}
	if input.PickupLocation == "" {
		return nil, utils.NewValidationError("pickup location is required")
	}

	car, err := s.carRepo.GetByID(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if !car.IsApproved() {
		return nil, utils.NewValidationError("car is not available for booking")
	}
	if car.OwnerID == renterID {
		return nil, utils.NewValidationError("you cannot book your own car")
	}

	if s.config.EnforceOverlapOnWrite {
		lock, err := s.locks.Lock(ctx, bookingLockKey(car.ID), s.config.LockTTL)
		if err != nil {
			return nil, err
		}
		defer s.unlock(lock)

		if err := s.ensureFree(ctx, car.ID, input.Interval, models.CalendarBlockingStatuses, primitive.NilObjectID); err != nil {
			return nil, err
		}
	}

	booking, err := s.ledger.Create(ctx, CreateBookingParams{
		CarID:           car.ID,
		RenterID:        renterID,
		Interval:        input.Interval,
		PickupLocation:  input.PickupLocation,
		DropoffLocation: input.DropoffLocation,
	})
	if err != nil {
		return nil, err
	}

	// A booking without its history entry is a partial write; undo it.
	if err := s.userRepo.AppendBooking(ctx, renterID, booking.ID); err != nil {
		if delErr := s.ledger.Delete(ctx, booking.ID); delErr != nil {
			s.logger.WithContext(ctx).WithError(delErr).WithBookingID(booking.ID).WithUserID(renterID).Error("Failed to roll back booking")
		}
		return nil, err
	}

	s.logger.WithContext(ctx).WithUserID(renterID).LogBookingEvent(booking.ID, utils.EventBookingRequested, map[string]interface{}{
		"car_id":      car.ID.Hex(),
		"total_days":  booking.TotalDays,
		"final_price": booking.FinalPrice,
	})

	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, viewerID, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID == viewerID {
		return booking, nil
	}

	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != viewerID {
		return nil, utils.NewForbiddenError("you are not a party to this booking")
	}
	return booking, nil
}

// Approve confirms a request. With write-time enforcement on, it fails when
// another confirmed booking already holds any part of the interval.
func (s *bookingService) Approve(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, car, err := s.loadForOwner(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}

	if s.config.EnforceOverlapOnWrite {
		lock, err := s.locks.Lock(ctx, bookingLockKey(car.ID), s.config.LockTTL)
		if err != nil {
			return nil, err
		}
		defer s.unlock(lock)

		confirmed := []models.BookingStatus{models.BookingStatusConfirmed}
		if err := s.ensureFree(ctx, car.ID, booking.Interval(), confirmed, booking.ID); err != nil {
			return nil, err
		}
	}

	return s.transition(ctx, bookingID, models.BookingStatusConfirmed, utils.EventBookingApproved)
}

func (s *bookingService) Reject(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error) {
	if _, _, err := s.loadForOwner(ctx, actorID, bookingID); err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, models.BookingStatusRejected, utils.EventBookingRejected)
}

func (s *bookingService) Complete(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error) {
	if _, _, err := s.loadForOwner(ctx, actorID, bookingID); err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, models.BookingStatusCompleted, utils.EventBookingCompleted)
}

// Cancel is open to both the owner and the renter.
func (s *bookingService) Cancel(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actorID {
		if _, _, err := s.loadForOwner(ctx, actorID, bookingID); err != nil {
			return nil, err
		}
	}
	return s.transition(ctx, bookingID, models.BookingStatusCancelled, utils.EventBookingCancelled)
}

func (s *bookingService) GetRenterBookings(ctx context.Context, actorID, renterID primitive.ObjectID) ([]*models.BookingDetails, error) {
	if actorID != renterID {
		return nil, utils.NewForbiddenError("you can only view your own bookings")
	}

	bookings, err := s.ledger.FindByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	return s.ledger.AttachCars(ctx, bookings)
}

func (s *bookingService) GetOwnerBookings(ctx context.Context, actorID, ownerID primitive.ObjectID) ([]*models.BookingDetails, error) {
	if actorID != ownerID {
		return nil, utils.NewForbiddenError("you can only view requests for your own cars")
	}

	bookings, err := s.ledger.FindByOwnerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.ledger.AttachCars(ctx, bookings)
}

func (s *bookingService) Describe(ctx context.Context, booking *models.Booking) (*models.BookingDetails, error) {
	details, err := s.ledger.AttachCars(ctx, []*models.Booking{booking})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *bookingService) transition(ctx context.Context, bookingID primitive.ObjectID, status models.BookingStatus, event string) (*models.Booking, error) {
	booking, err := s.ledger.SetStatus(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).LogBookingEvent(booking.ID, event, map[string]interface{}{
		"status":         string(booking.Status),
		"booking_status": booking.Status.LegacyValue(),
	})

	return booking, nil
}

func (s *bookingService) loadForOwner(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, *models.Car, error) {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	car, err := s.carRepo.GetByID(ctx, booking.CarID)
	if err != nil {
		return nil, nil, err
	}
	if car.OwnerID != actorID {
		return nil, nil, utils.NewForbiddenError("only the car's owner can manage this booking")
	}

	return booking, car, nil
}

// ensureFree fails with a conflict when any booking other than except holds
// part of interval on carID in one of statuses.
func (s *bookingService) ensureFree(ctx context.Context, carID primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus, except primitive.ObjectID) error {
	overlapping, err := s.ledger.FindOverlappingWithStatus(ctx, []primitive.ObjectID{carID}, interval, statuses)
	if err != nil {
		return err
	}
	for _, other := range overlapping {
		if other.ID != except {
			return utils.NewConflictError(utils.ErrCarUnavailable)
		}
	}
	return nil
}

func (s *bookingService) unlock(lock *DistributedLock) {
	// The request context may already be cancelled; the lock must still go.
	if err := s.locks.Unlock(context.Background(), lock); err != nil {
		s.logger.WithError(err).WithField("lock", lock.Key).Warn("Failed to release booking lock")
	}
}

func bookingLockKey(carID primitive.ObjectID) string {
	return utils.BookingLockPrefix + carID.Hex()
}
