package services

import (
	"context"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBookingParams struct {
	CarID           primitive.ObjectID
	RenterID        primitive.ObjectID
	Interval        models.DateRange
	PickupLocation  string
	DropoffLocation string
}

// BookingLedger owns booking records: pricing at creation, overlap queries
// and the status state machine.
type BookingLedger interface {
	Create(ctx context.Context, params CreateBookingParams) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error)
	Delete(ctx context.Context, bookingID primitive.ObjectID) error

	// FindOverlapping returns Requested or Confirmed bookings on carIDs that
	// intersect interval.
	FindOverlapping(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange) ([]*models.Booking, error)
	FindOverlappingWithStatus(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus) ([]*models.Booking, error)

	SetStatus(ctx context.Context, bookingID primitive.ObjectID, status models.BookingStatus) (*models.Booking, error)

	FindByRenter(ctx context.Context, renterID primitive.ObjectID) ([]*models.Booking, error)
	FindByOwnerCars(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error)

	// AttachCars loads the car of each booking in one query.
	AttachCars(ctx context.Context, bookings []*models.Booking) ([]*models.BookingDetails, error)
}

type bookingLedger struct {
	bookingRepo interfaces.BookingRepository
	carRepo     interfaces.CarRepository
	depositRate float64
}

func NewBookingLedger(bookingRepo interfaces.BookingRepository, carRepo interfaces.CarRepository, depositRate float64) BookingLedger {
	if depositRate <= 0 {
		depositRate = utils.DefaultDepositRate
	}
	return &bookingLedger{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		depositRate: depositRate,
	}
}

func (l *bookingLedger) Create(ctx context.Context, params CreateBookingParams) (*models.Booking, error) {
	if !params.Interval.IsValid() {
		return nil, utils.NewValidationError("Dropoff date must be after pickup date")
	}

	car, err := l.carRepo.GetByID(ctx, params.CarID)
	if err != nil {
		return nil, err
	}

	dropoff := params.DropoffLocation
	if dropoff == "" {
		dropoff = params.PickupLocation
	}

	quote := models.NewQuote(car.PricePerDay, params.Interval, l.depositRate)
	booking := &models.Booking{
		CarID:           car.ID,
		UserID:          params.RenterID,
		PickupDate:      params.Interval.Start,
		DropoffDate:     params.Interval.End,
		PickupLocation:  params.PickupLocation,
		DropoffLocation: dropoff,
		PricePerDay:     quote.PricePerDay,
		TotalDays:       quote.TotalDays,
		BasePrice:       quote.BasePrice,
		FinalPrice:      quote.FinalPrice,
		DepositAmount:   quote.DepositAmount,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.BookingStatusRequested,
	}

	if err := l.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

func (l *bookingLedger) GetByID(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	return l.bookingRepo.GetByID(ctx, bookingID)
}

func (l *bookingLedger) Delete(ctx context.Context, bookingID primitive.ObjectID) error {
	return l.bookingRepo.Delete(ctx, bookingID)
}

func (l *bookingLedger) FindOverlapping(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange) ([]*models.Booking, error) {
	return l.FindOverlappingWithStatus(ctx, carIDs, interval, models.CalendarBlockingStatuses)
}

func (l *bookingLedger) FindOverlappingWithStatus(ctx context.Context, carIDs []primitive.ObjectID, interval models.DateRange, statuses []models.BookingStatus) ([]*models.Booking, error) {
	if !interval.IsValid() {
		return nil, utils.NewValidationError("Dropoff date must be after pickup date")
	}
	if len(carIDs) == 0 {
		return []*models.Booking{}, nil
	}
	return l.bookingRepo.FindOverlapping(ctx, carIDs, interval, statuses)
}

func (l *bookingLedger) SetStatus(ctx context.Context, bookingID primitive.ObjectID, status models.BookingStatus) (*models.Booking, error) {
	if !status.IsValid() {
		return nil, utils.NewValidationError("unknown booking status %q", status)
	}

	booking, err := l.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(status) {
		return nil, utils.NewInvalidStateTransitionError("booking", booking.Status, status)
	}

	// Compare-and-set on the status read above, so a concurrent transition
	// fails instead of being overwritten.
	return l.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, status)
}

func (l *bookingLedger) FindByRenter(ctx context.Context, renterID primitive.ObjectID) ([]*models.Booking, error) {
	return l.bookingRepo.GetByUser(ctx, renterID)
}

func (l *bookingLedger) FindByOwnerCars(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Booking, error) {
	cars, err := l.carRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	carIDs := make([]primitive.ObjectID, 0, len(cars))
	for _, car := range cars {
		carIDs = append(carIDs, car.ID)
	}

	return l.bookingRepo.GetByCars(ctx, carIDs)
}

func (l *bookingLedger) AttachCars(ctx context.Context, bookings []*models.Booking) ([]*models.BookingDetails, error) {
	carIDs := make([]primitive.ObjectID, 0, len(bookings))
	for _, booking := range bookings {
		carIDs = append(carIDs, booking.CarID)
	}

	cars, err := l.carRepo.GetByIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Car, len(cars))
	for _, car := range cars {
		byID[car.ID] = car
	}

	details := make([]*models.BookingDetails, 0, len(bookings))
	for _, booking := range bookings {
		details = append(details, &models.BookingDetails{Booking: booking, Car: byID[booking.CarID]})
	}
	return details, nil
}
