package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"
	"carrental/internal/validators"
	"carrental/pkg/logger"
	"carrental/pkg/ml"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const retryBatchSize = 100

// VerificationService drives listing verification: a worker pool calls the
// external verifier for queued cars, the webhook applies pushed verdicts and
// RetryStuck picks up cars that never got one.
type VerificationService interface {
	VerificationQueue

	Start(ctx context.Context)
	Stop()

	HandleVerdict(ctx context.Context, carID primitive.ObjectID, verdict *validators.VerificationCallbackRequest) (*models.Car, error)
	RetryStuck(ctx context.Context) (int, error)
}

type verificationService struct {
	verifier ml.ListingVerifier
	carRepo  interfaces.CarRepository
	config   *config.VerificationConfig
	logger   *logger.Logger

	queue chan primitive.ObjectID

	mu       sync.Mutex
	inFlight map[primitive.ObjectID]struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewVerificationService builds the service. verifier may be nil, in which
// case cars stay pending until a verdict arrives through HandleVerdict.
func NewVerificationService(
	verifier ml.ListingVerifier,
	carRepo interfaces.CarRepository,
	cfg *config.VerificationConfig,
	logger *logger.Logger,
) VerificationService {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	return &verificationService{
		verifier: verifier,
		carRepo:  carRepo,
		config:   cfg,
		logger:   logger,
		queue:    make(chan primitive.ObjectID, queueSize),
		inFlight: make(map[primitive.ObjectID]struct{}),
		now:      time.Now,
	}
}

func (s *verificationService) Start(ctx context.Context) {
	if s.verifier == nil || !s.config.Enabled {
		s.logger.Warn("Listing verifier not configured; cars stay pending until a verdict is posted")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	workers := s.config.Workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	s.logger.WithField("workers", workers).Info("Verification workers started")
}

func (s *verificationService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Enqueue never blocks. It reports false when there is no verifier, the car is
// already queued, or the queue is full; RetryStuck picks such cars up later.
func (s *verificationService) Enqueue(car *models.Car) bool {
	if s.verifier == nil || !s.config.Enabled || car == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, queued := s.inFlight[car.ID]; queued {
		return false
	}

	select {
	case s.queue <- car.ID:
		s.inFlight[car.ID] = struct{}{}
		return true
	default:
		return false
	}
}

func (s *verificationService) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case carID := <-s.queue:
			s.process(ctx, carID)
			s.done(carID)
		}
	}
}

func (s *verificationService) done(carID primitive.ObjectID) {
	s.mu.Lock()
	delete(s.inFlight, carID)
	s.mu.Unlock()
}

func (s *verificationService) process(ctx context.Context, carID primitive.ObjectID) {
	log := s.logger.WithCarID(carID)

	car, err := s.carRepo.RecordVerificationAttempt(ctx, carID, s.now())
	if err != nil {
		// Deleted, or a verdict landed while the car sat in the queue.
		if errors.Is(err, utils.ErrInvalidStateTransition) || errors.Is(err, utils.ErrNotFound) {
			log.WithError(err).Debug("Skipping verification")
			return
		}
		log.WithError(err).Error("Failed to record verification attempt")
		return
	}

	verifyCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	verdict, err := s.verifier.Verify(verifyCtx, verificationRequest(car))
	if err != nil {
		log.WithError(err).WithField("attempt", car.AIVerification.Attempts).Warn("Listing verification failed")
		if car.AIVerification.Attempts >= s.maxAttempts() {
			s.rejectWithSystemError(ctx, car, err)
		}
		return
	}

	if _, err := s.apply(ctx, car.ID, car.AIVerification, verdict.Verified, verdict.Issues, verdict.EstimatedMileage); err != nil {
		log.WithError(err).Error("Failed to apply verification verdict")
	}
}

func (s *verificationService) HandleVerdict(ctx context.Context, carID primitive.ObjectID, verdict *validators.VerificationCallbackRequest) (*models.Car, error) {
	if err := validators.Validate(verdict); err != nil {
		return nil, err
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, car.ID, car.AIVerification, verdict.Verified, verdict.Issues, verdict.EstimatedMileage)
}

// RetryStuck requeues cars that have been pending longer than StaleAfter and
// rejects those that have used up their attempts. It returns how many cars
// were requeued.
func (s *verificationService) RetryStuck(ctx context.Context) (int, error) {
	if s.verifier == nil || !s.config.Enabled {
		return 0, nil
	}

	cars, err := s.carRepo.FindPendingVerification(ctx, s.now().Add(-s.config.StaleAfter), retryBatchSize)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, car := range cars {
		if car.AIVerification.Attempts >= s.maxAttempts() {
			s.rejectWithSystemError(ctx, car, errors.New("verification did not complete"))
			continue
		}
		if s.Enqueue(car) {
			requeued++
		}
	}

	if requeued > 0 {
		s.logger.WithField("count", requeued).Info("Requeued stuck verifications")
	}
	return requeued, nil
}

func (s *verificationService) apply(ctx context.Context, carID primitive.ObjectID, previous models.AIVerification, verified bool, issues []string, mileage *float64) (*models.Car, error) {
	completed := s.now()
	if issues == nil {
		issues = []string{}
	}

	status := models.CarStatusRejected
	if verified {
		status = models.CarStatusApproved
	}

	car, err := s.carRepo.SetApprovalStatus(ctx, carID, status, models.AIVerification{
		Processing:       false,
		Verified:         verified,
		Issues:           issues,
		EstimatedMileage: mileage,
		Attempts:         previous.Attempts,
		RequestedAt:      previous.RequestedAt,
		CompletedAt:      &completed,
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogCarEvent(car.ID, utils.EventCarVerified, map[string]interface{}{
		"status":   string(status),
		"issues":   len(issues),
		"attempts": previous.Attempts,
	})

	return car, nil
}

func (s *verificationService) rejectWithSystemError(ctx context.Context, car *models.Car, cause error) {
	issue := fmt.Sprintf("System Error: %s", cause.Error())
	if _, err := s.apply(ctx, car.ID, car.AIVerification, false, []string{issue}, nil); err != nil {
		s.logger.WithError(err).WithCarID(car.ID).Error("Failed to reject car after verification attempts")
	}
}

func (s *verificationService) maxAttempts() int {
	if s.config.MaxAttempts <= 0 {
		return 1
	}
	return s.config.MaxAttempts
}

func verificationRequest(car *models.Car) *ml.VerificationRequest {
	images := map[string]string{}
	add := func(name, url string) {
		if url != "" {
			images[name] = url
		}
	}
	add("frontView", car.Images.FrontView)
	add("sideView", car.Images.SideView)
	add("rearView", car.Images.RearView)
	add("interiorDashboard", car.Images.InteriorDashboard)
	add("seats", car.Images.Seats)
	add("odometer", car.Images.Odometer)

	return &ml.VerificationRequest{
		CarID:       car.ID.Hex(),
		Brand:       car.Brand,
		Model:       car.Model,
		Year:        car.Year,
		NumberPlate: car.NumberPlate,
		Images:      images,
	}
}
