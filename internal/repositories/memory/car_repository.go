package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarRepository struct {
	mu   sync.RWMutex
	cars map[primitive.ObjectID]*models.Car
}

func NewCarRepository() *CarRepository {
	return &CarRepository{cars: make(map[primitive.ObjectID]*models.Car)}
}

var _ interfaces.CarRepository = (*CarRepository)(nil)

func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plateTakenLocked(car.NumberPlate, primitive.NilObjectID) {
		return utils.NewConflictError("a car with number plate %s already exists", car.NumberPlate)
	}

	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	car.UpdatedAt = car.CreatedAt
	r.cars[car.ID] = cloneCar(car)

	return nil
}

func (r *CarRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	car, ok := r.cars[id]
	if !ok {
		return nil, utils.NewNotFoundError("car")
	}
	return cloneCar(car), nil
}

func (r *CarRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cars := make([]*models.Car, 0, len(ids))
	for id := range idSet(ids) {
		if car, ok := r.cars[id]; ok {
			cars = append(cars, cloneCar(car))
		}
	}
	return cars, nil
}

func (r *CarRepository) GetByNumberPlate(ctx context.Context, plate string) (*models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, car := range r.cars {
		if car.NumberPlate == plate {
			return cloneCar(car), nil
		}
	}
	return nil, utils.NewNotFoundError("car")
}

func (r *CarRepository) Update(ctx context.Context, car *models.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cars[car.ID]; !ok {
		return utils.NewNotFoundError("car")
	}
	if r.plateTakenLocked(car.NumberPlate, car.ID) {
		return utils.NewConflictError("a car with number plate %s already exists", car.NumberPlate)
	}

	car.UpdatedAt = time.Now()
	r.cars[car.ID] = cloneCar(car)
	return nil
}

func (r *CarRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cars[id]; !ok {
		return utils.NewNotFoundError("car")
	}
	delete(r.cars, id)
	return nil
}

// FindApprovedNear returns matches nearest first, like $near.
func (r *CarRepository) FindApprovedNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type hit struct {
		car      *models.Car
		distance float64
	}
	var hits []hit
	for _, car := range r.cars {
		if !car.IsApproved() || !car.Location.IsValid() {
			continue
		}
		distance := utils.CalculateDistanceMeters(point.Latitude(), point.Longitude(), car.Location.Latitude(), car.Location.Longitude())
		if distance <= radiusMeters {
			hits = append(hits, hit{car: car, distance: distance})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	cars := make([]*models.Car, 0, len(hits))
	for _, h := range hits {
		cars = append(cars, cloneCar(h.car))
	}
	return cars, nil
}

func (r *CarRepository) ListApproved(ctx context.Context, excludeOwner primitive.ObjectID) ([]*models.Car, error) {
	return r.filter(0, func(car *models.Car) bool {
		return car.IsApproved() && (excludeOwner.IsZero() || car.OwnerID != excludeOwner)
	}), nil
}

func (r *CarRepository) Search(ctx context.Context, text string, limit int) ([]*models.Car, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	return r.filter(limit, func(car *models.Car) bool {
		if !car.IsApproved() {
			return false
		}
		return strings.Contains(strings.ToLower(car.Brand), needle) ||
			strings.Contains(strings.ToLower(car.Model), needle) ||
			strings.Contains(strings.ToLower(car.VehicleType), needle)
	}), nil
}

func (r *CarRepository) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	return r.filter(0, func(car *models.Car) bool { return car.OwnerID == ownerID }), nil
}

func (r *CarRepository) SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status models.CarStatus, verification models.AIVerification) (*models.Car, error) {
	return r.updatePending(id, status, func(car *models.Car) {
		car.Status = status
		car.AIVerification = verification
	})
}

func (r *CarRepository) RecordVerificationAttempt(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Car, error) {
	return r.updatePending(id, models.CarStatusPending, func(car *models.Car) {
		car.AIVerification.Attempts++
		car.AIVerification.Processing = true
		car.AIVerification.RequestedAt = &at
	})
}

func (r *CarRepository) FindPendingVerification(ctx context.Context, requestedBefore time.Time, limit int) ([]*models.Car, error) {
	cars := r.filter(0, func(car *models.Car) bool {
		if car.Status != models.CarStatusPending {
			return false
		}
		requested := car.AIVerification.RequestedAt
		return requested == nil || requested.Before(requestedBefore)
	})

	sort.Slice(cars, func(i, j int) bool { return cars[i].CreatedAt.Before(cars[j].CreatedAt) })
	if limit > 0 && len(cars) > limit {
		cars = cars[:limit]
	}
	return cars, nil
}

func (r *CarRepository) updatePending(id primitive.ObjectID, target models.CarStatus, apply func(*models.Car)) (*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.cars[id]
	if !ok {
		return nil, utils.NewNotFoundError("car")
	}
	if stored.Status != models.CarStatusPending {
		return nil, utils.NewInvalidStateTransitionError("car", stored.Status, target)
	}

	updated := cloneCar(stored)
	apply(updated)
	updated.UpdatedAt = time.Now()
	r.cars[id] = updated

	return cloneCar(updated), nil
}

// filter returns matches newest first, capped at limit when limit > 0.
func (r *CarRepository) filter(limit int, keep func(*models.Car) bool) []*models.Car {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cars := make([]*models.Car, 0)
	for _, car := range r.cars {
		if keep(car) {
			cars = append(cars, cloneCar(car))
		}
	}
	sort.Slice(cars, func(i, j int) bool { return cars[i].CreatedAt.After(cars[j].CreatedAt) })

	if limit > 0 && len(cars) > limit {
		cars = cars[:limit]
	}
	return cars
}

func (r *CarRepository) plateTakenLocked(plate string, except primitive.ObjectID) bool {
	for id, car := range r.cars {
		if id != except && car.NumberPlate == plate {
			return true
		}
	}
	return false
}
