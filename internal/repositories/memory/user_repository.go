package memory

import (
	"context"
	"sync"
	"time"

	"carrental/internal/models"
	"carrental/internal/repositories/interfaces"
	"carrental/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository keeps the rental history of users whose accounts live in the
// external auth service. A user unknown to the store is created on first write.
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

var _ interfaces.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	return cloneUser(user), nil
}

func (r *UserRepository) AppendBooking(ctx context.Context, userID, bookingID primitive.ObjectID) error {
	return r.update(userID, func(user *models.User) {
		user.BookedCars = append(user.BookedCars, bookingID)
	})
}

func (r *UserRepository) AppendListedCar(ctx context.Context, userID, carID primitive.ObjectID) error {
	return r.update(userID, func(user *models.User) {
		user.ListedCars = append(user.ListedCars, carID)
		user.IsOwner = true
	})
}

func (r *UserRepository) update(id primitive.ObjectID, apply func(*models.User)) error {
	if id.IsZero() {
		return utils.NewValidationError("user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	user, ok := r.users[id]
	if !ok {
		user = &models.User{
			ID:         id,
			BookedCars: []primitive.ObjectID{},
			ListedCars: []primitive.ObjectID{},
			CreatedAt:  now,
		}
		r.users[id] = user
	}
	apply(user)
	user.UpdatedAt = now
	return nil
}
