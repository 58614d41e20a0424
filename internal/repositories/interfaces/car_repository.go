package interfaces

import (
	"context"
	"time"

	"carrental/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarRepository is the car directory.
type CarRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error)
	// GetByIDs skips ids with no car.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Car, error)
	GetByNumberPlate(ctx context.Context, plate string) (*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Listing queries; only approved cars are returned
	FindApprovedNear(ctx context.Context, point models.GeoPoint, radiusMeters float64) ([]*models.Car, error)
	ListApproved(ctx context.Context, excludeOwner primitive.ObjectID) ([]*models.Car, error)
	Search(ctx context.Context, text string, limit int) ([]*models.Car, error)

	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error)

	// Verification
	SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status models.CarStatus, verification models.AIVerification) (*models.Car, error)
	RecordVerificationAttempt(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Car, error)
	FindPendingVerification(ctx context.Context, requestedBefore time.Time, limit int) ([]*models.Car, error)
}
