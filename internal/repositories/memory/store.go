// Package memory holds in-process repository implementations. They back the
// memory database driver for local development and the service tests.
package memory

import (
	"carrental/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Records are copied on the way in and out so callers never share state with
// the store.

func cloneCar(car *models.Car) *models.Car {
	c := *car
	c.Location.Coordinates = append([]float64(nil), car.Location.Coordinates...)
	c.AIVerification.Issues = append([]string(nil), car.AIVerification.Issues...)
	if car.AIVerification.EstimatedMileage != nil {
		v := *car.AIVerification.EstimatedMileage
		c.AIVerification.EstimatedMileage = &v
	}
	if car.AIVerification.RequestedAt != nil {
		v := *car.AIVerification.RequestedAt
		c.AIVerification.RequestedAt = &v
	}
	if car.AIVerification.CompletedAt != nil {
		v := *car.AIVerification.CompletedAt
		c.AIVerification.CompletedAt = &v
	}
	return &c
}

func cloneBooking(booking *models.Booking) *models.Booking {
	b := *booking
	return &b
}

func cloneUser(user *models.User) *models.User {
	u := *user
	u.BookedCars = append([]primitive.ObjectID{}, user.BookedCars...)
	u.ListedCars = append([]primitive.ObjectID{}, user.ListedCars...)
	return &u
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
