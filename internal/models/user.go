package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the subset of the account record this service reads and updates.
// Registration and credentials belong to the auth service.
type User struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	FullName    string               `json:"fullName" bson:"full_name"`
	Email       string               `json:"email" bson:"email"`
	PhoneNumber string               `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
	City        string               `json:"city,omitempty" bson:"city,omitempty"`
	IsOwner     bool                 `json:"isOwner" bson:"is_owner"`
	// BookedCars holds booking ids, not car ids; the name is kept for clients.
	BookedCars  []primitive.ObjectID `json:"bookedCars" bson:"booked_cars"`
	ListedCars  []primitive.ObjectID `json:"listedCars" bson:"listed_cars"`
	CreatedAt   time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updated_at"`
}
