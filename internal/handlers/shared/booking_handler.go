package handlers

import (
	"context"

	"carrental/internal/models"
	"carrental/internal/services"
	"carrental/internal/utils"
	"carrental/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	renterID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.BookingCreateRequest
	if !bindJSON(c, &request) {
		return
	}

	carID, err := validators.ParseObjectID(request.CarID, "carId")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	interval, err := request.Interval()
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	booking, err := h.bookingService.SubmitBooking(c.Request.Context(), renterID, services.SubmitBookingInput{
		CarID:           carID,
		Interval:        interval,
		PickupLocation:  validators.SanitizeInput(request.PickupLocation),
		DropoffLocation: request.DropoffOrPickup(),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking request sent to the owner", gin.H{"booking": booking})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	viewerID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), viewerID, bookingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	details, err := h.bookingService.Describe(c.Request.Context(), booking)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"booking": details})
}

// GetUserBookings lists the caller's own bookings as a renter.
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetRenterBookings(c.Request.Context(), actorID, userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"bookings": bookings})
}

// GetOwnerBookings lists requests made against the caller's cars.
func (h *BookingHandler) GetOwnerBookings(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	ownerID, ok := pathID(c, "ownerId")
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetOwnerBookings(c.Request.Context(), actorID, ownerID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"bookings": bookings})
}

func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	h.transition(c, "Booking approved", h.bookingService.Approve)
}

func (h *BookingHandler) RejectBooking(c *gin.Context) {
	h.transition(c, "Booking rejected", h.bookingService.Reject)
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, "Booking completed", h.bookingService.Complete)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.transition(c, "Booking cancelled", h.bookingService.Cancel)
}

type transitionFunc func(ctx context.Context, actorID, bookingID primitive.ObjectID) (*models.Booking, error)

func (h *BookingHandler) transition(c *gin.Context, message string, apply transitionFunc) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := apply(c.Request.Context(), actorID, bookingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	details, err := h.bookingService.Describe(c.Request.Context(), booking)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, message, gin.H{"booking": details})
}
