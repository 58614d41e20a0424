package routes

import (
	"carrental/internal/config"
	handlers "carrental/internal/handlers/shared"
	"carrental/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes sets up the booking lifecycle routes. All of them need
// an authenticated caller.
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, security *config.SecurityConfig) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(security))
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("/:id", bookingHandler.GetBooking)

		// Histories
		bookings.GET("/user/:userId", bookingHandler.GetUserBookings)
		bookings.GET("/owner/:ownerId", bookingHandler.GetOwnerBookings)

		// Status transitions
		bookings.PATCH("/:id/approve", bookingHandler.ApproveBooking)
		bookings.PATCH("/:id/reject", bookingHandler.RejectBooking)
		bookings.PATCH("/:id/complete", bookingHandler.CompleteBooking)
		bookings.PATCH("/:id/cancel", bookingHandler.CancelBooking)
	}
}
