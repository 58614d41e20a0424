package routes

import (
	"carrental/internal/config"
	handlers "carrental/internal/handlers/shared"
	"carrental/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCarRoutes sets up the car directory and listing routes
func SetupCarRoutes(r *gin.RouterGroup, carHandler *handlers.CarHandler, verificationHandler *handlers.VerificationHandler, security *config.SecurityConfig) {
	cars := r.Group("/cars")
	{
		// Public directory
		cars.POST("/available", carHandler.GetAvailableCars)
		cars.GET("", middleware.OptionalAuth(security), carHandler.ListCars)
		cars.GET("/search", carHandler.SearchCars)
		cars.GET("/:id", carHandler.GetCar)

		// Verification pipeline webhook, authenticated by shared secret
		cars.POST("/:id/verification", verificationHandler.HandleVerdict)
	}

	owner := cars.Group("")
	owner.Use(middleware.AuthRequired(security))
	{
		owner.GET("/mine", carHandler.GetMyCars)
		owner.POST("/create", carHandler.CreateCar)
		owner.PUT("/:id", carHandler.UpdateCar)
		owner.DELETE("/:id", carHandler.DeleteCar)
	}
}
