package routes

import (
	"carrental/internal/config"
	handlers "carrental/internal/handlers/shared"
	"carrental/internal/middleware"
	"carrental/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Car          *handlers.CarHandler
	Booking      *handlers.BookingHandler
	Verification *handlers.VerificationHandler
	Health       *handlers.HealthHandler
}

// NewRouter builds the engine with global middleware and every route group
// mounted under /api.
func NewRouter(cfg *config.Config, h *Handlers, log *logger.Logger) (*gin.Engine, error) {
	router := gin.New()

	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return nil, err
	}

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	api := router.Group("/api")
	{
		SetupCarRoutes(api, h.Car, h.Verification, cfg.Security)
		SetupBookingRoutes(api, h.Booking, cfg.Security)
	}

	router.GET("/health", h.Health.Health)

	return router, nil
}
