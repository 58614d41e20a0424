package handlers

import (
	"carrental/internal/middleware"
	"carrental/internal/services"
	"carrental/internal/utils"
	"carrental/internal/validators"

	"github.com/gin-gonic/gin"
)

type CarHandler struct {
	carService          services.CarService
	availabilityService services.AvailabilityService
}

func NewCarHandler(carService services.CarService, availabilityService services.AvailabilityService) *CarHandler {
	return &CarHandler{
		carService:          carService,
		availabilityService: availabilityService,
	}
}

// GetAvailableCars lists approved cars near the pickup location that are free
// for the requested dates.
func (h *CarHandler) GetAvailableCars(c *gin.Context) {
	var request validators.AvailabilityRequest
	if !bindJSON(c, &request) {
		return
	}

	interval, err := request.Interval()
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	cars, err := h.availabilityService.ResolveAvailability(c.Request.Context(), request.PickupLocation, interval)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{
		"cars":       cars,
		"totalFound": len(cars),
	})
}

// ListCars lists approved cars. A signed-in caller does not see their own.
func (h *CarHandler) ListCars(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	cars, err := h.carService.ListCars(c.Request.Context(), viewerID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"cars": cars})
}

func (h *CarHandler) SearchCars(c *gin.Context) {
	cars, err := h.carService.SearchCars(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"cars": cars})
}

func (h *CarHandler) GetMyCars(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	cars, err := h.carService.GetOwnerCars(c.Request.Context(), ownerID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"cars": cars})
}

func (h *CarHandler) GetCar(c *gin.Context) {
	carID, ok := pathID(c, "id")
	if !ok {
		return
	}

	car, err := h.carService.GetCar(c.Request.Context(), carID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "", gin.H{"car": car})
}

func (h *CarHandler) CreateCar(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.CarCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, utils.ErrMissingFields)
		return
	}

	car, err := h.carService.CreateListing(c.Request.Context(), ownerID, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Car listed successfully. Verification in progress.", gin.H{"car": car})
}

func (h *CarHandler) UpdateCar(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}
	carID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.CarUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	car, err := h.carService.UpdateListing(c.Request.Context(), ownerID, carID, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "Car updated successfully", gin.H{"car": car})
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}
	carID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.carService.DeleteListing(c.Request.Context(), ownerID, carID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "Car deleted successfully", gin.H{"carId": carID.Hex()})
}

