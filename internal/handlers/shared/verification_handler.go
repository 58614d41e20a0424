package handlers

import (
	"crypto/subtle"

	"carrental/internal/services"
	"carrental/internal/utils"
	"carrental/internal/validators"

	"github.com/gin-gonic/gin"
)

const verificationSecretHeader = "X-Verification-Secret"

// VerificationHandler receives verdicts pushed by the external listing
// verification pipeline.
type VerificationHandler struct {
	verificationService services.VerificationService
	secret              string
}

func NewVerificationHandler(verificationService services.VerificationService, secret string) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		secret:              secret,
	}
}

func (h *VerificationHandler) HandleVerdict(c *gin.Context) {
	// An empty configured secret disables the webhook.
	given := c.GetHeader(verificationSecretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
		utils.UnauthorizedResponse(c, "invalid verification secret")
		return
	}

	carID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.VerificationCallbackRequest
	if !bindJSON(c, &request) {
		return
	}

	car, err := h.verificationService.HandleVerdict(c.Request.Context(), carID, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.OKResponse(c, "Verification recorded", gin.H{
		"carId":  car.ID.Hex(),
		"status": car.Status,
	})
}
