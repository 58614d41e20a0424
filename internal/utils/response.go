package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Code    ErrorKind `json:"code,omitempty"`
}

// SuccessResponse writes {success: true, message, ...payload}.
func SuccessResponse(c *gin.Context, statusCode int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func OKResponse(c *gin.Context, message string, payload gin.H) {
	SuccessResponse(c, http.StatusOK, message, payload)
}

func CreatedResponse(c *gin.Context, message string, payload gin.H) {
	SuccessResponse(c, http.StatusCreated, message, payload)
}

func ErrorResponse(c *gin.Context, statusCode int, code ErrorKind, message string) {
	c.JSON(statusCode, ErrorBody{
		Success: false,
		Message: message,
		Code:    code,
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, KindValidation, message)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, KindUnauthorized, message)
}

func InternalServerErrorResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, KindInternal, ErrInternalServer)
}

func StatusCodeFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidStateTransition:
		return http.StatusConflict
	case KindGeocoding:
		return http.StatusBadGateway
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HandleError converts err into a JSON failure. Internal errors are attached
// to the gin context for the request logger and reported to the client with
// a generic message.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		_ = c.Error(err)
		InternalServerErrorResponse(c)
		return
	}

	message := appErr.Message
	if message == "" {
		message = appErr.Error()
	}
	ErrorResponse(c, StatusCodeFor(appErr.Kind), appErr.Kind, message)
}
