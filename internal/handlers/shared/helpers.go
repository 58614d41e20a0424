package handlers

import (
	"carrental/internal/middleware"
	"carrental/internal/utils"
	"carrental/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUser returns the authenticated caller or writes a 401.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, utils.ErrUnauthorized)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathID parses the named path parameter or writes a 400.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := validators.ParseObjectID(c.Param(name), name)
	if err != nil {
		utils.HandleError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindJSON decodes and validates the body or writes a 400.
func bindJSON(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return false
	}
	if err := validators.Validate(request); err != nil {
		utils.HandleError(c, err)
		return false
	}
	return true
}
