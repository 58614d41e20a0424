package middleware

import (
	"errors"
	"strings"

	"carrental/internal/config"
	"carrental/internal/utils"
	"carrental/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JWTClaims are the claims of the session token issued by the auth service.
type JWTClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

var errNoToken = errors.New("no token")

// AuthRequired validates the session token from the auth cookie or a Bearer
// header and sets the caller's ObjectID under utils.ContextUserID.
func AuthRequired(cfg *config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, cfg)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, errNoToken) {
				message = "Not authorized, no token"
			}
			utils.UnauthorizedResponse(c, message)
			c.Abort()
			return
		}

		setUser(c, userID)
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and lets the
// request through either way.
func OptionalAuth(cfg *config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := authenticate(c, cfg); err == nil {
			setUser(c, userID)
		}
		c.Next()
	}
}

func setUser(c *gin.Context, userID primitive.ObjectID) {
	c.Set(utils.ContextUserID, userID)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), userID))
}

// GetUserID returns the authenticated caller, if any.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(utils.ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}

func authenticate(c *gin.Context, cfg *config.SecurityConfig) (primitive.ObjectID, error) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		if cookie, err := c.Cookie(cfg.AuthCookieName); err == nil {
			tokenString = cookie
		}
	}
	if tokenString == "" {
		return primitive.NilObjectID, errNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid token claims")
	}

	return primitive.ObjectIDFromHex(claims.ID)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return ""
}
