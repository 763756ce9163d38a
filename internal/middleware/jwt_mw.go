package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"shop_backend/internal/model"
	"shop_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// AuthTokenHeader carries the bearer token issued at signup/login
	AuthTokenHeader = "auth-token"
	AuthUserKey     = "authUser"
)

// UserFinder loads the user a token is bound to
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// JWTAuthMiddleware resolves the request's token into a stored user and aborts with 401
// when the token is missing, invalid, or bound to a user that no longer exists.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "errors": "Please authenticate using a valid token"})
			return
		}

		userID, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "errors": "Please authenticate using a valid token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			log.Printf("Error loading authenticated user %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "errors": "Failed to authenticate"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "errors": "Please authenticate using a valid token"})
			return
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}

// AuthUser returns the user attached by JWTAuthMiddleware
func AuthUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok && user != nil
}

// tokenFromRequest reads auth-token, falling back to an Authorization bearer header
func tokenFromRequest(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(AuthTokenHeader)); token != "" {
		return token
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
