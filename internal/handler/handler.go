package handler

import (
	"net/http"

	"shop_backend/internal/middleware"
	"shop_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// errorJSON writes the failure envelope shared by every endpoint
func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "errors": message})
}

// authUser returns the user resolved by the auth middleware, writing a 401 when absent
func authUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.AuthUser(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Please authenticate using a valid token")
		return nil, false
	}
	return user, true
}
