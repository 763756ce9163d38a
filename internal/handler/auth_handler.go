package handler

import (
	"errors"
	"log"
	"net/http"

	"shop_backend/internal/model"
	"shop_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	_, token, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			errorJSON(c, http.StatusBadRequest, "existing user found with same email address")
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Error during signup: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	_, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errorJSON(c, http.StatusBadRequest, "Invalid credentials")
			return
		}
		log.Printf("Error during login: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg gin.IRoutes) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
}
