package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"shop_backend/internal/model"
	"shop_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CartHandler handles the signed-in user's cart
type CartHandler struct {
	service service.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	h.adjust(c, h.service.AddToCart)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	h.adjust(c, h.service.RemoveFromCart)
}

func (h *CartHandler) adjust(c *gin.Context, op func(ctx context.Context, userID string, itemID int) (model.Cart, error)) {
	user, ok := authUser(c)
	if !ok {
		return
	}

	var req model.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	cart, err := op(c.Request.Context(), user.ID, *req.ItemID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cartData": cart})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCartItem):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		errorJSON(c, http.StatusUnauthorized, "Please authenticate using a valid token")
	default:
		log.Printf("Error updating cart: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to update cart")
	}
}

// RegisterCartRoutes registers cart routes; all of them require a signed-in user
func (h *CartHandler) RegisterCartRoutes(rg gin.IRoutes, authMW gin.HandlerFunc) {
	rg.POST("/addtocart", authMW, h.AddToCart)
	rg.POST("/removefromcart", authMW, h.RemoveFromCart)
	rg.POST("/getcart", authMW, h.GetCart)
	rg.GET("/getcart", authMW, h.GetCart)
}
