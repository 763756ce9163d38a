package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"shop_backend/internal/model"
	"shop_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderHandler handles order related requests
type OrderHandler struct {
	service service.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), user.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Error creating order: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to create order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	user, ok := authUser(c)
	if !ok {
		return
	}

	orders, err := h.service.GetUserOrders(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("Error getting user orders: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// --- Admin Routes ---

func (h *OrderHandler) GetAllOrdersAdmin(c *gin.Context) {
	orders, err := h.service.GetAllOrdersAdmin(c.Request.Context())
	if err != nil {
		log.Printf("Error getting all orders for admin: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatusAdmin(c *gin.Context) {
	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	order, err := h.service.UpdateOrderStatusAdmin(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			errorJSON(c, http.StatusNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidStatus):
			errorJSON(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("Error updating order status: %v", err)
			errorJSON(c, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *OrderHandler) ExportOrdersCSVAdmin(c *gin.Context) {
	csvBuffer, err := h.service.ExportOrdersCSVAdmin(c.Request.Context())
	if err != nil {
		log.Printf("Error exporting orders to CSV for admin: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to export orders to CSV")
		return
	}

	fileName := fmt.Sprintf("orders_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

// RegisterOrderRoutes registers order routes
func (h *OrderHandler) RegisterOrderRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	rg.POST("/createorder", authMW, h.CreateOrder)
	rg.GET("/myorders", authMW, h.GetMyOrders)

	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.GET("/orders", h.GetAllOrdersAdmin)
		adminRoutes.GET("/orders/export/csv", h.ExportOrdersCSVAdmin)
		adminRoutes.PUT("/updateorder/:id", h.UpdateOrderStatusAdmin)
	}
}
