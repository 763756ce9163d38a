package handler

import (
	"context"
	"net/http"

	"shop_backend/internal/imagestore"

	"github.com/gin-gonic/gin"
)

// RouterConfig wires handlers and middleware into the HTTP surface
type RouterConfig struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Cart     *CartHandler

	AuthMW  gin.HandlerFunc
	AdminMW gin.HandlerFunc
	CORSMW  gin.HandlerFunc

	// HealthCheck pings the backing store
	HealthCheck func(ctx context.Context) error
	// ImagesDir is served under /images when images are stored locally
	ImagesDir string
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	if cfg.CORSMW != nil {
		router.Use(cfg.CORSMW)
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Running")
	})
	router.GET("/health", func(c *gin.Context) {
		if cfg.HealthCheck != nil {
			if err := cfg.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})
	if cfg.ImagesDir != "" {
		router.Static(imagestore.PublicPath, cfg.ImagesDir)
	}

	root := router.Group("")
	cfg.Auth.RegisterAuthRoutes(root)
	cfg.Products.RegisterProductRoutes(root, cfg.AuthMW, cfg.AdminMW)
	cfg.Orders.RegisterOrderRoutes(root, cfg.AuthMW, cfg.AdminMW)
	cfg.Cart.RegisterCartRoutes(root, cfg.AuthMW)

	return router
}
