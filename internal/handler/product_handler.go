package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"shop_backend/internal/model"
	"shop_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductImageField is the multipart field carrying the product image
const ProductImageField = "product"

// ProductHandler handles catalog requests
type ProductHandler struct {
	service service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

func (h *ProductHandler) AddProduct(c *gin.Context) {
	var upload *model.ImageUpload
	fileHeader, err := c.FormFile(ProductImageField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// left nil, the service rejects it
	case err != nil:
		errorJSON(c, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	default:
		upload, err = readUpload(fileHeader)
		if err != nil {
			log.Printf("Error reading uploaded image: %v", err)
			errorJSON(c, http.StatusBadRequest, "Failed to read uploaded image")
			return
		}
	}

	var req model.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req, upload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageRequired):
			errorJSON(c, http.StatusBadRequest, "Image required")
		case errors.Is(err, service.ErrInvalidFileFormat), errors.Is(err, service.ErrFileSizeExceeded),
			errors.Is(err, service.ErrInvalidPrice):
			errorJSON(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("Error creating product: %v", err)
			errorJSON(c, http.StatusInternalServerError, "Failed to add product")
		}
		return
	}

	log.Printf("Product %d (%s) added", product.ID, product.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

func (h *ProductHandler) RemoveProduct(c *gin.Context) {
	var req model.RemoveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.service.RemoveProduct(c.Request.Context(), *req.ID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			errorJSON(c, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Error removing product %d: %v", *req.ID, err)
		errorJSON(c, http.StatusInternalServerError, "Failed to remove product")
		return
	}

	log.Printf("Product %d removed", *req.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product removed successfully"})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			errorJSON(c, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Error getting product %d: %v", id, err)
		errorJSON(c, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) AllProducts(c *gin.Context) {
	h.respondWithList(c, "All Products", func() ([]model.Product, error) {
		return h.service.ListProducts(c.Request.Context())
	})
}

func (h *ProductHandler) NewCollections(c *gin.Context) {
	h.respondWithList(c, "New Collections", func() ([]model.Product, error) {
		return h.service.NewCollections(c.Request.Context())
	})
}

func (h *ProductHandler) PopularInWomen(c *gin.Context) {
	h.respondWithList(c, "Popular In Women", func() ([]model.Product, error) {
		return h.service.PopularInWomen(c.Request.Context())
	})
}

func (h *ProductHandler) RelatedProducts(c *gin.Context) {
	var req model.RelatedProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	h.respondWithList(c, "Related Products", func() ([]model.Product, error) {
		return h.service.RelatedProducts(c.Request.Context(), req.Category)
	})
}

func (h *ProductHandler) respondWithList(c *gin.Context, view string, fetch func() ([]model.Product, error)) {
	products, err := fetch()
	if err != nil {
		log.Printf("Error getting %s: %v", view, err)
		errorJSON(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// RegisterProductRoutes registers catalog routes. Mutations require an admin.
func (h *ProductHandler) RegisterProductRoutes(rg gin.IRoutes, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	rg.GET("/allproducts", h.AllProducts)
	rg.GET("/newcollections", h.NewCollections)
	rg.GET("/popularinwomen", h.PopularInWomen)
	rg.POST("/relatedproducts", h.RelatedProducts)
	rg.GET("/product/:id", h.GetProduct)

	rg.POST("/addproduct", authMW, adminMW, h.AddProduct)
	rg.POST("/removeproduct", authMW, adminMW, h.RemoveProduct)
}

// readUpload loads the image into memory. Oversized files are not read; the size alone
// lets the service reject them.
func readUpload(fileHeader *multipart.FileHeader) (*model.ImageUpload, error) {
	upload := &model.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}
	if fileHeader.Size > service.MaxFileSize {
		return upload, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	upload.Data = data
	if upload.ContentType == "" || upload.ContentType == "application/octet-stream" {
		upload.ContentType = http.DetectContentType(data)
	}
	return upload, nil
}
