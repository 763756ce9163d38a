package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"shop_backend/internal/imagestore"
	"shop_backend/internal/model"
	"shop_backend/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrImageRequired     = errors.New("image required")
	ErrInvalidFileFormat = errors.New("invalid file format. only .jpg, .jpeg, .png are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")
	ErrInvalidPrice      = errors.New("prices must be non-negative numbers")
)

const (
	MaxFileSize = 5 * 1024 * 1024 // 5MB

	newCollectionsSize = 8
	popularSize        = 4
	relatedSize        = 4
	popularCategory    = "women"

	// A collision means a concurrent create took the id; each retry re-reads the max.
	maxIDAttempts = 5
)

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// ProductService defines catalog operations
type ProductService interface {
	CreateProduct(ctx context.Context, req model.CreateProductRequest, image *model.ImageUpload) (*model.Product, error)
	RemoveProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	NewCollections(ctx context.Context) ([]model.Product, error)
	PopularInWomen(ctx context.Context) ([]model.Product, error)
	RelatedProducts(ctx context.Context, category string) ([]model.Product, error)
}

type productService struct {
	repo   repository.ProductRepository
	images imagestore.ImageStore
}

// NewProductService creates a new ProductService
func NewProductService(repo repository.ProductRepository, images imagestore.ImageStore) ProductService {
	return &productService{repo: repo, images: images}
}

func (s *productService) CreateProduct(ctx context.Context, req model.CreateProductRequest, image *model.ImageUpload) (*model.Product, error) {
	if image == nil {
		return nil, ErrImageRequired
	}
	if image.Size > MaxFileSize || int64(len(image.Data)) > MaxFileSize {
		return nil, ErrFileSizeExceeded
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(image.Filename))] {
		return nil, ErrInvalidFileFormat
	}

	newPrice, err := parsePrice(req.NewPrice)
	if err != nil {
		return nil, err
	}
	oldPrice, err := parsePrice(req.OldPrice)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.Save(ctx, *image)
	if err != nil {
		return nil, fmt.Errorf("failed to store product image: %w", err)
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       imageURL,
		Category:    req.Category,
		NewPrice:    newPrice,
		OldPrice:    oldPrice,
		Available:   true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.insertWithNextID(ctx, product); err != nil {
		if cleanupErr := s.images.Delete(ctx, imageURL); cleanupErr != nil {
			log.Printf("WARN: failed to remove orphaned image %s: %v", imageURL, cleanupErr)
		}
		return nil, err
	}
	return product, nil
}

// insertWithNextID assigns max(id)+1 and relies on the unique index on id to detect
// a concurrent create that picked the same value.
func (s *productService) insertWithNextID(ctx context.Context, product *model.Product) error {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		maxID, err := s.repo.MaxID(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute next product id: %w", err)
		}
		product.ID = maxID + 1

		err = s.repo.Create(ctx, product)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return fmt.Errorf("failed to create product in repo: %w", err)
		}
		log.Printf("Product id %d taken concurrently, retrying (attempt %d/%d)", product.ID, attempt, maxIDAttempts)
	}
	return fmt.Errorf("failed to assign product id after %d attempts", maxIDAttempts)
}

func (s *productService) RemoveProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product in repo: %w", err)
	}
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.list(ctx, model.ProductFilters{})
}

// NewCollections returns the most recently added products, oldest of them first
func (s *productService) NewCollections(ctx context.Context) ([]model.Product, error) {
	return s.list(ctx, model.ProductFilters{Limit: newCollectionsSize, Newest: true})
}

func (s *productService) PopularInWomen(ctx context.Context) ([]model.Product, error) {
	category := popularCategory
	return s.list(ctx, model.ProductFilters{Category: &category, Limit: popularSize})
}

func (s *productService) RelatedProducts(ctx context.Context, category string) ([]model.Product, error) {
	return s.list(ctx, model.ProductFilters{Category: &category, Limit: relatedSize})
}

func (s *productService) list(ctx context.Context, filters model.ProductFilters) ([]model.Product, error) {
	products, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}
