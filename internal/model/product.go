package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. ID is the public sequential catalog id; StorageID is
// whatever the backing store assigned and is only informational.
type Product struct {
	StorageID   string          `json:"_id"`
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	NewPrice    decimal.Decimal `json:"new_price"`
	OldPrice    decimal.Decimal `json:"old_price"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"date"`
}

type productAlias Product

// MarshalJSON writes prices as JSON numbers, the way storefront clients send them
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		productAlias
		NewPrice json.Number `json:"new_price"`
		OldPrice json.Number `json:"old_price"`
	}{
		productAlias: productAlias(p),
		NewPrice:     jsonNumber(p.NewPrice),
		OldPrice:     jsonNumber(p.OldPrice),
	})
}

func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// CreateProductRequest carries the non-file fields of the add-product form
type CreateProductRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	Category    string `form:"category" binding:"required"`
	NewPrice    string `form:"new_price" binding:"required"`
	OldPrice    string `form:"old_price"`
}

// RemoveProductRequest is the body of POST /removeproduct
type RemoveProductRequest struct {
	ID *int64 `json:"id" binding:"required"`
}

// RelatedProductsRequest is the body of POST /relatedproducts
type RelatedProductsRequest struct {
	Category string `json:"category"`
}

// ProductFilters narrows a catalog listing. Results are always returned oldest first.
type ProductFilters struct {
	Category *string
	// Limit caps the result size; zero means no cap.
	Limit int
	// Newest takes the Limit most recently inserted products instead of the oldest.
	Newest bool
}

// ImageUpload is an uploaded product image handed to the image store
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
