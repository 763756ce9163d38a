package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop_backend/internal/config"
	"shop_backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProduct struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	CatalogID   int64                `bson:"id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Image       string               `bson:"image"`
	Category    string               `bson:"category"`
	NewPrice    primitive.Decimal128 `bson:"new_price"`
	OldPrice    primitive.Decimal128 `bson:"old_price"`
	Available   bool                 `bson:"available"`
	CreatedAt   time.Time            `bson:"date"`
}

func (d mongoProduct) model() (*model.Product, error) {
	newPrice, err := fromDecimal128(d.NewPrice)
	if err != nil {
		return nil, err
	}
	oldPrice, err := fromDecimal128(d.OldPrice)
	if err != nil {
		return nil, err
	}
	return &model.Product{
		StorageID:   d.ID.Hex(),
		ID:          d.CatalogID,
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		Category:    d.Category,
		NewPrice:    newPrice,
		OldPrice:    oldPrice,
		Available:   d.Available,
		CreatedAt:   d.CreatedAt,
	}, nil
}

type mongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a ProductRepository over the products collection.
// Insertion order is the ObjectID order.
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{coll: db.Collection(config.ProductsCollection)}
}

func (r *mongoProductRepository) Create(ctx context.Context, p *model.Product) error {
	newPrice, err := toDecimal128(p.NewPrice)
	if err != nil {
		return err
	}
	oldPrice, err := toDecimal128(p.OldPrice)
	if err != nil {
		return err
	}

	doc := mongoProduct{
		ID:          primitive.NewObjectID(),
		CatalogID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		NewPrice:    newPrice,
		OldPrice:    oldPrice,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.StorageID = doc.ID.Hex()
	return nil
}

func (r *mongoProductRepository) MaxID(ctx context.Context) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}}).SetProjection(bson.D{{Key: "id", Value: 1}})
	var doc struct {
		CatalogID int64 `bson:"id"`
	}
	if err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read max product id: %w", err)
	}
	return doc.CatalogID, nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var doc mongoProduct
	if err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return doc.model()
}

func (r *mongoProductRepository) FindAll(ctx context.Context, filters model.ProductFilters) ([]model.Product, error) {
	filter := bson.D{}
	if filters.Category != nil {
		filter = append(filter, bson.E{Key: "category", Value: *filters.Category})
	}

	direction := 1
	if filters.Newest && filters.Limit > 0 {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: direction}})
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	var docs []mongoProduct
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]model.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if direction < 0 {
		for i, j := 0, len(products)-1; i < j; i, j = i+1, j-1 {
			products[i], products[j] = products[j], products[i]
		}
	}
	return products, nil
}

func (r *mongoProductRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
