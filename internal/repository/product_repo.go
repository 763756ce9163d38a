package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository defines operations for catalog data
type ProductRepository interface {
	// Create stores p. It returns ErrDuplicateKey when p.ID is already taken.
	Create(ctx context.Context, p *model.Product) error
	// MaxID returns the highest catalog id, or 0 for an empty catalog
	MaxID(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	// FindAll returns products in insertion order, oldest first
	FindAll(ctx context.Context, filters model.ProductFilters) ([]model.Product, error)
	DeleteByID(ctx context.Context, id int64) error
}

type productRepository struct {
	db PgxIface
}

// NewProductRepository creates a new Postgres-backed ProductRepository
func NewProductRepository(db PgxIface) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `pk::text, id, name, description, image_url, category, new_price, old_price, available, created_at`

// Create inserts a new product into the database
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	sql := `INSERT INTO products (id, name, description, image_url, category, new_price, old_price, available, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING pk::text`
	err := r.db.QueryRow(ctx, sql, p.ID, p.Name, p.Description, p.Image, p.Category,
		p.NewPrice, p.OldPrice, p.Available, p.CreatedAt).Scan(&p.StorageID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// MaxID returns the highest catalog id in use
func (r *productRepository) MaxID(ctx context.Context) (int64, error) {
	var maxID int64
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM products`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to read max product id: %w", err)
	}
	return maxID, nil
}

// FindByID retrieves a product by its catalog id
func (r *productRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return p, nil
}

// FindAll lists products with optional category and limit filters
func (r *productRepository) FindAll(ctx context.Context, filters model.ProductFilters) ([]model.Product, error) {
	var where strings.Builder
	args := []interface{}{}
	argCount := 1

	if filters.Category != nil {
		where.WriteString(fmt.Sprintf(" WHERE category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}

	var queryBuilder strings.Builder
	if filters.Newest && filters.Limit > 0 {
		// Take the newest rows, then flip them back into insertion order
		queryBuilder.WriteString(`SELECT storage_id, id, name, description, image_url, category, new_price, old_price, available, created_at
                                   FROM (SELECT pk, pk::text AS storage_id, id, name, description, image_url, category, new_price, old_price, available, created_at
                                         FROM products`)
		queryBuilder.WriteString(where.String())
		queryBuilder.WriteString(fmt.Sprintf(" ORDER BY pk DESC LIMIT $%d) recent ORDER BY pk ASC", argCount))
		args = append(args, filters.Limit)
	} else {
		queryBuilder.WriteString(`SELECT ` + productColumns + ` FROM products`)
		queryBuilder.WriteString(where.String())
		queryBuilder.WriteString(" ORDER BY pk ASC")
		if filters.Limit > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
			args = append(args, filters.Limit)
		}
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

// DeleteByID removes a product by its catalog id
func (r *productRepository) DeleteByID(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(&p.StorageID, &p.ID, &p.Name, &p.Description, &p.Image, &p.Category,
		&p.NewPrice, &p.OldPrice, &p.Available, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
