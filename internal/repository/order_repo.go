package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shop_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// OrderRepository defines operations for order data
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByUser(ctx context.Context, userID string) ([]model.Order, error)
	// FindAllWithUsers returns every order joined with its owner's name and email
	FindAllWithUsers(ctx context.Context) ([]model.AdminOrder, error)
	// UpdateStatus sets the status of the order with the given reference and returns it
	UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error)
}

type orderRepository struct {
	db PgxIface
}

// NewOrderRepository creates a new Postgres-backed OrderRepository
func NewOrderRepository(db PgxIface) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `pk::text, order_id, user_id, items, total_amount, payment_method, status, created_at`

// Create inserts a new order into the database
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	sql := `INSERT INTO orders (order_id, user_id, items, total_amount, payment_method, status, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING pk::text`
	err = r.db.QueryRow(ctx, sql, o.OrderID, o.UserID, items, o.TotalAmount, o.PaymentMethod, o.Status, o.CreatedAt).Scan(&o.StorageID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByUser retrieves the orders owned by userID, oldest first
func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]model.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY pk ASC`
	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by user: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

// FindAllWithUsers retrieves all orders for admin with owners resolved
func (r *orderRepository) FindAllWithUsers(ctx context.Context) ([]model.AdminOrder, error) {
	sql := `SELECT o.pk::text, o.order_id, o.user_id, o.items, o.total_amount, o.payment_method, o.status, o.created_at,
                   u.name, u.email
            FROM orders o
            LEFT JOIN users u ON u.id = o.user_id
            ORDER BY o.pk ASC`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query all orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.AdminOrder, 0)
	for rows.Next() {
		var (
			o           model.AdminOrder
			items       []byte
			name, email *string
		)
		if err := rows.Scan(&o.StorageID, &o.OrderID, &o.UserID, &items, &o.TotalAmount,
			&o.PaymentMethod, &o.Status, &o.CreatedAt, &name, &email); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
		if name != nil || email != nil {
			o.Owner = &model.OrderOwner{}
			if name != nil {
				o.Owner.Name = *name
			}
			if email != nil {
				o.Owner.Email = *email
			}
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

// UpdateStatus overwrites the status column only
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	sql := `UPDATE orders SET status = $1 WHERE order_id = $2 RETURNING ` + orderColumns
	o, err := scanOrder(r.db.QueryRow(ctx, sql, status, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	var items []byte
	err := row.Scan(&o.StorageID, &o.OrderID, &o.UserID, &items, &o.TotalAmount, &o.PaymentMethod, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	return o, nil
}
