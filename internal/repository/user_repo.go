package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"shop_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// AdjustCart adds delta to one cart slot, clamping at zero, and returns the updated cart
	AdjustCart(ctx context.Context, userID string, slot, delta int) (model.Cart, error)
}

type userRepository struct {
	db PgxIface
}

// NewUserRepository creates a new Postgres-backed UserRepository
func NewUserRepository(db PgxIface) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, cart_data, created_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	cart, err := json.Marshal(user.CartData)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	sql := `INSERT INTO users (id, name, email, password_hash, role, cart_data, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.Exec(ctx, sql, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, cart, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email. A missing user is (nil, nil).
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by id. A missing user is (nil, nil).
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// AdjustCart updates the slot in a single statement so concurrent requests don't lose increments
func (r *userRepository) AdjustCart(ctx context.Context, userID string, slot, delta int) (model.Cart, error) {
	sql := `UPDATE users
            SET cart_data = jsonb_set(cart_data, ARRAY[$2::text],
                to_jsonb(GREATEST(COALESCE((cart_data->>$2::text)::int, 0) + $3, 0)))
            WHERE id = $1 RETURNING cart_data`
	var raw []byte
	err := r.db.QueryRow(ctx, sql, userID, strconv.Itoa(slot), delta).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return decodeCart(raw)
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	var cart []byte
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &cart, &user.CreatedAt); err != nil {
		return nil, err
	}
	decoded, err := decodeCart(cart)
	if err != nil {
		return nil, err
	}
	user.CartData = decoded
	return user, nil
}
