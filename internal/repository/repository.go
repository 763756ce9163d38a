package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shop_backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup by key matches nothing
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a write violates a unique index
	ErrDuplicateKey = errors.New("duplicate key")
)

const uniqueViolation = "23505"

// PgxIface is the part of *pgxpool.Pool the Postgres repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func decodeCart(raw []byte) (model.Cart, error) {
	cart := model.Cart{}
	if len(raw) == 0 {
		return cart, nil
	}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return cart, nil
}
