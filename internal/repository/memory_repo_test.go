package repository

import (
	"context"
	"sync"
	"testing"

	"shop_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	users, _, _ := NewMemoryRepositories()

	require.NoError(t, users.Create(ctx, &model.User{ID: "u-1", Email: "a@x.com", CartData: model.NewCart()}))
	assert.ErrorIs(t, users.Create(ctx, &model.User{ID: "u-2", Email: "a@x.com"}), ErrDuplicateKey)

	found, err := users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "u-1", found.ID)

	missing, err := users.FindByID(ctx, "u-2")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	// returned users are copies
	found.CartData[0] = 99
	again, _ := users.FindByID(ctx, "u-1")
	assert.Equal(t, 0, again.CartData[0])
}

func TestMemoryUserRepository_AdjustCart(t *testing.T) {
	ctx := context.Background()
	users, _, _ := NewMemoryRepositories()
	require.NoError(t, users.Create(ctx, &model.User{ID: "u-1", Email: "a@x.com", CartData: model.NewCart()}))

	cart, err := users.AdjustCart(ctx, "u-1", 5, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, cart[5])

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = users.AdjustCart(ctx, "u-1", 5, 1)
		}()
	}
	wg.Wait()

	user, _ := users.FindByID(ctx, "u-1")
	assert.Equal(t, 50, user.CartData[5])

	_, err = users.AdjustCart(ctx, "gone", 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProductRepository(t *testing.T) {
	ctx := context.Background()
	_, products, _ := NewMemoryRepositories()

	maxID, err := products.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), maxID)

	categories := []string{"women", "men", "women", "kid", "women", "women", "women"}
	for i, c := range categories {
		require.NoError(t, products.Create(ctx, &model.Product{ID: int64(i + 1), Category: c}))
	}
	assert.ErrorIs(t, products.Create(ctx, &model.Product{ID: 3}), ErrDuplicateKey)

	maxID, _ = products.MaxID(ctx)
	assert.Equal(t, int64(7), maxID)

	women := "women"
	first, err := products.FindAll(ctx, model.ProductFilters{Category: &women, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 5, 6}, ids(first))

	newest, err := products.FindAll(ctx, model.ProductFilters{Limit: 3, Newest: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7}, ids(newest))

	require.NoError(t, products.DeleteByID(ctx, 2))
	assert.ErrorIs(t, products.DeleteByID(ctx, 2), ErrNotFound)
	_, err = products.FindByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	all, _ := products.FindAll(ctx, model.ProductFilters{})
	assert.Equal(t, []int64{1, 3, 4, 5, 6, 7}, ids(all))
}

func TestMemoryOrderRepository(t *testing.T) {
	ctx := context.Background()
	users, _, orders := NewMemoryRepositories()
	require.NoError(t, users.Create(ctx, &model.User{ID: "u-1", Name: "ann", Email: "a@x.com"}))

	require.NoError(t, orders.Create(ctx, &model.Order{OrderID: "ORD-1", UserID: "u-1", Status: model.OrderStatusPending}))
	require.NoError(t, orders.Create(ctx, &model.Order{OrderID: "ORD-2", UserID: "u-deleted", Status: model.OrderStatusPending}))
	assert.ErrorIs(t, orders.Create(ctx, &model.Order{OrderID: "ORD-1"}), ErrDuplicateKey)

	mine, err := orders.FindByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ORD-1", mine[0].OrderID)

	all, err := orders.FindAllWithUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, &model.OrderOwner{Name: "ann", Email: "a@x.com"}, all[0].Owner)
	assert.Nil(t, all[1].Owner)

	updated, err := orders.UpdateStatus(ctx, "ORD-2", "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", updated.Status)
	assert.Equal(t, "u-deleted", updated.UserID)

	_, err = orders.UpdateStatus(ctx, "ORD-9", "Shipped")
	assert.ErrorIs(t, err, ErrNotFound)
}

func ids(products []model.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
