package repository

import (
	"context"
	"strconv"
	"sync"

	"shop_backend/internal/model"
)

// memoryStore keeps every collection behind one lock so the admin order join sees a
// consistent view of users and orders.
type memoryStore struct {
	mu sync.RWMutex

	users       map[string]model.User
	emailIndex  map[string]string
	products    []model.Product // insertion order
	orders      []model.Order   // insertion order
	nextStoreID int64
}

// NewMemoryRepositories returns repositories backed by process memory. Used for local
// development and tests; nothing is persisted.
func NewMemoryRepositories() (UserRepository, ProductRepository, OrderRepository) {
	s := &memoryStore{
		users:       make(map[string]model.User),
		emailIndex:  make(map[string]string),
		nextStoreID: 1,
	}
	return &memoryUserRepository{s}, &memoryProductRepository{s}, &memoryOrderRepository{s}
}

func (s *memoryStore) storageID() string {
	id := strconv.FormatInt(s.nextStoreID, 10)
	s.nextStoreID++
	return id
}

func copyCart(cart model.Cart) model.Cart {
	out := make(model.Cart, len(cart))
	for k, v := range cart {
		out[k] = v
	}
	return out
}

func copyUser(u model.User) *model.User {
	u.CartData = copyCart(u.CartData)
	return &u
}

type memoryUserRepository struct{ s *memoryStore }

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.emailIndex[user.Email]; exists {
		return ErrDuplicateKey
	}
	if _, exists := r.s.users[user.ID]; exists {
		return ErrDuplicateKey
	}
	r.s.users[user.ID] = *copyUser(*user)
	r.s.emailIndex[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emailIndex[email]
	if !ok {
		return nil, nil
	}
	return copyUser(r.s.users[id]), nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *memoryUserRepository) AdjustCart(_ context.Context, userID string, slot, delta int) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if u.CartData == nil {
		u.CartData = model.Cart{}
	}
	qty := u.CartData[slot] + delta
	if qty < 0 {
		qty = 0
	}
	u.CartData[slot] = qty
	r.s.users[userID] = u
	return copyCart(u.CartData), nil
}

type memoryProductRepository struct{ s *memoryStore }

func (r *memoryProductRepository) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.products {
		if existing.ID == p.ID {
			return ErrDuplicateKey
		}
	}
	p.StorageID = r.s.storageID()
	r.s.products = append(r.s.products, *p)
	return nil
}

func (r *memoryProductRepository) MaxID(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var maxID int64
	for _, p := range r.s.products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID, nil
}

func (r *memoryProductRepository) FindByID(_ context.Context, id int64) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryProductRepository) FindAll(_ context.Context, filters model.ProductFilters) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filters.Category != nil && p.Category != *filters.Category {
			continue
		}
		matched = append(matched, p)
	}

	if filters.Limit > 0 && len(matched) > filters.Limit {
		if filters.Newest {
			matched = matched[len(matched)-filters.Limit:]
		} else {
			matched = matched[:filters.Limit]
		}
	}
	return matched, nil
}

func (r *memoryProductRepository) DeleteByID(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, p := range r.s.products {
		if p.ID == id {
			r.s.products = append(r.s.products[:i], r.s.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memoryOrderRepository struct{ s *memoryStore }

func (r *memoryOrderRepository) Create(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.orders {
		if existing.OrderID == o.OrderID {
			return ErrDuplicateKey
		}
	}
	o.StorageID = r.s.storageID()
	r.s.orders = append(r.s.orders, *o)
	return nil
}

func (r *memoryOrderRepository) FindByUser(_ context.Context, userID string) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]model.Order, 0)
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *memoryOrderRepository) FindAllWithUsers(_ context.Context) ([]model.AdminOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]model.AdminOrder, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		admin := model.AdminOrder{Order: o}
		if u, ok := r.s.users[o.UserID]; ok {
			admin.Owner = &model.OrderOwner{Name: u.Name, Email: u.Email}
		}
		orders = append(orders, admin)
	}
	return orders, nil
}

func (r *memoryOrderRepository) UpdateStatus(_ context.Context, orderID, status string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.orders {
		if r.s.orders[i].OrderID == orderID {
			r.s.orders[i].Status = status
			updated := r.s.orders[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}
