package service

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/model"
	"shop_backend/internal/repository"
)

var (
	ErrInvalidCartItem = fmt.Errorf("itemId must be between 0 and %d", model.CartSlots-1)
	ErrUserNotFound    = errors.New("user not found")
)

// CartService manages the per-user cart snapshot
type CartService interface {
	AddToCart(ctx context.Context, userID string, itemID int) (model.Cart, error)
	RemoveFromCart(ctx context.Context, userID string, itemID int) (model.Cart, error)
	GetCart(ctx context.Context, userID string) (model.Cart, error)
}

type cartService struct {
	userRepo repository.UserRepository
}

// NewCartService creates a new CartService
func NewCartService(userRepo repository.UserRepository) CartService {
	return &cartService{userRepo: userRepo}
}

func (s *cartService) AddToCart(ctx context.Context, userID string, itemID int) (model.Cart, error) {
	return s.adjust(ctx, userID, itemID, 1)
}

// RemoveFromCart decrements the slot; an empty slot stays at zero
func (s *cartService) RemoveFromCart(ctx context.Context, userID string, itemID int) (model.Cart, error) {
	return s.adjust(ctx, userID, itemID, -1)
}

func (s *cartService) adjust(ctx context.Context, userID string, itemID, delta int) (model.Cart, error) {
	if itemID < 0 || itemID >= model.CartSlots {
		return nil, ErrInvalidCartItem
	}
	cart, err := s.userRepo.AdjustCart(ctx, userID, itemID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (model.Cart, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.CartData, nil
}
