package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// CartSlots is the number of catalog slots tracked in a user's cart.
const CartSlots = 300

// Cart maps a catalog slot index (0..CartSlots-1) to a quantity.
type Cart map[int]int

// NewCart returns a cart with every slot set to zero.
func NewCart() Cart {
	cart := make(Cart, CartSlots)
	for i := 0; i < CartSlots; i++ {
		cart[i] = 0
	}
	return cart
}

// User represents a registered customer or administrator
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never leaves the server
	Role         string    `json:"role"`
	CartData     Cart      `json:"cartData"`
	CreatedAt    time.Time `json:"date"`
}

// SignupRequest is the body of POST /signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CartItemRequest is the body of the cart mutation endpoints
type CartItemRequest struct {
	ItemID *int `json:"itemId" binding:"required"`
}
