package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop_backend/internal/model"
	"shop_backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidAmount = errors.New("totalAmount must not be negative")
	ErrInvalidStatus = errors.New("status must not be empty")
)

// OrderService defines operations for orders
type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req model.CreateOrderRequest) (*model.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]model.Order, error)

	// Admin methods
	GetAllOrdersAdmin(ctx context.Context) ([]model.AdminOrder, error)
	UpdateOrderStatusAdmin(ctx context.Context, orderID, status string) (*model.Order, error)
	ExportOrdersCSVAdmin(ctx context.Context) (*bytes.Buffer, error)
}

type orderService struct {
	repo repository.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

// NewOrderReference returns an order reference that stays unique under concurrent submission
func NewOrderReference() string {
	return "ORD-" + strings.ToUpper(uuid.NewString())
}

// CreateOrder stores the order as submitted. Items and total are trusted as given.
func (s *orderService) CreateOrder(ctx context.Context, userID string, req model.CreateOrderRequest) (*model.Order, error) {
	if req.TotalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	order := &model.Order{
		OrderID:       NewOrderReference(),
		UserID:        userID,
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repo: %w", err)
	}
	return order, nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders from repo: %w", err)
	}
	return orders, nil
}

// --- Admin Methods ---

func (s *orderService) GetAllOrdersAdmin(ctx context.Context) ([]model.AdminOrder, error) {
	orders, err := s.repo.FindAllWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders for admin: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatusAdmin sets any non-empty status; there is no transition graph.
func (s *orderService) UpdateOrderStatusAdmin(ctx context.Context, orderID, status string) (*model.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrInvalidStatus
	}

	order, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

func (s *orderService) ExportOrdersCSVAdmin(ctx context.Context) (*bytes.Buffer, error) {
	orders, err := s.repo.FindAllWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders for CSV export: %w", err)
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"OrderID", "UserID", "UserName", "UserEmail", "Items", "TotalAmount", "PaymentMethod", "Status", "Date"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, o := range orders {
		var name, email string
		if o.Owner != nil {
			name, email = o.Owner.Name, o.Owner.Email
		}
		items, err := json.Marshal(o.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to encode items of order %s: %w", o.OrderID, err)
		}
		row := []string{
			o.OrderID,
			o.UserID,
			name,
			email,
			string(items),
			o.TotalAmount.StringFixed(2),
			o.PaymentMethod,
			o.Status,
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}

	return buffer, nil
}
