package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// OrderService serves order history to customers and the admin panel.
type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *OrderService) ForUser(ctx context.Context, userID int64) ([]domain.OrderSummary, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) Latest(ctx context.Context, limit int) ([]domain.OrderSummary, error) {
	return s.Orders.ListLatest(ctx, limit)
}

// SetStatus moves an order to status; unknown statuses are a validation error.
func (s *OrderService) SetStatus(ctx context.Context, id int64, status string) error {
	return s.Orders.UpdateStatus(ctx, id, status)
}

func (s *OrderService) Stats(ctx context.Context) (repos.OrderStats, error) {
	return s.Orders.Stats(ctx)
}
