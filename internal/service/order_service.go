package service

import (
	"context"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"

	"github.com/google/uuid"
)

type OrderService struct {
	repo *mysql.OrderRepository
}

func NewOrderService(repo *mysql.OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

var orderStatuses = map[string]bool{
	model.OrderPending:    true,
	model.OrderProcessing: true,
	model.OrderShipped:    true,
	model.OrderDelivered:  true,
	model.OrderCancelled:  true,
}

func (s *OrderService) ListByVendor(ctx context.Context, vendorID uuid.UUID, status string) ([]model.Order, error) {
	if status != "" && !orderStatuses[status] {
		return nil, pkg.BadRequest("unknown order status %q", status)
	}
	return s.repo.ListByVendor(ctx, vendorID, status)
}

func (s *OrderService) UpdateStatus(ctx context.Context, vendorID, orderID uuid.UUID, to string) error {
	if len(model.AllowedFrom(to)) == 0 {
		return pkg.BadRequest("cannot move an order to %q", to)
	}
	return s.repo.TransitionStatus(ctx, vendorID, orderID, to)
}
