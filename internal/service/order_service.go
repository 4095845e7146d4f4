package service

import (
	"context"
	"errors"
	"fmt"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrStoreNotConfigured = errors.New("order store is not configured")
	ErrMissingCart        = errors.New("order has no cart")
)

// OrderEventPublisher announces created orders to other systems
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, submission domain.OrderSubmission) error
}

// OrderService defines the interface for order business logic
type OrderService interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderSubmission, error)
	GetOrdersByEmail(ctx context.Context, email string) []domain.Order
}

type orderService struct {
	orderRepo repository.OrderRepository
	publisher OrderEventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new instance of OrderService.
// A nil repository means the store is unconfigured; a nil publisher
// disables order events.
func NewOrderService(orderRepo repository.OrderRepository, publisher OrderEventPublisher, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrder writes the order row and then its items. When the items
// write fails the order is kept and the submission is marked Partial.
func (s *orderService) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderSubmission, error) {
	if s.orderRepo == nil {
		return nil, ErrStoreNotConfigured
	}
	if req.Cart == nil {
		return nil, ErrMissingCart
	}

	order := domain.NewOrder(req)
	if err := s.orderRepo.Create(ctx, &order); err != nil {
		s.logger.Error("failed to create order", zap.String("email", order.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	submission := &domain.OrderSubmission{Order: order, Items: []domain.OrderItem{}}

	items, err := s.orderRepo.CreateItems(ctx, domain.SnapshotItems(order.ID, *req.Cart))
	if err != nil {
		s.logger.Warn("order created without items",
			zap.String("order_id", order.ID),
			zap.Int("lines", len(req.Cart.Items)),
			zap.Error(err),
		)
		submission.Partial = true
	} else {
		submission.Items = items
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, *submission); err != nil {
			s.logger.Warn("failed to publish order created event", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("total", order.Total.String()),
		zap.Int("items", len(submission.Items)),
	)
	return submission, nil
}

// GetOrdersByEmail returns newest first, or an empty list on any failure
func (s *orderService) GetOrdersByEmail(ctx context.Context, email string) []domain.Order {
	if s.orderRepo == nil {
		return []domain.Order{}
	}

	orders, err := s.orderRepo.ListByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return []domain.Order{}
	}
	return orders
}
