package service

import (
	"context"
	"errors"
	"testing"

	"calzado-imperial/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validOrderRequest() domain.OrderRequest {
	airMax := StaticProducts()[0]
	stan := StaticProducts()[7]
	cart := domain.NewCart().Add(airMax, 2, "42", "Negro").Add(stan, 1, "40", "Blanco")

	return domain.OrderRequest{
		PersonalInfo: &domain.PersonalInfo{
			Nombre:    "Ana",
			Apellidos: "Quispe",
			Email:     "ana@example.pe",
			Telefono:  "987 654 321",
		},
		ShippingAddress: &domain.ShippingAddress{
			Direccion:    "Av. Arequipa 123",
			Distrito:     "Miraflores",
			Ciudad:       "Lima",
			Departamento: "Lima",
		},
		Cart: &cart,
	}
}

func TestOrderService_CreateOrderSnapshotsEveryLine(t *testing.T) {
	repo := &mockOrderRepository{}
	publisher := &mockPublisher{}
	svc := NewOrderService(repo, publisher, zap.NewNop())
	req := validOrderRequest()

	submission, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "order-1", submission.Order.ID)
	assert.True(t, submission.Order.Total.Equal(req.Cart.Total))
	assert.True(t, submission.Order.Total.Equal(decimal.NewFromInt(1240)))
	assert.False(t, submission.Partial)

	require.Len(t, submission.Items, 2)
	assert.Equal(t, domain.OrderItem{
		ID: "item-1", OrderID: "order-1", ProductID: "1", ProductName: "Air Max 90",
		Price: decimal.NewFromInt(480), Quantity: 2,
	}, submission.Items[0])
	assert.Equal(t, "8", submission.Items[1].ProductID)
	assert.Equal(t, 1, submission.Items[1].Quantity)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "order-1", publisher.published[0].Order.ID)
}

func TestOrderService_ItemsFailureIsPartialSuccess(t *testing.T) {
	repo := &mockOrderRepository{itemsErr: errors.New("insert failed")}
	svc := NewOrderService(repo, nil, zap.NewNop())

	submission, err := svc.CreateOrder(context.Background(), validOrderRequest())
	require.NoError(t, err)
	assert.True(t, submission.Partial)
	assert.Empty(t, submission.Items)
	assert.NotNil(t, submission.Items)
	assert.Len(t, repo.orders, 1, "the order row is not rolled back")
}

func TestOrderService_CreateFailures(t *testing.T) {
	_, err := NewOrderService(nil, nil, zap.NewNop()).CreateOrder(context.Background(), validOrderRequest())
	assert.ErrorIs(t, err, ErrStoreNotConfigured)

	repo := &mockOrderRepository{createErr: errors.New("connection refused")}
	_, err = NewOrderService(repo, nil, zap.NewNop()).CreateOrder(context.Background(), validOrderRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order")

	req := validOrderRequest()
	req.Cart = nil
	_, err = NewOrderService(&mockOrderRepository{}, nil, zap.NewNop()).CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingCart)
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("channel closed")}
	svc := NewOrderService(&mockOrderRepository{}, publisher, zap.NewNop())

	submission, err := svc.CreateOrder(context.Background(), validOrderRequest())
	require.NoError(t, err)
	assert.Len(t, submission.Items, 2)
	assert.Len(t, publisher.published, 1)
}

func TestOrderService_GetOrdersByEmail(t *testing.T) {
	repo := &mockOrderRepository{}
	svc := NewOrderService(repo, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)

	orders := svc.GetOrdersByEmail(ctx, "ana@example.pe")
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID, "newest first")

	repo.listErr = errors.New("timeout")
	assert.Empty(t, svc.GetOrdersByEmail(ctx, "ana@example.pe"))
	assert.NotNil(t, svc.GetOrdersByEmail(ctx, "ana@example.pe"))

	assert.Empty(t, NewOrderService(nil, nil, zap.NewNop()).GetOrdersByEmail(ctx, "ana@example.pe"))
}
