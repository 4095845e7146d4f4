package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/repository"

	"github.com/shopspring/decimal"
)

func sneaker(id string, soles int64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Zapatilla " + id,
		Brand:    "Marca",
		Price:    decimal.NewFromInt(soles),
		Category: "Casual",
		Sizes:    []string{"40", "41"},
		Colors:   []string{"Negro", "Blanco"},
		Stock:    10,
	}
}

// Mock repositories for testing
type mockProductRepository struct {
	products  []domain.Product
	err       error
	listCalls atomic.Int32
	// block, when set, holds List until it is closed
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	m.listCalls.Add(1)
	if m.block != nil {
		m.once.Do(func() { close(m.started) })
		<-m.block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return filterProducts(m.products, func(p domain.Product) bool { return p.Featured }), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return filterProducts(m.products, func(p domain.Product) bool { return p.Name == query }), nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return filterProducts(m.products, func(p domain.Product) bool { return p.Category == category }), nil
}

type mockOrderRepository struct {
	orders    []domain.Order
	items     []domain.OrderItem
	createErr error
	itemsErr  error
	listErr   error
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = fmt.Sprintf("order-%d", len(m.orders)+1)
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockOrderRepository) CreateItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	created := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		item.ID = fmt.Sprintf("item-%d", len(m.items)+1)
		m.items = append(m.items, item)
		created = append(created, item)
	}
	return created, nil
}

func (m *mockOrderRepository) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].Email == email {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

type mockPublisher struct {
	published []domain.OrderSubmission
	err       error
}

func (m *mockPublisher) PublishOrderCreated(ctx context.Context, submission domain.OrderSubmission) error {
	m.published = append(m.published, submission)
	return m.err
}

// failingSlots fails every operation
type failingSlots struct{}

func (failingSlots) Load(ctx context.Context, cartID string) ([]byte, error) {
	return nil, fmt.Errorf("failed to load cart slot: connection refused")
}

func (failingSlots) Store(ctx context.Context, cartID string, data []byte) error {
	return fmt.Errorf("failed to store cart slot: connection refused")
}

func (failingSlots) Remove(ctx context.Context, cartID string) error {
	return fmt.Errorf("failed to remove cart slot: connection refused")
}
