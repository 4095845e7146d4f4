package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calzado-imperial/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotCreated = errors.New("order was not created")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	CreateItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type orderRepository struct {
	db DBPool
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db DBPool) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order row and fills in the store-assigned ID and creation time
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (nombre, apellidos, email, telefono, direccion, distrito, ciudad, departamento, codigo_postal, notas, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text, created_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		order.Nombre,
		order.Apellidos,
		order.Email,
		order.Telefono,
		order.Direccion,
		order.Distrito,
		order.Ciudad,
		order.Departamento,
		order.CodigoPostal,
		order.Notas,
		order.Total.InexactFloat64(),
	).Scan(&order.ID, &order.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotCreated
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if order.ID == "" {
		return ErrOrderNotCreated
	}

	return nil
}

// CreateItems inserts all items in a single statement and returns the stored rows
func (r *orderRepository) CreateItems(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	if len(items) == 0 {
		return []domain.OrderItem{}, nil
	}

	placeholders := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*5)
	for i, item := range items {
		base := i * 5
		placeholders = append(placeholders,
			fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, item.OrderID, item.ProductID, item.ProductName, item.Price.InexactFloat64(), item.Quantity)
	}

	query := `
		INSERT INTO order_items (order_id, product_id, product_name, price, quantity)
		VALUES ` + strings.Join(placeholders, ", ") + `
		RETURNING id::text, order_id::text, product_id, product_name, price, quantity
	`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}
	defer rows.Close()

	created := []domain.OrderItem{}
	for rows.Next() {
		var (
			item  domain.OrderItem
			price float64
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Price = decimal.NewFromFloat(price)
		created = append(created, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	return created, nil
}

// ListByEmail retrieves all orders placed with the given email, newest first
func (r *orderRepository) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	query := `
		SELECT id::text, nombre, apellidos, email, telefono, direccion, distrito, ciudad, departamento, codigo_postal, notas, total, created_at
		FROM orders
		WHERE email = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var (
			order domain.Order
			total float64
		)
		err := rows.Scan(
			&order.ID,
			&order.Nombre,
			&order.Apellidos,
			&order.Email,
			&order.Telefono,
			&order.Direccion,
			&order.Distrito,
			&order.Ciudad,
			&order.Departamento,
			&order.CodigoPostal,
			&order.Notas,
			&total,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.Total = decimal.NewFromFloat(total)
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
