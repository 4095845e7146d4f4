package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calzado-imperial/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// DBPool matches the methods from *pgxpool.Pool that the repositories use.
// This allows the store to be mocked in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// DefaultLookupConcurrency bounds the size/color lookups in flight at once
const DefaultLookupConcurrency = 8

// ProductRepository defines the interface for product data access.
// Every read resolves sizes and colors through the join tables.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

type productRepository struct {
	db                DBPool
	lookupConcurrency int
}

// ProductRepositoryOption configures a ProductRepository
type ProductRepositoryOption func(*productRepository)

// WithLookupConcurrency sets how many size/color queries may run at once.
// Values below 1 are ignored.
func WithLookupConcurrency(n int) ProductRepositoryOption {
	return func(r *productRepository) {
		if n > 0 {
			r.lookupConcurrency = n
		}
	}
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBPool, opts ...ProductRepositoryOption) ProductRepository {
	r := &productRepository{db: db, lookupConcurrency: DefaultLookupConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const productColumns = `id, name, brand, price, original_price, image, images, description, category, sizes, colors, stock, rating, reviews, featured`

const (
	selectSizesQuery = `
		SELECT s.value
		FROM product_sizes ps
		JOIN sizes s ON s.id = ps.size_id
		WHERE ps.product_id = $1
		ORDER BY s.value ASC
	`
	selectColorsQuery = `
		SELECT c.name
		FROM product_colors pc
		JOIN colors c ON c.id = pc.color_id
		WHERE pc.product_id = $1
		ORDER BY c.name ASC
	`
)

// List retrieves all products ordered by name
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name ASC`

	products, err := r.queryProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`

	row, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	products, err := r.resolveAttributes(ctx, []productRow{row})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product attributes: %w", err)
	}
	return &products[0], nil
}

// ListFeatured retrieves featured products, newest first
func (r *productRepository) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE featured = TRUE ORDER BY created_at DESC`

	products, err := r.queryProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// Search matches the query case-insensitively against name, brand and description
func (r *productRepository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	searchPattern := "%" + escapeLike(query) + "%"

	sql := `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE $1 OR brand ILIKE $1 OR description ILIKE $1
		ORDER BY name ASC`

	products, err := r.queryProducts(ctx, sql, searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// ListByCategory retrieves the products with the given category label, newest first
func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC`

	products, err := r.queryProducts(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := []productRow{}
	for rows.Next() {
		row, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return r.resolveAttributes(ctx, raw)
}

// resolveAttributes looks up sizes and colors for every row in one wave of
// concurrent queries. Inline arrays on the row are used when the join tables
// have nothing for a product.
func (r *productRepository) resolveAttributes(ctx context.Context, rows []productRow) ([]domain.Product, error) {
	sizes := make([][]string, len(rows))
	colors := make([][]string, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.lookupConcurrency)

	for i, row := range rows {
		g.Go(func() error {
			values, err := r.lookupValues(gctx, selectSizesQuery, row.ID)
			if err != nil {
				return fmt.Errorf("failed to load sizes for product %s: %w", row.ID, err)
			}
			sizes[i] = values
			return nil
		})
		g.Go(func() error {
			values, err := r.lookupValues(gctx, selectColorsQuery, row.ID)
			if err != nil {
				return fmt.Errorf("failed to load colors for product %s: %w", row.ID, err)
			}
			colors[i] = values
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		if len(sizes[i]) > 0 {
			row.Sizes = sizes[i]
		}
		if len(colors[i]) > 0 {
			row.Colors = colors[i]
		}
		products = append(products, row.toDomain())
	}
	return products, nil
}

func (r *productRepository) lookupValues(ctx context.Context, query, productID string) ([]string, error) {
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// productRow mirrors the snake_case products table, nullable columns included
type productRow struct {
	ID            string
	Name          string
	Brand         string
	Price         float64
	OriginalPrice *float64
	Image         string
	Images        []string
	Description   *string
	Category      string
	Sizes         []string
	Colors        []string
	Stock         int
	Rating        *float64
	Reviews       *int
	Featured      *bool
}

func scanProduct(row pgx.Row) (productRow, error) {
	var p productRow
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Price,
		&p.OriginalPrice,
		&p.Image,
		&p.Images,
		&p.Description,
		&p.Category,
		&p.Sizes,
		&p.Colors,
		&p.Stock,
		&p.Rating,
		&p.Reviews,
		&p.Featured,
	)
	return p, err
}

// toDomain maps a raw row into the canonical product shape. A zero original
// price or rating is treated as absent.
func (p productRow) toDomain() domain.Product {
	product := domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       decimal.NewFromFloat(p.Price),
		Image:       p.Image,
		Images:      p.Images,
		Category:    p.Category,
		Sizes:       nonNil(p.Sizes),
		Colors:      nonNil(p.Colors),
		Stock:       max(0, p.Stock),
		Description: "",
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.OriginalPrice != nil && *p.OriginalPrice != 0 {
		op := decimal.NewFromFloat(*p.OriginalPrice)
		product.OriginalPrice = &op
	}
	if p.Rating != nil && *p.Rating != 0 {
		rating := *p.Rating
		product.Rating = &rating
	}
	reviews := 0
	if p.Reviews != nil {
		reviews = *p.Reviews
	}
	product.Reviews = &reviews
	if p.Featured != nil {
		product.Featured = *p.Featured
	}
	return product
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
