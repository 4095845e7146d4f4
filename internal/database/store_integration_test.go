package database_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"calzado-imperial/internal/config"
	"calzado-imperial/internal/database"
	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var testPool *pgxpool.Pool

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "sneakers"
		dbPwd  = "password"
		dbUser = "tienda"
	)

	ctx := context.Background()
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testPool, err = database.Open(ctx, config.DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort.Port(),
		User:     dbUser,
		Password: dbPwd,
		Database: dbName,
		SSLMode:  "disable",
	})
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(testPool, zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if testPool != nil {
		testPool.Close()
	}
	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
	os.Exit(code)
}

func requireStore(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres container not started in short mode")
	}
}

func insertProduct(t *testing.T, name, category string, featured bool, sizes, colors []string) string {
	t.Helper()
	ctx := context.Background()

	var id string
	err := testPool.QueryRow(ctx, `
		INSERT INTO products (name, brand, price, original_price, image, category, sizes, colors, stock, featured)
		VALUES ($1, 'Nike', 480, 590, '/img.jpg', $2, '{"99"}', '{"Inline"}', 10, $3)
		RETURNING id::text
	`, name, category, featured).Scan(&id)
	require.NoError(t, err)

	for _, size := range sizes {
		_, err := testPool.Exec(ctx, `
			WITH s AS (
				INSERT INTO sizes (value) VALUES ($2)
				ON CONFLICT (value) DO UPDATE SET value = EXCLUDED.value
				RETURNING id
			)
			INSERT INTO product_sizes (product_id, size_id) SELECT $1::uuid, id FROM s
		`, id, size)
		require.NoError(t, err)
	}
	for _, color := range colors {
		_, err := testPool.Exec(ctx, `
			WITH c AS (
				INSERT INTO colors (name) VALUES ($2)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id
			)
			INSERT INTO product_colors (product_id, color_id) SELECT $1::uuid, id FROM c
		`, id, color)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `DELETE FROM products WHERE id = $1::uuid`, id)
	})
	return id
}

func TestProductRepository_ResolvesJoinTablesOnEveryRead(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(testPool, repository.WithLookupConcurrency(2))

	joined := insertProduct(t, "Air Max 90", "Running", true, []string{"42", "40"}, []string{"Negro"})
	inline := insertProduct(t, "Cortez", "Running", false, nil, nil)

	product, err := repo.FindByID(ctx, joined)
	require.NoError(t, err)
	assert.Equal(t, []string{"40", "42"}, product.Sizes)
	assert.Equal(t, []string{"Negro"}, product.Colors)
	assert.True(t, decimal.NewFromInt(480).Equal(product.Price))
	require.NotNil(t, product.OriginalPrice)
	assert.True(t, decimal.NewFromInt(590).Equal(*product.OriginalPrice))

	featured, err := repo.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, []string{"40", "42"}, featured[0].Sizes, "featured reads resolve joins too")

	byCategory, err := repo.ListByCategory(ctx, "Running")
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	found, err := repo.FindByID(ctx, inline)
	require.NoError(t, err)
	assert.Equal(t, []string{"99"}, found.Sizes, "inline arrays are kept when joins are empty")

	results, err := repo.Search(ctx, "air max")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, joined, results[0].ID)

	_, err = repo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

// Feature: storefront-catalog, Property 9: Stored products read back unchanged
func TestProperty_StoredProductsReadBackUnchanged(t *testing.T) {
	requireStore(t)
	repo := repository.NewProductRepository(testPool)

	properties := gopter.NewProperties(nil)

	properties.Property("reading a stored product preserves its attributes", prop.ForAll(
		func(name string, description string, cents int64, stock int) bool {
			ctx := context.Background()

			var id string
			err := testPool.QueryRow(ctx, `
				INSERT INTO products (name, brand, price, description, category, sizes, colors, stock)
				VALUES ($1, 'Vans', $2, $3, 'Skate', '{"40","41"}', '{"Negro"}', $4)
				RETURNING id::text
			`, name, decimal.New(cents, -2).InexactFloat64(), description, stock).Scan(&id)
			if err != nil {
				t.Logf("FAIL: Failed to insert product: %v", err)
				return false
			}
			defer func() {
				_, _ = testPool.Exec(ctx, `DELETE FROM products WHERE id = $1::uuid`, id)
			}()

			retrieved, err := repo.FindByID(ctx, id)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if !retrieved.Price.Equal(decimal.New(cents, -2)) {
				t.Logf("FAIL: Price mismatch. Expected %s, got %s", decimal.New(cents, -2), retrieved.Price)
				return false
			}

			return retrieved.ID == id &&
				retrieved.Name == name &&
				retrieved.Description == description &&
				retrieved.Stock == stock &&
				retrieved.OriginalPrice == nil &&
				len(retrieved.Sizes) == 2 &&
				len(retrieved.Colors) == 1
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`),
		gen.Int64Range(1, 99999999),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestOrderRepository_SubmitAndList(t *testing.T) {
	requireStore(t)
	ctx := context.Background()
	repo := repository.NewOrderRepository(testPool)

	notas := "Tocar el timbre"
	order := &domain.Order{
		Nombre:       "Ana",
		Apellidos:    "Quispe",
		Email:        "ana.integration@example.pe",
		Telefono:     "987654321",
		Direccion:    "Av. Arequipa 123",
		Distrito:     "Miraflores",
		Ciudad:       "Lima",
		Departamento: "Lima",
		Notas:        &notas,
		Total:        decimal.RequireFromString("1240.50"),
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NotEmpty(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())

	items, err := repo.CreateItems(ctx, []domain.OrderItem{
		{OrderID: order.ID, ProductID: "1", ProductName: "Air Max 90", Price: decimal.NewFromInt(480), Quantity: 2},
		{OrderID: order.ID, ProductID: "8", ProductName: "Stan Smith", Price: decimal.RequireFromString("280.50"), Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, order.ID, item.OrderID)
	}

	orders, err := repo.ListByEmail(ctx, order.Email)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.True(t, order.Total.Equal(orders[0].Total))
	require.NotNil(t, orders[0].Notas)
	assert.Equal(t, notas, *orders[0].Notas)
	assert.Nil(t, orders[0].CodigoPostal)

	_, err = repo.CreateItems(ctx, []domain.OrderItem{
		{OrderID: order.ID, ProductID: "1", ProductName: "Air Max 90", Price: decimal.NewFromInt(480), Quantity: 0},
	})
	assert.Error(t, err, "quantity check rejects empty lines")
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	requireStore(t)
	require.NoError(t, database.RunMigrations(testPool, zap.NewNop()))
}
