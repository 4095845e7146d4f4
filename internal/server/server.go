package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"calzado-imperial/internal/config"
	"calzado-imperial/internal/events"
	custommiddleware "calzado-imperial/internal/middleware"
	"calzado-imperial/internal/repository"
	"calzado-imperial/internal/service"
	"calzado-imperial/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Dependencies are the optional backing services. Any of them may be nil:
// without a database the catalog is static and checkout is unavailable,
// without Redis carts live in process memory and checkout is not rate limited,
// without a publisher no order events are sent.
type Dependencies struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	AMQP      *amqp.Connection
	Publisher *events.Publisher
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Carts    string `json:"carts"`
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	server.Handler = server.routes()

	return server
}

func (s *Server) routes() http.Handler {
	cfg := s.config
	logger := s.logger

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", s.health)

	// Initialize repositories
	var (
		productRepo repository.ProductRepository
		orderRepo   repository.OrderRepository
		slots       repository.CartSlotRepository
	)
	if s.deps.DB != nil {
		productRepo = repository.NewProductRepository(s.deps.DB,
			repository.WithLookupConcurrency(cfg.Catalog.LookupConcurrency))
		orderRepo = repository.NewOrderRepository(s.deps.DB)
	}
	if s.deps.Redis != nil {
		slots = repository.NewRedisCartSlotRepository(s.deps.Redis, cfg.Cart.TTL)
	} else {
		slots = repository.NewMemoryCartSlotRepository()
	}

	var publisher service.OrderEventPublisher
	if s.deps.Publisher != nil {
		publisher = s.deps.Publisher
	}

	// Initialize services
	notifier := service.NewCartNotifier(logger)
	notifier.Subscribe(func(ctx context.Context, cartID string, count int) {
		logger.Debug("cart updated", zap.String("cart_id", cartID), zap.Int("item_count", count))
	})

	catalogService := service.NewCatalogService(productRepo, service.NewProductCache(cfg.Catalog.CacheTTL, nil), logger)
	cartService := service.NewCartService(slots, notifier, logger)
	orderService := service.NewOrderService(orderRepo, publisher, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, catalogService, cfg.Cart.TTL, logger)
	orderHandler := transport.NewOrderHandler(orderService, cartService, logger)

	// Checkout is rate limited per client address when Redis is available
	var checkoutMiddleware []func(http.Handler) http.Handler
	if s.deps.Redis != nil && cfg.Orders.RateLimit > 0 {
		checkoutMiddleware = append(checkoutMiddleware, custommiddleware.RateLimitMiddleware(
			s.deps.Redis,
			custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.Orders.RateLimit,
				Window:            cfg.Orders.RateWindow,
				KeyPrefix:         "ratelimit:orders",
			},
			logger,
		))
	}

	// Register routes
	productHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router, checkoutMiddleware...)

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "unconfigured", Carts: "memory"}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if s.deps.DB != nil {
		resp.Database = "up"
		if err := s.deps.DB.Ping(ctx); err != nil {
			s.logger.Warn("database health check failed", zap.Error(err))
			resp.Status, resp.Database = "degraded", "down"
			status = http.StatusServiceUnavailable
		}
	}

	if s.deps.Redis != nil {
		resp.Carts = "redis"
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn("redis health check failed", zap.Error(err))
			resp.Status, resp.Carts = "degraded", "down"
			status = http.StatusServiceUnavailable
		}
	}

	custommiddleware.RespondWithJSON(w, status, resp)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Close(); err != nil {
			s.logger.Error("Failed to close event publisher", zap.Error(err))
		}
	}
	if s.deps.AMQP != nil {
		if err := s.deps.AMQP.Close(); err != nil {
			s.logger.Error("Failed to close broker connection", zap.Error(err))
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.deps.DB != nil {
		s.deps.DB.Close()
	}

	_ = s.logger.Sync()
	return nil
}
