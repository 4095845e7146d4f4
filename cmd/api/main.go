package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"calzado-imperial/internal/config"
	"calzado-imperial/internal/database"
	"calzado-imperial/internal/events"
	"calzado-imperial/internal/logger"
	"calzado-imperial/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// connect opens whichever backing services are configured. A store or cache
// that cannot be reached is logged and left out so the storefront still
// serves the static catalog.
func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) server.Dependencies {
	var deps server.Dependencies

	if cfg.Database.Configured() {
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			log.Warn("Database unavailable, serving static catalog", zap.Error(err))
		} else {
			deps.DB = pool
			if cfg.Database.RunMigrations {
				if err := database.RunMigrations(pool, log); err != nil {
					log.Fatal("Failed to run migrations", zap.Error(err))
				}
			}
		}
	} else {
		log.Info("Database not configured, serving static catalog")
	}

	if cfg.Redis.Configured() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, keeping carts in memory", zap.Error(err))
			_ = client.Close()
		} else {
			deps.Redis = client
		}
	}

	if cfg.AMQP.URL != "" {
		conn, err := events.Dial(cfg.AMQP.URL)
		if err != nil {
			log.Warn("Broker unavailable, order events disabled", zap.Error(err))
			return deps
		}
		publisher, err := events.NewPublisher(conn)
		if err != nil {
			log.Warn("Failed to create order event publisher", zap.Error(err))
			_ = conn.Close()
			return deps
		}
		deps.AMQP = conn
		deps.Publisher = publisher
	}

	return deps
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	deps := connect(context.Background(), cfg, log)

	// Create server
	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
