package config

import (
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cart     CartConfig
	Catalog  CatalogConfig
	AMQP     AMQPConfig
	Orders   OrdersConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	SSLMode       string
	RunMigrations bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CartConfig struct {
	TTL time.Duration
}

type CatalogConfig struct {
	CacheTTL          time.Duration
	LookupConcurrency int
}

type AMQPConfig struct {
	URL string
}

type OrdersConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

// Configured reports whether a relational store was set up. Without one the
// catalog serves static products and checkout is unavailable.
func (c DatabaseConfig) Configured() bool {
	return c.Host != "" && c.Database != ""
}

// URL builds a postgres connection string
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

func (c RedisConfig) Configured() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_DATABASE", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_RUN_MIGRATIONS", true)
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CART_TTL_HOURS", 720)
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)
	v.SetDefault("CATALOG_LOOKUP_CONCURRENCY", 8)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("ORDER_RATE_LIMIT", 10)
	v.SetDefault("ORDER_RATE_WINDOW_SECONDS", 60)

	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Database:      v.GetString("DB_DATABASE"),
			SSLMode:       v.GetString("DB_SSLMODE"),
			RunMigrations: v.GetBool("DB_RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cart: CartConfig{
			TTL: time.Duration(v.GetInt("CART_TTL_HOURS")) * time.Hour,
		},
		Catalog: CatalogConfig{
			CacheTTL:          time.Duration(v.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second,
			LookupConcurrency: v.GetInt("CATALOG_LOOKUP_CONCURRENCY"),
		},
		AMQP: AMQPConfig{
			URL: v.GetString("AMQP_URL"),
		},
		Orders: OrdersConfig{
			RateLimit:  v.GetInt("ORDER_RATE_LIMIT"),
			RateWindow: time.Duration(v.GetInt("ORDER_RATE_WINDOW_SECONDS")) * time.Second,
		},
	}
}
