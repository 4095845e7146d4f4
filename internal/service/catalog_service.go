package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	errEmptyCatalog = errors.New("catalog store returned no products")
)

// catalogReadTimeout bounds the shared full-list read
const catalogReadTimeout = 10 * time.Second

// CatalogService defines the interface for catalog reads. Every read
// succeeds: store failures fall back to the static products and the
// returned source says which one served the request.
type CatalogService interface {
	GetProducts(ctx context.Context) domain.Catalog
	GetProductByID(ctx context.Context, id string) (*domain.Product, domain.CatalogSource)
	GetFeaturedProducts(ctx context.Context) domain.Catalog
	SearchProducts(ctx context.Context, query string) domain.Catalog
	GetProductsByCategory(ctx context.Context, category string) domain.Catalog
}

type catalogService struct {
	productRepo repository.ProductRepository
	cache       *ProductCache
	refresh     singleflight.Group
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService.
// A nil repository means the store is unconfigured and only static
// products are served. A nil cache uses DefaultCatalogCacheTTL.
func NewCatalogService(productRepo repository.ProductRepository, cache *ProductCache, logger *zap.Logger) CatalogService {
	if cache == nil {
		cache = NewProductCache(DefaultCatalogCacheTTL, nil)
	}
	return &catalogService{
		productRepo: productRepo,
		cache:       cache,
		logger:      logger,
	}
}

func storeCatalog(products []domain.Product) domain.Catalog {
	return domain.Catalog{Products: products, Source: domain.SourceStore}
}

func staticCatalog(products []domain.Product) domain.Catalog {
	return domain.Catalog{Products: products, Source: domain.SourceStatic}
}

func (s *catalogService) fallback(operation string, err error) {
	s.logger.Warn("catalog store unavailable, serving static products",
		zap.String("operation", operation),
		zap.Error(err),
	)
}

// GetProducts returns the full catalog, served from the cache while fresh.
// Concurrent refreshes share one store read.
func (s *catalogService) GetProducts(ctx context.Context) domain.Catalog {
	if s.productRepo == nil {
		return staticCatalog(StaticProducts())
	}

	if products, ok := s.cache.Get(); ok {
		return storeCatalog(products)
	}

	v, err, _ := s.refresh.Do("products", func() (any, error) {
		// The shared read outlives whichever caller started it
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogReadTimeout)
		defer cancel()

		products, err := s.productRepo.List(readCtx)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			return nil, errEmptyCatalog
		}
		s.cache.Set(products)
		return products, nil
	})
	if err != nil {
		s.fallback("list", err)
		return staticCatalog(StaticProducts())
	}

	return storeCatalog(slices.Clone(v.([]domain.Product)))
}

// GetProductByID returns nil when the product is in neither the store nor
// the static set
func (s *catalogService) GetProductByID(ctx context.Context, id string) (*domain.Product, domain.CatalogSource) {
	if s.productRepo == nil {
		return staticByID(id), domain.SourceStatic
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err == nil {
		return product, domain.SourceStore
	}

	if errors.Is(err, repository.ErrProductNotFound) {
		s.logger.Debug("product not in store, checking static products", zap.String("product_id", id))
	} else {
		s.fallback("find_by_id", err)
	}
	return staticByID(id), domain.SourceStatic
}

func (s *catalogService) GetFeaturedProducts(ctx context.Context) domain.Catalog {
	if s.productRepo == nil {
		return staticCatalog(staticFeatured())
	}

	products, err := s.productRepo.ListFeatured(ctx)
	if err != nil {
		s.fallback("featured", err)
		return staticCatalog(staticFeatured())
	}
	return storeCatalog(products)
}

// SearchProducts matches the query case-insensitively against name, brand
// and description
func (s *catalogService) SearchProducts(ctx context.Context, query string) domain.Catalog {
	if s.productRepo == nil {
		return staticCatalog(staticSearch(query))
	}

	products, err := s.productRepo.Search(ctx, query)
	if err != nil {
		s.fallback("search", err)
		return staticCatalog(staticSearch(query))
	}
	return storeCatalog(products)
}

func (s *catalogService) GetProductsByCategory(ctx context.Context, category string) domain.Catalog {
	if s.productRepo == nil {
		return staticCatalog(staticByCategory(category))
	}

	products, err := s.productRepo.ListByCategory(ctx, category)
	if err != nil {
		s.fallback("category", err)
		return staticCatalog(staticByCategory(category))
	}
	return storeCatalog(products)
}
