package transport

import (
	"net/http"
	"strings"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/middleware"
	"calzado-imperial/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductResponse wraps a single product with the source that served it
type ProductResponse struct {
	Product domain.Product       `json:"product"`
	Source  domain.CatalogSource `json:"source"`
}

// ProductHandler handles HTTP requests for catalog reads
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured", h.ListFeatured)
		r.Get("/search", h.Search)
		r.Get("/category/{category}", h.ListByCategory)
		r.Get("/{id}", h.GetProduct)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.GetProducts(r.Context()))
}

func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.GetFeaturedProducts(r.Context()))
}

// Search matches ?q= against name, brand and description
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "El parámetro de búsqueda es obligatorio")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.SearchProducts(r.Context(), query))
}

func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.GetProductsByCategory(r.Context(), category))
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, source := h.catalog.GetProductByID(r.Context(), id)
	if product == nil {
		h.logger.Debug("Product not found", zap.String("product_id", id))
		middleware.RespondWithError(w, http.StatusNotFound, "Producto no encontrado")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{Product: *product, Source: source})
}
