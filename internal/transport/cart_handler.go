package transport

import (
	"net/http"
	"strconv"
	"time"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/middleware"
	"calzado-imperial/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartCookieName carries the opaque cart ID
const CartCookieName = "sneakerstore_cart"

// CartCountHeader mirrors the item count on every cart response
const CartCountHeader = "X-Cart-Count"

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// UpdateItemRequest represents the quantity update payload. A quantity of
// zero or below removes the line.
type UpdateItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (req UpdateItemRequest) key() domain.LineKey {
	return domain.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
}

// CartResponse is the cart as shown to the shopper
type CartResponse struct {
	Items          []domain.CartItem `json:"items"`
	Total          decimal.Decimal   `json:"total"`
	FormattedTotal string            `json:"formattedTotal"`
	ItemCount      int               `json:"itemCount"`
}

// CountResponse represents the item count payload
type CountResponse struct {
	Count int `json:"count"`
}

func newCartResponse(cart domain.Cart) CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{
		Items:          items,
		Total:          cart.Total.Round(2),
		FormattedTotal: domain.FormatPrice(cart.Total),
		ItemCount:      cart.ItemCount(),
	}
}

// CartCookieID returns the cart ID carried by the request, if any
func CartCookieID(r *http.Request) string {
	cookie, err := r.Cookie(CartCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	carts     service.CartService
	catalog   service.CatalogService
	cookieTTL time.Duration
	logger    *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, catalog service.CatalogService, cookieTTL time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:     carts,
		catalog:   catalog,
		cookieTTL: cookieTTL,
		logger:    logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/count", h.GetCount)
		r.Post("/items", h.AddItem)
		r.Patch("/items", h.UpdateItem)
		r.Delete("/items", h.RemoveItem)
	})
}

// ensureCartID returns the request's cart ID, issuing a new cookie when the
// request has none
func (h *CartHandler) ensureCartID(w http.ResponseWriter, r *http.Request) string {
	if id := CartCookieID(r); id != "" {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, status int, cart domain.Cart) {
	w.Header().Set(CartCountHeader, strconv.Itoa(cart.ItemCount()))
	middleware.RespondWithJSON(w, status, newCartResponse(cart))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondWithCart(w, http.StatusOK, h.carts.GetCart(r.Context(), CartCookieID(r)))
}

func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	count := h.carts.GetCartItemCount(r.Context(), CartCookieID(r))
	w.Header().Set(CartCountHeader, strconv.Itoa(count))
	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{Count: count})
}

// AddItem resolves the product through the catalog and merges it into the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}

	product, _ := h.catalog.GetProductByID(r.Context(), req.ProductID)
	if product == nil {
		middleware.RespondWithError(w, http.StatusNotFound, "Producto no encontrado")
		return
	}

	cartID := h.ensureCartID(w, r)
	cart := h.carts.AddToCart(r.Context(), cartID, product, req.Quantity, req.Size, req.Color)
	h.respondWithCart(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}

	cart := h.carts.UpdateCartItemQuantity(r.Context(), CartCookieID(r), req.key(), req.Quantity)
	h.respondWithCart(w, http.StatusOK, cart)
}

// RemoveItem drops the line named by ?productId=&size=&color=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key := domain.LineKey{
		ProductID: query.Get("productId"),
		Size:      query.Get("size"),
		Color:     query.Get("color"),
	}
	if key.ProductID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "El parámetro productId es obligatorio")
		return
	}

	h.respondWithCart(w, http.StatusOK, h.carts.RemoveFromCart(r.Context(), CartCookieID(r), key))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.respondWithCart(w, http.StatusOK, h.carts.ClearCart(r.Context(), CartCookieID(r)))
}
