package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/middleware"
	"calzado-imperial/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderCreatedResponse is returned after a successful checkout
type OrderCreatedResponse struct {
	Success bool               `json:"success"`
	Order   domain.Order       `json:"order"`
	Items   []domain.OrderItem `json:"items"`
	Partial bool               `json:"partial,omitempty"`
}

// OrdersResponse lists a shopper's orders
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// OrderHandler handles HTTP requests for checkout
type OrderHandler struct {
	orders service.OrderService
	carts  service.CartService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, carts service.CartService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		carts:  carts,
		logger: logger,
	}
}

// RegisterRoutes registers all order routes. checkoutMiddleware wraps only
// order creation.
func (h *OrderHandler) RegisterRoutes(r chi.Router, checkoutMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(checkoutMiddleware...).Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
	})
}

// checkoutPayload keeps the contact and shipping sections raw so each field
// is decoded on its own and a wrongly typed value fails only that field
type checkoutPayload struct {
	PersonalInfo    map[string]json.RawMessage `json:"personalInfo"`
	ShippingAddress map[string]json.RawMessage `json:"shippingAddress"`
	Notas           json.RawMessage            `json:"notas,omitempty"`
	Cart            *domain.Cart               `json:"cart"`
}

// stringField reads a JSON string. Missing, null and non-string values read
// as empty; ok is false only for a present value of another type.
func stringField(raw json.RawMessage) (value string, ok bool) {
	if len(raw) == 0 {
		return "", true
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	if s == nil {
		return "", true
	}
	return *s, true
}

// orderRequest builds the domain request. Required fields with the wrong type
// are left empty and reported by validation; optional ones are reported here.
func (p checkoutPayload) orderRequest() (domain.OrderRequest, []middleware.ValidationError) {
	var typeErrors []middleware.ValidationError
	field := func(section map[string]json.RawMessage, name string) string {
		v, _ := stringField(section[name])
		return v
	}
	optional := func(raw json.RawMessage, name string) string {
		v, ok := stringField(raw)
		if !ok {
			typeErrors = append(typeErrors, middleware.ValidationError{Field: name, Message: middleware.FieldMessage(name)})
		}
		return v
	}

	req := domain.OrderRequest{Cart: p.Cart}
	if p.PersonalInfo != nil {
		req.PersonalInfo = &domain.PersonalInfo{
			Nombre:    field(p.PersonalInfo, "nombre"),
			Apellidos: field(p.PersonalInfo, "apellidos"),
			Email:     field(p.PersonalInfo, "email"),
			Telefono:  field(p.PersonalInfo, "telefono"),
		}
	}
	if p.ShippingAddress != nil {
		req.ShippingAddress = &domain.ShippingAddress{
			Direccion:    field(p.ShippingAddress, "direccion"),
			Distrito:     field(p.ShippingAddress, "distrito"),
			Ciudad:       field(p.ShippingAddress, "ciudad"),
			Departamento: field(p.ShippingAddress, "departamento"),
			CodigoPostal: optional(p.ShippingAddress["codigoPostal"], "codigoPostal"),
		}
	}
	req.Notas = optional(p.Notas, "notas")
	return req, typeErrors
}

// validateOrder reports every failing field of the contact and shipping data
func validateOrder(req domain.OrderRequest) []middleware.ValidationError {
	var errs []middleware.ValidationError
	errs = append(errs, middleware.FormatValidationErrors(middleware.ValidateRequest(req.PersonalInfo))...)
	errs = append(errs, middleware.FormatValidationErrors(middleware.ValidateRequest(req.ShippingAddress))...)
	return errs
}

// CreateOrder handles checkout
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Debug("Order payload could not be decoded", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	req, typeErrors := payload.orderRequest()

	if req.PersonalInfo == nil || req.ShippingAddress == nil || req.Cart == nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Datos incompletos")
		return
	}
	if len(req.Cart.Items) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "El carrito está vacío")
		return
	}

	if validationErrors := append(validateOrder(req), typeErrors...); len(validationErrors) > 0 {
		h.logger.Debug("Order validation failed", zap.Int("errors", len(validationErrors)))
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	submission, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		h.logger.Error("Order creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Error al crear el pedido")
		return
	}

	if cartID := CartCookieID(r); cartID != "" {
		h.carts.ClearCart(r.Context(), cartID)
	}

	middleware.RespondWithJSON(w, http.StatusCreated, OrderCreatedResponse{
		Success: true,
		Order:   submission.Order,
		Items:   submission.Items,
		Partial: submission.Partial,
	})
}

// ListOrders returns the orders placed with ?email=, newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "El parámetro email es obligatorio")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrdersResponse{Orders: h.orders.GetOrdersByEmail(r.Context(), email)})
}
