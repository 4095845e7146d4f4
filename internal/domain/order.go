package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PersonalInfo holds the buyer's contact details
type PersonalInfo struct {
	Nombre    string `json:"nombre" validate:"trimmed_min=2"`
	Apellidos string `json:"apellidos" validate:"trimmed_min=2"`
	Email     string `json:"email" validate:"simple_email"`
	Telefono  string `json:"telefono" validate:"phone"`
}

// ShippingAddress holds the delivery address
type ShippingAddress struct {
	Direccion    string `json:"direccion" validate:"trimmed_min=5"`
	Distrito     string `json:"distrito" validate:"trimmed_min=2"`
	Ciudad       string `json:"ciudad" validate:"trimmed_min=2"`
	Departamento string `json:"departamento" validate:"trimmed_min=2"`
	CodigoPostal string `json:"codigoPostal,omitempty"`
}

// OrderRequest is the checkout payload
type OrderRequest struct {
	PersonalInfo    *PersonalInfo    `json:"personalInfo"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	Notas           string           `json:"notas,omitempty"`
	Cart            *Cart            `json:"cart"`
}

// Order is a submitted checkout. Total is copied from the cart at submission
// time; ID and CreatedAt are assigned by the store.
type Order struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	Apellidos    string          `json:"apellidos"`
	Email        string          `json:"email"`
	Telefono     string          `json:"telefono"`
	Direccion    string          `json:"direccion"`
	Distrito     string          `json:"distrito"`
	Ciudad       string          `json:"ciudad"`
	Departamento string          `json:"departamento"`
	CodigoPostal *string         `json:"codigo_postal,omitempty"`
	Notas        *string         `json:"notas,omitempty"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderItem is a snapshot of one cart line at submission time
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderSubmission is the outcome of a checkout. Partial is set when the order
// row was written but its items were not.
type OrderSubmission struct {
	Order   Order       `json:"order"`
	Items   []OrderItem `json:"items"`
	Partial bool        `json:"partial,omitempty"`
}

// NewOrder flattens a checkout payload into an order record
func NewOrder(req OrderRequest) Order {
	order := Order{}
	if req.PersonalInfo != nil {
		order.Nombre = req.PersonalInfo.Nombre
		order.Apellidos = req.PersonalInfo.Apellidos
		order.Email = req.PersonalInfo.Email
		order.Telefono = req.PersonalInfo.Telefono
	}
	if req.ShippingAddress != nil {
		order.Direccion = req.ShippingAddress.Direccion
		order.Distrito = req.ShippingAddress.Distrito
		order.Ciudad = req.ShippingAddress.Ciudad
		order.Departamento = req.ShippingAddress.Departamento
		if req.ShippingAddress.CodigoPostal != "" {
			cp := req.ShippingAddress.CodigoPostal
			order.CodigoPostal = &cp
		}
	}
	if req.Notas != "" {
		notas := req.Notas
		order.Notas = &notas
	}
	if req.Cart != nil {
		order.Total = req.Cart.Total
	}
	return order
}

// SnapshotItems builds one order item per cart line
func SnapshotItems(orderID string, cart Cart) []OrderItem {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, OrderItem{
			OrderID:     orderID,
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Price:       line.Product.Price,
			Quantity:    line.Quantity,
		})
	}
	return items
}
