package domain

import (
	"github.com/shopspring/decimal"
)

// LineKey identifies a line item. Two entries for the same product with a
// different size or color are distinct lines.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// String renders the key as "{productId}-{size}-{color}". It is for display
// only; lines are always matched by struct equality.
func (k LineKey) String() string {
	return k.ProductID + "-" + k.Size + "-" + k.Color
}

// CartItem is one line of a cart
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
}

// Key returns the line identity of the item
func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.Product.ID, Size: i.Size, Color: i.Color}
}

// Subtotal returns price × quantity
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of line items plus a cached total.
// Total always equals the sum of the item subtotals after any mutation.
type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewCart returns an empty cart
func NewCart() Cart {
	return Cart{Items: []CartItem{}, Total: decimal.Zero}
}

// CalculateTotal sums price × quantity over items
func CalculateTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Add merges quantity into the line matching (product, size, color), or
// appends a new line when none matches. The receiver is not modified.
// No validation happens here: quantity may be any value.
func (c Cart) Add(product Product, quantity int, size, color string) Cart {
	key := LineKey{ProductID: product.ID, Size: size, Color: color}

	items := make([]CartItem, 0, len(c.Items)+1)
	merged := false
	for _, item := range c.Items {
		if !merged && item.Key() == key {
			item.Quantity += quantity
			merged = true
		}
		items = append(items, item)
	}

	if !merged {
		items = append(items, CartItem{
			Product:  product,
			Quantity: quantity,
			Size:     size,
			Color:    color,
		})
	}

	return Cart{Items: items, Total: CalculateTotal(items)}
}

// Remove drops the line with the given key. A missing key is a no-op.
func (c Cart) Remove(key LineKey) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Key() != key {
			items = append(items, item)
		}
	}
	return Cart{Items: items, Total: CalculateTotal(items)}
}

// UpdateQuantity sets the matching line to max(0, quantity). Every line left
// with a non-positive quantity, targeted or not, is dropped.
func (c Cart) UpdateQuantity(key LineKey, quantity int) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Key() == key {
			item.Quantity = max(0, quantity)
		}
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	return Cart{Items: items, Total: CalculateTotal(items)}
}

// ItemCount returns the sum of quantities across all lines
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
