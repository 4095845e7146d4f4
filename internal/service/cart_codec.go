package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"calzado-imperial/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	errSlotCorrupt   = errors.New("cart slot is not valid JSON")
	errSlotMalformed = errors.New("cart slot is not a cart")
)

// decodedSlot is what survived reading a stored cart
type decodedSlot struct {
	items    []domain.CartItem
	rawCount int
	total    *decimal.Decimal
}

// decodeSlot reads a stored cart without trusting its shape. Items that are
// not valid lines are dropped and counted in rawCount only.
func decodeSlot(data []byte) (decodedSlot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return decodedSlot{}, errSlotCorrupt
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return decodedSlot{}, errSlotCorrupt
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return decodedSlot{}, errSlotMalformed
	}
	rawItems, ok := fields["items"].([]any)
	if !ok {
		return decodedSlot{}, errSlotMalformed
	}

	slot := decodedSlot{
		items:    make([]domain.CartItem, 0, len(rawItems)),
		rawCount: len(rawItems),
	}
	for _, raw := range rawItems {
		if item, ok := decodeItem(raw); ok {
			slot.items = append(slot.items, item)
		}
	}
	if total, ok := asDecimal(fields["total"]); ok {
		slot.total = &total
	}
	return slot, nil
}

func decodeItem(raw any) (domain.CartItem, bool) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return domain.CartItem{}, false
	}
	productFields, ok := fields["product"].(map[string]any)
	if !ok {
		return domain.CartItem{}, false
	}

	item := domain.CartItem{
		Product: decodeProduct(productFields),
		Size:    asString(fields["size"]),
		Color:   asString(fields["color"]),
	}

	// quantity must be a JSON number here, a numeric string is not enough
	n, ok := fields["quantity"].(json.Number)
	if !ok {
		return domain.CartItem{}, false
	}
	quantity, err := n.Int64()
	if err != nil {
		return domain.CartItem{}, false
	}
	item.Quantity = int(quantity)

	if !validLine(item) {
		return domain.CartItem{}, false
	}
	return item, true
}

// decodeProduct coerces loosely typed product fields into the canonical shape
func decodeProduct(fields map[string]any) domain.Product {
	product := domain.Product{
		ID:          asString(fields["id"]),
		Name:        asString(fields["name"]),
		Brand:       asString(fields["brand"]),
		Image:       asString(fields["image"]),
		Description: asString(fields["description"]),
		Category:    asString(fields["category"]),
		Images:      asStrings(fields["images"]),
		Sizes:       asStrings(fields["sizes"]),
		Colors:      asStrings(fields["colors"]),
		Featured:    fields["featured"] == true,
	}

	if price, ok := asDecimal(fields["price"]); ok {
		product.Price = price
	}
	if original, ok := asDecimal(fields["originalPrice"]); ok {
		product.OriginalPrice = &original
	}
	if stock, ok := asDecimal(fields["stock"]); ok {
		product.Stock = int(stock.IntPart())
	}
	if rating, ok := asDecimal(fields["rating"]); ok {
		r := rating.InexactFloat64()
		product.Rating = &r
	}
	if reviews, ok := asDecimal(fields["reviews"]); ok {
		r := int(reviews.IntPart())
		product.Reviews = &r
	}

	return canonicalProduct(product)
}

// canonicalProduct copies the product with non-nil size and color lists and
// no zero-valued optional price
func canonicalProduct(p domain.Product) domain.Product {
	p.Sizes = append([]string{}, p.Sizes...)
	p.Colors = append([]string{}, p.Colors...)
	if len(p.Images) == 0 {
		p.Images = nil
	} else {
		p.Images = append([]string(nil), p.Images...)
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsZero() {
		p.OriginalPrice = nil
	}
	return p
}

// validLine is the one rule every stored and persisted line must pass
func validLine(item domain.CartItem) bool {
	return item.Product.ID != "" && item.Quantity > 0
}

func validLines(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if validLine(item) {
			out = append(out, item)
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s := asString(entry); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asDecimal accepts JSON numbers and numeric strings
func asDecimal(v any) (decimal.Decimal, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = t
	default:
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
