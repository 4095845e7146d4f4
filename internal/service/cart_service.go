package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"calzado-imperial/internal/domain"
	"calzado-imperial/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrCartRejected = errors.New("cart has no valid items")
)

// totalTolerance bounds, exclusively, how far a supplied total may drift from
// the computed one and still be persisted as given
var totalTolerance = decimal.New(1, -2)

// CartService defines the interface for reading and mutating a stored cart.
// Operations never fail the caller: a missing or corrupt slot reads as an
// empty cart.
type CartService interface {
	GetCart(ctx context.Context, cartID string) domain.Cart
	SaveCart(ctx context.Context, cartID string, cart domain.Cart) error
	AddToCart(ctx context.Context, cartID string, product *domain.Product, quantity int, size, color string) domain.Cart
	RemoveFromCart(ctx context.Context, cartID string, key domain.LineKey) domain.Cart
	UpdateCartItemQuantity(ctx context.Context, cartID string, key domain.LineKey, quantity int) domain.Cart
	GetCartItemCount(ctx context.Context, cartID string) int
	ClearCart(ctx context.Context, cartID string) domain.Cart
}

type cartService struct {
	slots    repository.CartSlotRepository
	notifier *CartNotifier
	logger   *zap.Logger
}

// NewCartService creates a new instance of CartService.
// With a nil slot repository every read returns an empty cart and every
// write is dropped.
func NewCartService(slots repository.CartSlotRepository, notifier *CartNotifier, logger *zap.Logger) CartService {
	if notifier == nil {
		notifier = NewCartNotifier(logger)
	}
	return &cartService{
		slots:    slots,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *cartService) enabled(cartID string) bool {
	return s.slots != nil && cartID != ""
}

func (s *cartService) clearSlot(ctx context.Context, cartID string) {
	if err := s.slots.Remove(ctx, cartID); err != nil {
		s.logger.Error("failed to clear cart slot", zap.String("cart_id", cartID), zap.Error(err))
	}
}

func (s *cartService) writeSlot(ctx context.Context, cartID string, cart domain.Cart) ([]byte, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.slots.Store(ctx, cartID, data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetCart reads the stored cart. A corrupt slot is cleared, a partially
// invalid one is rewritten without the invalid lines.
func (s *cartService) GetCart(ctx context.Context, cartID string) domain.Cart {
	if !s.enabled(cartID) {
		return domain.NewCart()
	}

	data, err := s.slots.Load(ctx, cartID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartSlotEmpty) {
			s.logger.Error("failed to read cart slot", zap.String("cart_id", cartID), zap.Error(err))
		}
		return domain.NewCart()
	}

	slot, err := decodeSlot(data)
	switch {
	case errors.Is(err, errSlotCorrupt):
		s.logger.Warn("cart slot corrupted, clearing", zap.String("cart_id", cartID))
		s.clearSlot(ctx, cartID)
		return domain.NewCart()
	case err != nil:
		s.logger.Warn("cart slot has unexpected shape", zap.String("cart_id", cartID), zap.Error(err))
		return domain.NewCart()
	}

	if slot.rawCount > 0 && len(slot.items) == 0 {
		s.logger.Warn("cart slot has no valid items, clearing", zap.String("cart_id", cartID),
			zap.Int("dropped", slot.rawCount))
		s.clearSlot(ctx, cartID)
		return domain.NewCart()
	}

	computed := domain.CalculateTotal(slot.items)

	if len(slot.items) < slot.rawCount {
		cart := domain.Cart{Items: slot.items, Total: computed}
		s.logger.Warn("cart slot had invalid items, rewriting", zap.String("cart_id", cartID),
			zap.Int("dropped", slot.rawCount-len(slot.items)))
		if _, err := s.writeSlot(ctx, cartID, cart); err != nil {
			s.logger.Error("failed to rewrite cart slot", zap.String("cart_id", cartID), zap.Error(err))
		}
		return cart
	}

	total := computed
	if slot.total != nil && slot.total.Equal(computed) {
		total = *slot.total
	}
	return domain.Cart{Items: slot.items, Total: total}
}

// SaveCart persists the valid lines of cart. A non-empty cart whose lines are
// all invalid is refused with ErrCartRejected.
func (s *cartService) SaveCart(ctx context.Context, cartID string, cart domain.Cart) error {
	if !s.enabled(cartID) {
		return nil
	}

	items := validLines(cart.Items)
	if len(cart.Items) > 0 && len(items) == 0 {
		s.logger.Warn("refusing to save cart with no valid items", zap.String("cart_id", cartID),
			zap.Int("items", len(cart.Items)))
		return ErrCartRejected
	}

	computed := domain.CalculateTotal(items)
	total := computed
	if cart.Total.Sub(computed).Abs().LessThan(totalTolerance) {
		total = cart.Total
	}
	next := domain.Cart{Items: items, Total: total}

	written, err := s.writeSlot(ctx, cartID, next)
	if err != nil {
		s.logger.Error("failed to save cart", zap.String("cart_id", cartID), zap.Error(err))
		return err
	}

	stored, err := s.slots.Load(ctx, cartID)
	if err != nil || !bytes.Equal(stored, written) {
		s.logger.Error("cart slot does not match what was written", zap.String("cart_id", cartID), zap.Error(err))
	}

	s.notifier.Broadcast(ctx, cartID, next.ItemCount())
	return nil
}

// AddToCart merges a product line into the stored cart and returns the cart
// as re-read from the slot. An unusable product leaves the cart unchanged.
func (s *cartService) AddToCart(ctx context.Context, cartID string, product *domain.Product, quantity int, size, color string) domain.Cart {
	current := s.GetCart(ctx, cartID)

	if product == nil || product.ID == "" || product.Name == "" || !product.Price.IsPositive() {
		s.logger.Warn("rejected invalid product for cart", zap.String("cart_id", cartID))
		return current
	}
	if quantity <= 0 {
		quantity = 1
	}

	canonical := canonicalProduct(*product)
	if size == "" && len(canonical.Sizes) > 0 {
		size = canonical.Sizes[0]
	}
	if color == "" && len(canonical.Colors) > 0 {
		color = canonical.Colors[0]
	}

	next := current.Add(canonical, quantity, size, color)
	next.Items = validLines(next.Items)
	next.Total = domain.CalculateTotal(next.Items)

	if err := s.SaveCart(ctx, cartID, next); err != nil {
		return current
	}
	return s.GetCart(ctx, cartID)
}

func (s *cartService) RemoveFromCart(ctx context.Context, cartID string, key domain.LineKey) domain.Cart {
	next := s.GetCart(ctx, cartID).Remove(key)
	_ = s.SaveCart(ctx, cartID, next)
	return next
}

// UpdateCartItemQuantity sets the line to quantity; zero or below removes it
func (s *cartService) UpdateCartItemQuantity(ctx context.Context, cartID string, key domain.LineKey, quantity int) domain.Cart {
	next := s.GetCart(ctx, cartID).UpdateQuantity(key, quantity)
	_ = s.SaveCart(ctx, cartID, next)
	return next
}

// GetCartItemCount sums the quantities of the cart as currently stored
func (s *cartService) GetCartItemCount(ctx context.Context, cartID string) int {
	if !s.enabled(cartID) {
		return 0
	}
	return s.GetCart(ctx, cartID).ItemCount()
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) domain.Cart {
	empty := domain.NewCart()
	_ = s.SaveCart(ctx, cartID, empty)
	return empty
}
