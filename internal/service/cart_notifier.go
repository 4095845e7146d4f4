package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CartListener is called after a cart has been saved, with the item count
// that was written
type CartListener func(ctx context.Context, cartID string, itemCount int)

// CartNotifier fans out cart-updated notifications to in-process listeners.
// Listeners run synchronously in the caller's goroutine.
type CartNotifier struct {
	mu        sync.RWMutex
	listeners []CartListener
	logger    *zap.Logger
}

func NewCartNotifier(logger *zap.Logger) *CartNotifier {
	return &CartNotifier{logger: logger}
}

// Subscribe registers a listener for every subsequent save
func (n *CartNotifier) Subscribe(listener CartListener) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.listeners = append(n.listeners, listener)
}

// Broadcast notifies every listener that the cart changed
func (n *CartNotifier) Broadcast(ctx context.Context, cartID string, itemCount int) {
	n.mu.RLock()
	listeners := n.listeners
	n.mu.RUnlock()

	n.logger.Debug("cart updated", zap.String("cart_id", cartID), zap.Int("listener_count", len(listeners)))

	for _, listener := range listeners {
		listener(ctx, cartID, itemCount)
	}
}
