package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCartSlotEmpty = errors.New("cart slot is empty")
)

// CartSlotKeyPrefix namespaces cart slots in the key-value store
const CartSlotKeyPrefix = "sneakerstore_cart"

// CartSlotRepository stores one serialized cart per cart ID
type CartSlotRepository interface {
	Load(ctx context.Context, cartID string) ([]byte, error)
	Store(ctx context.Context, cartID string, data []byte) error
	Remove(ctx context.Context, cartID string) error
}

type redisCartSlotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartSlotRepository creates a CartSlotRepository backed by Redis.
// A ttl of zero keeps slots forever.
func NewRedisCartSlotRepository(client *redis.Client, ttl time.Duration) CartSlotRepository {
	return &redisCartSlotRepository{client: client, ttl: ttl}
}

func slotKey(cartID string) string {
	return fmt.Sprintf("%s:%s", CartSlotKeyPrefix, cartID)
}

// Load returns the raw slot contents or ErrCartSlotEmpty
func (r *redisCartSlotRepository) Load(ctx context.Context, cartID string) ([]byte, error) {
	data, err := r.client.Get(ctx, slotKey(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartSlotEmpty
		}
		return nil, fmt.Errorf("failed to load cart slot: %w", err)
	}
	return data, nil
}

// Store overwrites the slot and refreshes its expiry
func (r *redisCartSlotRepository) Store(ctx context.Context, cartID string, data []byte) error {
	if err := r.client.Set(ctx, slotKey(cartID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart slot: %w", err)
	}
	return nil
}

// Remove deletes the slot
func (r *redisCartSlotRepository) Remove(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, slotKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to remove cart slot: %w", err)
	}
	return nil
}

type memoryCartSlotRepository struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryCartSlotRepository creates an in-process CartSlotRepository.
// Slots do not survive a restart.
func NewMemoryCartSlotRepository() CartSlotRepository {
	return &memoryCartSlotRepository{slots: make(map[string][]byte)}
}

func (r *memoryCartSlotRepository) Load(ctx context.Context, cartID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.slots[cartID]
	if !ok {
		return nil, ErrCartSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (r *memoryCartSlotRepository) Store(ctx context.Context, cartID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[cartID] = append([]byte(nil), data...)
	return nil
}

func (r *memoryCartSlotRepository) Remove(ctx context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, cartID)
	return nil
}
