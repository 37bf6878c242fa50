// internal/state/cart.go
package state

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/healthy-eats/storefront/internal/domain/cart"
	"github.com/sirupsen/logrus"
)

// CartStore mirrors the server session cart. Every action is one backend
// call whose response replaces the cart wholesale; the store never computes
// cart contents or totals itself.
type CartStore struct {
	api    CartAPI
	logger logrus.FieldLogger

	// issued numbers requests; applied is the newest response kept
	issued uint64

	mu      sync.RWMutex
	cart    *cart.Cart
	applied uint64

	listeners listeners[*cart.Cart]
}

// NewCartStore creates an empty (absent) cart store
func NewCartStore(api CartAPI, logger logrus.FieldLogger) *CartStore {
	return &CartStore{
		api:    api,
		logger: logger,
	}
}

// Refresh reloads the cart from the server
func (s *CartStore) Refresh(ctx context.Context) error {
	return s.apply(ctx, "refresh", s.api.GetCart)
}

// Add increments a line by deltaQty, creating it if needed. A non-positive
// delta is treated as the default of 1.
func (s *CartStore) Add(ctx context.Context, productID int64, deltaQty int) error {
	if deltaQty < 1 {
		deltaQty = 1
	}
	return s.apply(ctx, "add", func(ctx context.Context) (*cart.Cart, error) {
		return s.api.AddCartItem(ctx, productID, deltaQty)
	})
}

// SetQuantity sets a line to an exact quantity. Negative values are clamped
// to 0 before sending; 0 lets the server drop the line.
func (s *CartStore) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	quantity = cart.ClampQuantity(quantity)
	return s.apply(ctx, "set_quantity", func(ctx context.Context) (*cart.Cart, error) {
		return s.api.SetCartItemQuantity(ctx, productID, quantity)
	})
}

// Remove deletes a line outright
func (s *CartStore) Remove(ctx context.Context, productID int64) error {
	return s.apply(ctx, "remove", func(ctx context.Context) (*cart.Cart, error) {
		return s.api.RemoveCartItem(ctx, productID)
	})
}

// Clear empties the cart
func (s *CartStore) Clear(ctx context.Context) error {
	return s.apply(ctx, "clear", s.api.ClearCart)
}

// Cart returns a copy of the current cart, nil if never loaded
func (s *CartStore) Cart() *cart.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// ItemsCount is the sum of all line quantities
func (s *CartStore) ItemsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemsCount()
}

func (s *CartStore) issuedCount() uint64 {
	return atomic.LoadUint64(&s.issued)
}

// Subscribe registers fn for every applied cart snapshot
func (s *CartStore) Subscribe(fn func(*cart.Cart)) func() {
	return s.listeners.subscribe(fn)
}

// apply runs one backend call and installs its result unless a response to
// a later request has already been applied. Errors leave the cart untouched.
func (s *CartStore) apply(ctx context.Context, action string, call func(context.Context) (*cart.Cart, error)) error {
	token := atomic.AddUint64(&s.issued, 1)

	next, err := call(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if token < s.applied {
		s.mu.Unlock()
		s.logger.WithFields(logrus.Fields{
			"action": action,
			"token":  token,
		}).Debug("Discarding out-of-order cart response")
		return nil
	}
	s.applied = token
	s.cart = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.listeners.notify(snapshot)
	return nil
}
