package cart

import (
	"sync"

	"github.com/appetiteclub/apt"
)

// CartStateCache owns the in-memory carts of all active sessions. Each cart
// belongs to exactly one session; there are no cross-session writers. Carts
// live for the duration of the session and vanish on Remove or restart.
type CartStateCache struct {
	mu     sync.RWMutex
	carts  map[string]*Cart
	logger apt.Logger
}

func NewCartStateCache(logger apt.Logger) *CartStateCache {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &CartStateCache{
		carts:  make(map[string]*Cart),
		logger: logger,
	}
}

// Get returns the cart for a session id, if one exists.
func (c *CartStateCache) Get(sessionID string) (*Cart, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cart, ok := c.carts[sessionID]
	return cart, ok
}

// Ensure returns the session's cart, creating an empty one on first use.
func (c *CartStateCache) Ensure(sessionID string) *Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cart, ok := c.carts[sessionID]; ok {
		return cart
	}
	cart := NewCart()
	c.carts[sessionID] = cart
	c.logger.Debug("session cart created", "session_id", sessionID)
	return cart
}

// Remove drops the session's cart entirely.
func (c *CartStateCache) Remove(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, sessionID)
}

// Len reports the number of active session carts.
func (c *CartStateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.carts)
}
