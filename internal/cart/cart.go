package cart

import (
	"sync"

	"github.com/appetiteclub/storefront/internal/catalog"
	"github.com/google/uuid"
)

// Line is one catalog item plus a quantity, held only in session memory.
type Line struct {
	Item     catalog.MenuItem `json:"item"`
	Quantity int              `json:"quantity"`
}

// Cart holds the shopping cart for one session. Lines keep insertion order
// and are unique per item id. Invariant: a stored line always has quantity
// >= 1; a line driven to zero or below is removed, never kept.
type Cart struct {
	mu    sync.Mutex
	lines []*Line
	index map[uuid.UUID]*Line
}

func NewCart() *Cart {
	return &Cart{
		index: make(map[uuid.UUID]*Line),
	}
}

// AddItem merges quantity into the existing line for the item id, or
// appends a new line. Non-positive quantities are a no-op; callers reject
// them before reaching the cart.
func (c *Cart) AddItem(item catalog.MenuItem, quantity int) {
	if quantity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.index[item.ID]; ok {
		line.Quantity += quantity
		return
	}

	line := &Line{Item: item, Quantity: quantity}
	c.lines = append(c.lines, line)
	c.index[item.ID] = line
}

// SetQuantity replaces the quantity of the line for itemID. A quantity <= 0
// removes the line entirely. An absent item id is a no-op, not an error.
func (c *Cart) SetQuantity(itemID uuid.UUID, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.index[itemID]; ok {
		line.Quantity = quantity
	}
}

// RemoveItem deletes the line for itemID if present; no-op otherwise.
func (c *Cart) RemoveItem(itemID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[itemID]; !ok {
		return
	}
	delete(c.index, itemID)
	for i, line := range c.lines {
		if line.Item.ID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.index = make(map[uuid.UUID]*Line)
}

// TotalPrice sums unit price times quantity over all lines. 0 for an empty
// cart.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0.0
	for _, line := range c.lines {
		total += line.Item.Price * float64(line.Quantity)
	}
	return total
}

// TotalItems sums quantities over all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}
