package cart

import (
	"errors"

	"github.com/azaliaz/bookly-storefront/internal/domain/models"
)

var ErrInventoryExceeded = errors.New("not enough inventory")

// Cart is the client-held pending purchase list. It owns no price or
// inventory truth: every mutation that depends on stock takes the live
// server-reported value from the caller. Entries keep insertion order
// for rendering.
type Cart struct {
	items []models.CartItem
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) find(bookID string) int {
	for i, item := range c.items {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}

// Add puts one more unit of the book in the cart. The quantity is
// validated against available before anything changes; on failure the
// cart is left untouched.
func (c *Cart) Add(bookID string, available int) error {
	i := c.find(bookID)
	qty := 1
	if i >= 0 {
		qty = c.items[i].Quantity + 1
	}
	if qty > available {
		return ErrInventoryExceeded
	}
	if i >= 0 {
		c.items[i].Quantity = qty
		return nil
	}
	c.items = append(c.items, models.CartItem{BookID: bookID, Quantity: qty})
	return nil
}

// SetQuantity replaces the quantity for the book. Zero or negative
// removes the entry; a quantity above available leaves the cart
// unchanged and reports ErrInventoryExceeded.
func (c *Cart) SetQuantity(bookID string, qty, available int) error {
	if qty <= 0 {
		c.Remove(bookID)
		return nil
	}
	if qty > available {
		return ErrInventoryExceeded
	}
	if i := c.find(bookID); i >= 0 {
		c.items[i].Quantity = qty
		return nil
	}
	c.items = append(c.items, models.CartItem{BookID: bookID, Quantity: qty})
	return nil
}

func (c *Cart) Remove(bookID string) {
	if i := c.find(bookID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Quantity(bookID string) int {
	if i := c.find(bookID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the cart contents.
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

func (c *Cart) TotalItems() int {
	var total int
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalCost sums quantity times the caller-supplied current price.
func (c *Cart) TotalCost(price func(bookID string) float64) float64 {
	var total float64
	for _, item := range c.items {
		total += price(item.BookID) * float64(item.Quantity)
	}
	return total
}
