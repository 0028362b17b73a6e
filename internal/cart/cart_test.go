package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd_IncrementsInsteadOfDuplicating(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("b1", 5))
	assert.NoError(t, c.Add("b1", 5))
	assert.NoError(t, c.Add("b2", 5))

	items := c.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, 2, c.Quantity("b1"))
	assert.Equal(t, 1, c.Quantity("b2"))

	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.BookID], "duplicate entry for %s", item.BookID)
		seen[item.BookID] = true
	}
}

func TestAdd_AtInventoryLimit(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("b1", 2))
	assert.NoError(t, c.Add("b1", 2))

	err := c.Add("b1", 2)
	assert.ErrorIs(t, err, ErrInventoryExceeded)
	assert.Equal(t, 2, c.Quantity("b1"))
}

func TestAdd_ZeroInventory(t *testing.T) {
	c := New()
	err := c.Add("b1", 0)
	assert.ErrorIs(t, err, ErrInventoryExceeded)
	assert.True(t, c.Empty())
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("b1", 5))
	assert.NoError(t, c.SetQuantity("b1", 0, 5))
	assert.True(t, c.Empty())

	// identical to an explicit remove
	assert.NoError(t, c.Add("b1", 5))
	c.Remove("b1")
	assert.True(t, c.Empty())
}

func TestSetQuantity_RejectsOverInventory(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("x", 5))
	assert.NoError(t, c.Add("x", 5))

	err := c.SetQuantity("x", 10, 5)
	assert.ErrorIs(t, err, ErrInventoryExceeded)
	assert.Equal(t, 2, c.Quantity("x"))
}

func TestSetQuantity_ReplacesAndInserts(t *testing.T) {
	c := New()
	assert.NoError(t, c.SetQuantity("b1", 3, 5))
	assert.Equal(t, 3, c.Quantity("b1"))
	assert.NoError(t, c.SetQuantity("b1", 1, 5))
	assert.Equal(t, 1, c.Quantity("b1"))
}

func TestRemove_MissingIsNoop(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("b1", 5))
	c.Remove("nope")
	assert.Equal(t, 1, c.TotalItems())
}

func TestClear(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("b1", 5))
	assert.NoError(t, c.Add("b2", 5))
	c.Clear()
	assert.True(t, c.Empty())
	assert.Equal(t, 0, c.TotalItems())
}

func TestTotals(t *testing.T) {
	c := New()
	assert.NoError(t, c.SetQuantity("b1", 2, 10))
	assert.NoError(t, c.SetQuantity("b2", 3, 10))

	assert.Equal(t, 5, c.TotalItems())

	prices := map[string]float64{"b1": 10.5, "b2": 2}
	total := c.TotalCost(func(id string) float64 { return prices[id] })
	assert.InDelta(t, 27.0, total, 0.001)
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := New()
	assert.NoError(t, c.Add("b1", 5))
	items := c.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, c.Quantity("b1"))
}
