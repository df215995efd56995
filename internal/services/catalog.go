package services

import (
	"crm-ledger/internal/models"
)

// Catalog is an immutable snapshot of catalog items keyed by ID, used to
// price sale lines
type Catalog struct {
	items map[int64]models.Item
	order []int64
}

// NewCatalog creates a snapshot of the given items
func NewCatalog(items []*models.Item) *Catalog {
	c := &Catalog{
		items: make(map[int64]models.Item, len(items)),
		order: make([]int64, 0, len(items)),
	}
	for _, item := range items {
		if _, seen := c.items[item.ID]; !seen {
			c.order = append(c.order, item.ID)
		}
		c.items[item.ID] = *item
	}
	return c
}

// Lookup returns the item with the given ID
func (c *Catalog) Lookup(id int64) (models.Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Items returns the snapshot items in catalog order
func (c *Catalog) Items() []models.Item {
	items := make([]models.Item, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.items[id])
	}
	return items
}

// Len returns the number of items in the snapshot
func (c *Catalog) Len() int {
	return len(c.items)
}
