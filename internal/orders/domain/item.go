package domain

import "github.com/dejobratic/cafepos/internal/catalog"

// Item is one purchased unit. ID carries the catalog identity of the good.
type Item struct {
	ID       string
	Name     string
	Price    int
	Category catalog.Category
	assignee string
}

// NewItem creates an unassigned item from a catalog entry.
func NewItem(entry catalog.Entry) Item {
	return Item{
		ID:       entry.ID,
		Name:     entry.Name,
		Price:    entry.Price,
		Category: entry.Category,
	}
}

// Clone returns an independent copy of the item.
func (i Item) Clone() Item {
	return i
}

// IsCoffee reports whether the item is brewed at a drip station.
func (i Item) IsCoffee() bool {
	return i.Category.IsCoffee()
}

// Assignee returns the barista name and whether one is set.
func (i Item) Assignee() (string, bool) {
	return i.assignee, i.assignee != ""
}

// SetAssignee records the barista brewing the item. An empty name clears it.
func (i *Item) SetAssignee(name string) {
	i.assignee = name
}

// WithAssignee returns a copy of the item assigned to name.
func (i Item) WithAssignee(name string) Item {
	i.SetAssignee(name)
	return i
}
