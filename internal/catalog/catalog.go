package catalog

import (
	"errors"
	"fmt"
)

// Category classifies a purchasable good by how it is prepared.
type Category string

const (
	CategoryHot         Category = "hot"
	CategoryIce         Category = "ice"
	CategoryHotWithMilk Category = "hotWithMilk"
	CategoryIceWithMilk Category = "iceWithMilk"
	CategoryMilk        Category = "milk"
	CategoryOthers      Category = "others"
)

var (
	// ErrNotFound is returned when a catalog key is unknown.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrInvalidCatalog is returned when a catalog definition violates its constraints.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// IsCoffee reports whether goods of this category are brewed at a drip station.
func (c Category) IsCoffee() bool {
	switch c {
	case CategoryHot, CategoryIce, CategoryHotWithMilk, CategoryIceWithMilk:
		return true
	default:
		return false
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHot, CategoryIce, CategoryHotWithMilk, CategoryIceWithMilk, CategoryMilk, CategoryOthers:
		return true
	default:
		return false
	}
}

// Entry is a purchasable good.
type Entry struct {
	Key      string   `json:"key" yaml:"key"`
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Price    int      `json:"price" yaml:"price"`
	Category Category `json:"category" yaml:"category"`
}

// Catalog is the read-only menu of the event. A Catalog is safe for concurrent use
// because nothing mutates it after New returns.
type Catalog struct {
	entries      []Entry
	byKey        map[string]int
	primaryBlend int
	toteSet      int
}

// New validates the entries and builds a catalog. primaryKey names the entry used as the
// canonical coffee identity by the split engine; toteKey names the composite good that
// counts as one primary-blend cup.
func New(entries []Entry, primaryKey, toteKey string) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)

	ids := make(map[string]struct{}, len(entries))
	for i, e := range c.entries {
		if e.Key == "" || e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d needs key and id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byKey[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidCatalog, e.Key)
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, e.ID)
		}
		if e.Price < 0 {
			return nil, fmt.Errorf("%w: %q has negative price", ErrInvalidCatalog, e.Key)
		}
		if !e.Category.Valid() {
			return nil, fmt.Errorf("%w: %q has unknown category %q", ErrInvalidCatalog, e.Key, e.Category)
		}
		c.byKey[e.Key] = i
		ids[e.ID] = struct{}{}
	}

	var ok bool
	if c.primaryBlend, ok = c.byKey[primaryKey]; !ok {
		return nil, fmt.Errorf("%w: primary blend %q not defined", ErrInvalidCatalog, primaryKey)
	}
	if !c.entries[c.primaryBlend].Category.IsCoffee() {
		return nil, fmt.Errorf("%w: primary blend %q must be a coffee", ErrInvalidCatalog, primaryKey)
	}
	if c.toteSet, ok = c.byKey[toteKey]; !ok {
		return nil, fmt.Errorf("%w: tote set %q not defined", ErrInvalidCatalog, toteKey)
	}
	if c.entries[c.toteSet].Category.IsCoffee() {
		return nil, fmt.Errorf("%w: tote set %q must not be a coffee category", ErrInvalidCatalog, toteKey)
	}

	return c, nil
}

// Lookup returns the entry registered under key.
func (c *Catalog) Lookup(key string) (Entry, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return c.entries[i], nil
}

// FindByID returns the entry with the given identity.
func (c *Catalog) FindByID(id string) (Entry, bool) {
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (c *Catalog) PrimaryBlend() Entry { return c.entries[c.primaryBlend] }

func (c *Catalog) ToteSet() Entry { return c.entries[c.toteSet] }

// Entries returns a copy of all entries in menu order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
