// Package catalog holds the fixed, ordered set of items being ranked.
//
// The catalog is loaded once at startup and never changes at runtime.
// Catalog order is also the rank tie-break order, so two runs over the
// same vote sequence always produce the same ranking.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MinItems is the smallest catalog a sampler can draw pairs from.
const MinItems = 2

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Item is an immutable catalog entry.
type Item struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Year     int    `yaml:"year" json:"year,omitempty"`
	ImageURL string `yaml:"image_url" json:"image_url,omitempty"`
}

// Catalog is an ordered, validated collection of items.
type Catalog struct {
	items []Item
	index map[string]int
}

// New builds a catalog from items, validating size and id uniqueness.
func New(items []Item) (*Catalog, error) {
	if len(items) < MinItems {
		return nil, fmt.Errorf("%w: need at least %d items, got %d", ErrInvalidCatalog, MinItems, len(items))
	}
	index := make(map[string]int, len(items))
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("%w: item %d has empty id", ErrInvalidCatalog, i)
		}
		if _, dup := index[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidCatalog, it.ID)
		}
		index[it.ID] = i
	}
	c := &Catalog{items: make([]Item, len(items)), index: index}
	copy(c.items, items)
	return c, nil
}

// catalogFile mirrors the YAML catalog document.
type catalogFile struct {
	Items []Item `yaml:"items"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return parse(data)
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := parse(defaultCatalogYAML)
	if err != nil {
		// The embedded catalog is validated by tests; a failure here is
		// a build defect, not a runtime condition.
		panic("embedded catalog is invalid: " + err.Error())
	}
	return c
}

func parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Items)
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the catalog entries in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// At returns the item at position i.
func (c *Catalog) At(i int) Item {
	return c.items[i]
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// IndexOf returns the catalog position of id, or -1 if unknown.
func (c *Catalog) IndexOf(id string) int {
	i, ok := c.index[id]
	if !ok {
		return -1
	}
	return i
}

// Contains reports whether id belongs to the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Pairs returns the number of distinct unordered pairs, C(n,2).
func (c *Catalog) Pairs() int {
	n := len(c.items)
	return n * (n - 1) / 2
}
