package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

// Stock classification labels, matching what the backend reports.
const (
	StockStatusOut = "out_of_stock"
	StockStatusLow = "low_stock"
	StockStatusIn  = "in_stock"
)

// Item is the locally cached view of one sellable menu entry. Stock reflects
// the last value the backend reported; it is never authoritative beyond that.
type Item struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Threshold int             `json:"threshold"`
	Category  string          `json:"category"`
}

// LowStock reports whether the item sits at or below its reorder threshold.
// Derived on every read, never stored.
func (i Item) LowStock() bool {
	return i.Stock <= i.Threshold
}

// StockStatus classifies the item for stock reporting.
func (i Item) StockStatus() string {
	switch {
	case i.Stock == 0:
		return StockStatusOut
	case i.Stock <= i.Threshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

type lister interface {
	ListItems(ctx context.Context) (*backend.ItemsResponse, error)
}

// Cache is the session's snapshot of the remote item listing.
type Cache struct {
	client lister
	logg   *logger.Logger

	mu         sync.RWMutex
	items      map[string]Item
	categories []string
}

// NewCache builds an empty catalog cache backed by the inventory service.
func NewCache(client lister, logg *logger.Logger) (*Cache, error) {
	if client == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Cache{
		client: client,
		logg:   logg,
		items:  map[string]Item{},
	}, nil
}

// Load replaces the entire cache from the remote listing. Full overwrite,
// never a merge.
func (c *Cache) Load(ctx context.Context) error {
	listing, err := c.client.ListItems(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu")
	}

	items := make(map[string]Item, len(listing.Items))
	for name, entry := range listing.Items {
		items[name] = Item{
			Name:      name,
			Price:     decimal.NewFromFloat(entry.Price),
			Stock:     entry.Stock,
			Threshold: entry.Threshold,
			Category:  entry.Category,
		}
	}

	categories := append([]string{}, listing.Categories...)
	sort.Strings(categories)

	c.mu.Lock()
	c.items = items
	c.categories = categories
	c.mu.Unlock()

	ctx = c.logg.WithField(ctx, "item_count", len(items))
	c.logg.Info(ctx, "catalog loaded")
	return nil
}

// Get returns the cached entry for the given item name.
func (c *Cache) Get(name string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[name]
	return item, ok
}

// Snapshot returns all cached items, name-sorted.
func (c *Cache) Snapshot() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Categories returns the category list from the last load.
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.categories...)
}

// ApplySaleResult overwrites one entry's stock with the backend-reported
// remaining value. Unknown items are ignored.
func (c *Cache) ApplySaleResult(name string, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[name]
	if !ok {
		return
	}
	item.Stock = remaining
	c.items[name] = item
}

// Len reports the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
