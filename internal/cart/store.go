package cart

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

// Line is one item entry in the working cart. UnitPrice is captured when the
// line is first added and stays fixed until the cart is cleared or sold, even
// if a catalog refresh changes the listed price.
type Line struct {
	Item      string          `json:"item"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Total returns the line's extended price.
func (l Line) Total() decimal.Decimal {
	return money.Line(l.UnitPrice, l.Qty)
}

type itemGetter interface {
	Get(name string) (catalog.Item, bool)
}

// Store holds the single working cart for the station.
type Store struct {
	catalog itemGetter

	mu    sync.Mutex
	lines map[string]*Line
}

// NewStore builds an empty cart over the given catalog view.
func NewStore(cat itemGetter) (*Store, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &Store{
		catalog: cat,
		lines:   map[string]*Line{},
	}, nil
}

// Add puts qty units of the named item into the cart, merging with any
// existing line. The merged quantity is capped at the cached stock.
func (s *Store) Add(name string, qty int) (Line, error) {
	if qty <= 0 {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	item, ok := s.catalog.Get(name)
	if !ok {
		return Line{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown item %q", name))
	}
	if item.Stock <= 0 {
		return Line{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%s is out of stock", name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, exists := s.lines[name]
	if !exists {
		line = &Line{Item: name, UnitPrice: item.Price}
		s.lines[name] = line
	}

	next := line.Qty + qty
	if next > item.Stock {
		next = item.Stock
	}
	line.Qty = next
	return *line, nil
}

// UpdateQty sets the line's quantity outright. Zero or negative removes the
// line; values above the cached stock are rejected and the line is unchanged.
func (s *Store) UpdateQty(name string, qty int) (Line, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, exists := s.lines[name]
	if !exists {
		return Line{}, false, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s is not in the cart", name))
	}

	if qty <= 0 {
		delete(s.lines, name)
		return Line{Item: name, UnitPrice: line.UnitPrice}, false, nil
	}

	if item, ok := s.catalog.Get(name); ok && qty > item.Stock {
		return *line, true, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("only %d of %s in stock", item.Stock, name))
	}

	line.Qty = qty
	return *line, true, nil
}

// Remove drops the named line from the cart.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lines[name]; !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s is not in the cart", name))
	}
	delete(s.lines, name)
	return nil
}

// Clear empties the cart. Callers must pass confirm=true; clearing an already
// empty cart is rejected so the station UI can warn instead.
func (s *Store) Clear(confirm bool) error {
	if !confirm {
		return pkgerrors.New(pkgerrors.CodeValidation, "clearing the cart requires confirmation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is already empty")
	}
	for name := range s.lines {
		delete(s.lines, name)
	}
	return nil
}

// Reset empties the cart unconditionally. Used after a completed or aborted
// checkout, never from the UI surface.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = map[string]*Line{}
}

// Lines returns the cart contents name-sorted. Checkout iterates this order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

// ItemCount returns the total unit count across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.lines {
		count += line.Qty
	}
	return count
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Totals computes subtotal, tax and total over the current lines.
func (s *Store) Totals() money.Totals {
	subtotal := decimal.Zero
	for _, line := range s.Lines() {
		subtotal = subtotal.Add(line.Total())
	}
	return money.Compute(subtotal)
}
