package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
)

type stubCatalog struct {
	items map[string]catalog.Item
}

func (s *stubCatalog) Get(name string) (catalog.Item, bool) {
	item, ok := s.items[name]
	return item, ok
}

func fixtureCatalog() *stubCatalog {
	return &stubCatalog{items: map[string]catalog.Item{
		"Chapati": {Name: "Chapati", Price: decimal.NewFromInt(20), Stock: 10, Threshold: 5},
		"Tea":     {Name: "Tea", Price: decimal.NewFromInt(50), Stock: 3, Threshold: 5},
		"Mandazi": {Name: "Mandazi", Price: decimal.NewFromInt(15), Stock: 0, Threshold: 4},
	}}
}

func newStore(t *testing.T) (*Store, *stubCatalog) {
	t.Helper()
	cat := fixtureCatalog()
	store, err := NewStore(cat)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, cat
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var perr *pkgerrors.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected coded error, got %v", err)
	}
	if perr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, perr.Code())
	}
}

func TestAddMergesAndCapsAtStock(t *testing.T) {
	store, _ := newStore(t)

	if _, err := store.Add("Tea", 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	line, err := store.Add("Tea", 5)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if line.Qty != 3 {
		t.Fatalf("expected qty capped at stock 3, got %d", line.Qty)
	}
	if store.Len() != 1 {
		t.Fatalf("expected merged line, got %d lines", store.Len())
	}
}

func TestAddRejectsOutOfStock(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Add("Mandazi", 1)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAddRejectsUnknownItem(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Add("Ugali", 1)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestAddLocksPriceAtAddTime(t *testing.T) {
	store, cat := newStore(t)

	if _, err := store.Add("Chapati", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// a catalog refresh changes the listed price, the cart keeps the old one
	item := cat.items["Chapati"]
	item.Price = decimal.NewFromInt(25)
	cat.items["Chapati"] = item

	line, err := store.Add("Chapati", 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected locked price 20, got %s", line.UnitPrice)
	}
}

func TestUpdateQtySemantics(t *testing.T) {
	store, _ := newStore(t)
	if _, err := store.Add("Chapati", 2); err != nil {
		t.Fatalf("Add: %v", err)
	}

	line, kept, err := store.UpdateQty("Chapati", 4)
	if err != nil || !kept {
		t.Fatalf("UpdateQty: kept=%v err=%v", kept, err)
	}
	if line.Qty != 4 {
		t.Fatalf("expected qty 4, got %d", line.Qty)
	}

	// over-stock values are rejected, the line keeps its quantity
	_, _, err = store.UpdateQty("Chapati", 50)
	assertCode(t, err, pkgerrors.CodeConflict)
	lines := store.Lines()
	if len(lines) != 1 || lines[0].Qty != 4 {
		t.Fatalf("expected unchanged qty 4, got %+v", lines)
	}

	// zero removes the line
	_, kept, err = store.UpdateQty("Chapati", 0)
	if err != nil || kept {
		t.Fatalf("expected removal, kept=%v err=%v", kept, err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty cart, got %d lines", store.Len())
	}

	_, _, err = store.UpdateQty("Chapati", 1)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestRemove(t *testing.T) {
	store, _ := newStore(t)
	if _, err := store.Add("Tea", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove("Tea"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertCode(t, store.Remove("Tea"), pkgerrors.CodeNotFound)
}

func TestClear(t *testing.T) {
	store, _ := newStore(t)

	assertCode(t, store.Clear(false), pkgerrors.CodeValidation)
	assertCode(t, store.Clear(true), pkgerrors.CodeStateConflict)

	if _, err := store.Add("Tea", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Clear(true); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty cart after clear")
	}
}

func TestLinesSortedAndTotals(t *testing.T) {
	store, _ := newStore(t)
	if _, err := store.Add("Tea", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Add("Chapati", 2); err != nil {
		t.Fatalf("Add: %v", err)
	}

	lines := store.Lines()
	if lines[0].Item != "Chapati" || lines[1].Item != "Tea" {
		t.Fatalf("expected name-sorted lines, got %v", lines)
	}
	if store.ItemCount() != 3 {
		t.Fatalf("expected 3 units, got %d", store.ItemCount())
	}

	totals := store.Totals()
	if !totals.Subtotal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("subtotal = %s, want 90", totals.Subtotal)
	}
	if !totals.Tax.Equal(decimal.NewFromFloat(14.4)) {
		t.Fatalf("tax = %s, want 14.4", totals.Tax)
	}
	if !totals.Total.Equal(decimal.NewFromFloat(104.4)) {
		t.Fatalf("total = %s, want 104.4", totals.Total)
	}
}
