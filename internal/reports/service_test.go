package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	"github.com/kibanda-labs/cafeteria-pos/internal/ledger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

type stubBackend struct {
	totals *backend.DailyTotals
	export string
	err    error
}

func (s *stubBackend) DailyTotals(ctx context.Context) (*backend.DailyTotals, error) {
	return s.totals, s.err
}

func (s *stubBackend) ExportReport(ctx context.Context) (string, error) {
	return s.export, s.err
}

type stubCatalog struct {
	items []catalog.Item
}

func (s *stubCatalog) Snapshot() []catalog.Item { return s.items }

type stubLedger struct {
	sales []ledger.Sale
}

func (s *stubLedger) Recent(ctx context.Context) ([]ledger.Sale, error) { return s.sales, nil }

func TestStockClassifiesItems(t *testing.T) {
	cat := &stubCatalog{items: []catalog.Item{
		{Name: "Chapati", Stock: 10, Threshold: 5},
		{Name: "Mandazi", Stock: 0, Threshold: 4},
		{Name: "Tea", Stock: 3, Threshold: 5},
	}}
	svc, err := NewService(&stubBackend{}, cat, &stubLedger{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	report, err := svc.Stock(context.Background())
	if err != nil {
		t.Fatalf("Stock: %v", err)
	}
	if len(report.OutOfStock) != 1 || report.OutOfStock[0] != "Mandazi" {
		t.Fatalf("out of stock = %v", report.OutOfStock)
	}
	if len(report.LowStock) != 1 || report.LowStock[0] != "Tea" {
		t.Fatalf("low stock = %v", report.LowStock)
	}
	if !strings.Contains(report.Rendered, "OUT OF STOCK: Mandazi") {
		t.Fatalf("rendered report missing out-of-stock line:\n%s", report.Rendered)
	}
}

func TestStockRejectsEmptyCatalog(t *testing.T) {
	svc, _ := NewService(&stubBackend{}, &stubCatalog{}, &stubLedger{})
	_, err := svc.Stock(context.Background())
	perr := pkgerrors.As(err)
	if perr == nil || perr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSalesHistoryRendering(t *testing.T) {
	led := &stubLedger{sales: []ledger.Sale{{
		OccurredAt: time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC),
		Table:      "Table 1",
		Lines: []ledger.SoldLine{
			{Item: "Tea", Qty: 1, UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(50)},
		},
		Totals: money.Compute(decimal.NewFromInt(50)),
	}}}
	svc, _ := NewService(&stubBackend{}, &stubCatalog{}, led)

	history, err := svc.SalesHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("SalesHistory: %v", err)
	}
	if len(history.Sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(history.Sales))
	}
	for _, want := range []string{"12:30:00", "Table 1", "Tea", "Ksh 50.00"} {
		if !strings.Contains(history.Rendered, want) {
			t.Fatalf("rendered history missing %q:\n%s", want, history.Rendered)
		}
	}
}

func TestSalesHistoryHonorsLimit(t *testing.T) {
	led := &stubLedger{}
	for i := 0; i < 5; i++ {
		led.sales = append(led.sales, ledger.Sale{Table: "N/A", Totals: money.Compute(decimal.NewFromInt(10))})
	}
	svc, _ := NewService(&stubBackend{}, &stubCatalog{}, led)

	history, err := svc.SalesHistory(context.Background(), 2)
	if err != nil {
		t.Fatalf("SalesHistory: %v", err)
	}
	if len(history.Sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(history.Sales))
	}
}

func TestSalesHistoryEmpty(t *testing.T) {
	svc, _ := NewService(&stubBackend{}, &stubCatalog{}, &stubLedger{})
	history, err := svc.SalesHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("SalesHistory: %v", err)
	}
	if !strings.Contains(history.Rendered, "No sales recorded yet") {
		t.Fatalf("unexpected rendering: %q", history.Rendered)
	}
}

func TestExportNamesFile(t *testing.T) {
	svc, _ := NewService(&stubBackend{export: "END OF DAY"}, &stubCatalog{}, &stubLedger{})
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC) }

	export, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.Filename != "end_of_day_report_2026-08-31.txt" {
		t.Fatalf("filename = %q", export.Filename)
	}
	if export.Body != "END OF DAY" {
		t.Fatalf("body = %q", export.Body)
	}
}
