package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	"github.com/kibanda-labs/cafeteria-pos/internal/ledger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

// StockEntry is one item's classification in the stock report.
type StockEntry struct {
	Item      string `json:"item"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
	Status    string `json:"status"`
}

// StockReport summarises the cached catalog by stock level.
type StockReport struct {
	Entries    []StockEntry `json:"entries"`
	OutOfStock []string     `json:"out_of_stock"`
	LowStock   []string     `json:"low_stock"`
	Rendered   string       `json:"rendered"`
}

// SalesHistory is the recent-sales view plus its text rendering.
type SalesHistory struct {
	Sales    []ledger.Sale `json:"sales"`
	Rendered string        `json:"rendered"`
}

// Export is the end-of-day report body with its suggested filename.
type Export struct {
	Filename string `json:"filename"`
	Body     string `json:"body"`
}

type totalsClient interface {
	DailyTotals(ctx context.Context) (*backend.DailyTotals, error)
	ExportReport(ctx context.Context) (string, error)
}

type snapshotter interface {
	Snapshot() []catalog.Item
}

type recentLister interface {
	Recent(ctx context.Context) ([]ledger.Sale, error)
}

// Service serves the station's reporting reads.
type Service interface {
	DailyTotals(ctx context.Context) (*backend.DailyTotals, error)
	Stock(ctx context.Context) (*StockReport, error)
	SalesHistory(ctx context.Context, limit int) (*SalesHistory, error)
	Export(ctx context.Context) (*Export, error)
}

type service struct {
	backend totalsClient
	catalog snapshotter
	ledger  recentLister
	now     func() time.Time
}

// NewService wires a reports service over the station's read surfaces.
func NewService(client totalsClient, cat snapshotter, led recentLister) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if led == nil {
		return nil, fmt.Errorf("ledger required")
	}
	return &service{
		backend: client,
		catalog: cat,
		ledger:  led,
		now:     time.Now,
	}, nil
}

func (s *service) DailyTotals(ctx context.Context) (*backend.DailyTotals, error) {
	return s.backend.DailyTotals(ctx)
}

func (s *service) Stock(ctx context.Context) (*StockReport, error) {
	items := s.catalog.Snapshot()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "catalog is empty, refresh the menu first")
	}

	report := &StockReport{Entries: make([]StockEntry, 0, len(items))}
	for _, item := range items {
		status := item.StockStatus()
		report.Entries = append(report.Entries, StockEntry{
			Item:      item.Name,
			Stock:     item.Stock,
			Threshold: item.Threshold,
			Status:    status,
		})
		switch status {
		case catalog.StockStatusOut:
			report.OutOfStock = append(report.OutOfStock, item.Name)
		case catalog.StockStatusLow:
			report.LowStock = append(report.LowStock, item.Name)
		}
	}
	report.Rendered = renderStock(report)
	return report, nil
}

// SalesHistory returns up to limit recent sales; zero or negative keeps the
// ledger's display cap.
func (s *service) SalesHistory(ctx context.Context, limit int) (*SalesHistory, error) {
	sales, err := s.ledger.Recent(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return &SalesHistory{
		Sales:    sales,
		Rendered: renderSales(sales),
	}, nil
}

func (s *service) Export(ctx context.Context) (*Export, error) {
	body, err := s.backend.ExportReport(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename: fmt.Sprintf("end_of_day_report_%s.txt", s.now().UTC().Format("2006-01-02")),
		Body:     body,
	}, nil
}

func renderStock(report *StockReport) string {
	var b strings.Builder

	fmt.Fprintln(&b, "========= STOCK REPORT =========")
	for _, entry := range report.Entries {
		fmt.Fprintf(&b, "%-16s %4d (reorder at %d) [%s]\n", entry.Item, entry.Stock, entry.Threshold, entry.Status)
	}
	if len(report.OutOfStock) > 0 {
		fmt.Fprintf(&b, "OUT OF STOCK: %s\n", strings.Join(report.OutOfStock, ", "))
	}
	if len(report.LowStock) > 0 {
		fmt.Fprintf(&b, "LOW STOCK: %s\n", strings.Join(report.LowStock, ", "))
	}
	fmt.Fprintln(&b, "================================")
	return b.String()
}

func renderSales(sales []ledger.Sale) string {
	if len(sales) == 0 {
		return "No sales recorded yet.\n"
	}

	var b strings.Builder
	fmt.Fprintln(&b, "========= RECENT SALES =========")
	for _, sale := range sales {
		fmt.Fprintf(&b, "%s  table %s  %s\n",
			sale.OccurredAt.Format("15:04:05"), sale.Table, money.FormatKsh(sale.Totals.Total))
		for _, line := range sale.Lines {
			fmt.Fprintf(&b, "  %-14s x%-3d %s\n", line.Item, line.Qty, money.FormatKsh(line.LineTotal))
		}
	}
	fmt.Fprintln(&b, "================================")
	return b.String()
}
