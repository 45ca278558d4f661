package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/internal/cart"
	"github.com/kibanda-labs/cafeteria-pos/internal/ledger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

type stubCart struct {
	lines  []cart.Line
	resets int
}

func (s *stubCart) Lines() []cart.Line { return s.lines }
func (s *stubCart) Reset()             { s.resets++ }

type stubCatalog struct {
	applied map[string]int
}

func (s *stubCatalog) ApplySaleResult(name string, remaining int) {
	if s.applied == nil {
		s.applied = map[string]int{}
	}
	s.applied[name] = remaining
}

type stubSubmitter struct {
	calls   []backend.SaleRequest
	failOn  string
	failErr error
}

func (s *stubSubmitter) SubmitSale(ctx context.Context, req backend.SaleRequest) (*backend.SaleResult, error) {
	s.calls = append(s.calls, req)
	if s.failOn == req.Item {
		return nil, s.failErr
	}
	return &backend.SaleResult{Status: "ok", Item: req.Item, Quantity: req.Qty, Remaining: 7}, nil
}

func fixtureLines() []cart.Line {
	return []cart.Line{
		{Item: "Chapati", Qty: 2, UnitPrice: decimal.NewFromInt(20)},
		{Item: "Tea", Qty: 1, UnitPrice: decimal.NewFromInt(50)},
	}
}

func testOrchestrator(t *testing.T, sub *stubSubmitter) (*Orchestrator, *stubCart, *stubCatalog, ledger.Service) {
	t.Helper()
	crt := &stubCart{lines: fixtureLines()}
	cat := &stubCatalog{}
	led, err := ledger.NewService(ledger.NewMemoryRepository(), 10)
	if err != nil {
		t.Fatalf("ledger.NewService: %v", err)
	}
	orch, err := NewOrchestrator(Params{
		Cart:    crt,
		Catalog: cat,
		Ledger:  led,
		Backend: sub,
		Logger:  logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return orch, crt, cat, led
}

func TestExecuteCompletesAndRecordsSale(t *testing.T) {
	sub := &stubSubmitter{}
	orch, crt, cat, led := testOrchestrator(t, sub)

	receipt, err := orch.Execute(context.Background(), "Table 2")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(sub.calls) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(sub.calls))
	}
	if sub.calls[0].Item != "Chapati" || sub.calls[1].Item != "Tea" {
		t.Fatalf("expected name-ordered submission, got %+v", sub.calls)
	}
	if crt.resets != 1 {
		t.Fatalf("expected cart reset once, got %d", crt.resets)
	}
	if cat.applied["Chapati"] != 7 || cat.applied["Tea"] != 7 {
		t.Fatalf("expected stock overwrites, got %v", cat.applied)
	}

	if !receipt.Totals.Subtotal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("subtotal = %s, want 90", receipt.Totals.Subtotal)
	}
	if !receipt.Totals.Tax.Equal(decimal.NewFromFloat(14.4)) {
		t.Fatalf("tax = %s, want 14.4", receipt.Totals.Tax)
	}
	if !receipt.Totals.Total.Equal(decimal.NewFromFloat(104.4)) {
		t.Fatalf("total = %s, want 104.4", receipt.Totals.Total)
	}

	sales, err := led.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sales) != 1 || len(sales[0].Lines) != 2 {
		t.Fatalf("expected one recorded sale with 2 lines, got %+v", sales)
	}
}

func TestExecuteAbortsOnFirstFailure(t *testing.T) {
	sub := &stubSubmitter{
		failOn:  "Tea",
		failErr: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock"),
	}
	orch, crt, cat, led := testOrchestrator(t, sub)

	_, err := orch.Execute(context.Background(), "N/A")
	if err == nil {
		t.Fatalf("expected abort error")
	}
	if !strings.Contains(err.Error(), "Tea") {
		t.Fatalf("error should name the failed item, got %v", err)
	}

	perr := pkgerrors.As(err)
	if perr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	results, ok := perr.Details().([]LineResult)
	if !ok || len(results) != 2 {
		t.Fatalf("expected partial results in details, got %v", perr.Details())
	}
	if results[0].Item != "Chapati" || results[0].Err != "" {
		t.Fatalf("first line should be confirmed, got %+v", results[0])
	}
	if results[1].Item != "Tea" || results[1].Err == "" {
		t.Fatalf("second line should carry the failure, got %+v", results[1])
	}

	// confirmed lines stay sold, the cart is kept, no ledger entry
	if cat.applied["Chapati"] != 7 {
		t.Fatalf("confirmed line should update stock, got %v", cat.applied)
	}
	if crt.resets != 0 {
		t.Fatalf("cart must not reset after an abort")
	}
	sales, _ := led.Recent(context.Background())
	if len(sales) != 0 {
		t.Fatalf("aborted checkout must not reach the ledger")
	}
}

func TestExecuteRejectsEmptyCart(t *testing.T) {
	sub := &stubSubmitter{}
	orch, crt, _, _ := testOrchestrator(t, sub)
	crt.lines = nil

	_, err := orch.Execute(context.Background(), "N/A")
	perr := pkgerrors.As(err)
	if perr == nil || perr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("empty cart must make no remote calls")
	}
}

func TestReceiptRender(t *testing.T) {
	sub := &stubSubmitter{}
	orch, _, _, _ := testOrchestrator(t, sub)

	receipt, err := orch.Execute(context.Background(), "Table 2")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	text := receipt.Render()
	for _, want := range []string{"CAFETERIA RECEIPT", "Table 2", "Chapati", "Ksh 90.00", "Ksh 14.40", "Ksh 104.40"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered receipt missing %q:\n%s", want, text)
		}
	}
}
