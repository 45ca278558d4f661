package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/internal/cart"
	"github.com/kibanda-labs/cafeteria-pos/internal/ledger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/metrics"
	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

// LineResult is the outcome of submitting one cart line.
type LineResult struct {
	Item      string          `json:"item"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Remaining int             `json:"remaining"`
	Err       string          `json:"error,omitempty"`
}

type submitter interface {
	SubmitSale(ctx context.Context, req backend.SaleRequest) (*backend.SaleResult, error)
}

type cartStore interface {
	Lines() []cart.Line
	Reset()
}

type stockWriter interface {
	ApplySaleResult(name string, remaining int)
}

type saleAppender interface {
	Append(ctx context.Context, input ledger.AppendSaleInput) (*ledger.Sale, error)
}

// Orchestrator drives a checkout: one sale submission per cart line, strictly
// in name order, aborting on the first failure. Lines already confirmed stay
// sold; nothing is compensated or rolled back.
type Orchestrator struct {
	cart    cartStore
	catalog stockWriter
	ledger  saleAppender
	backend submitter
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics

	inFlight atomic.Bool
}

// Params collects the orchestrator's dependencies.
type Params struct {
	Cart    cartStore
	Catalog stockWriter
	Ledger  saleAppender
	Backend submitter
	Logger  *logger.Logger
	Metrics *metrics.CheckoutMetrics
}

// NewOrchestrator validates the dependency set and builds an orchestrator.
func NewOrchestrator(p Params) (*Orchestrator, error) {
	if p.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if p.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if p.Backend == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		cart:    p.Cart,
		catalog: p.Catalog,
		ledger:  p.Ledger,
		backend: p.Backend,
		logg:    p.Logger,
		metrics: p.Metrics,
	}, nil
}

// Execute submits every cart line to the sales backend and, on full success,
// records the sale and resets the cart. On a line failure the cart is left
// intact so the operator can retry or amend it.
func (o *Orchestrator) Execute(ctx context.Context, table string) (*Receipt, error) {
	lines := o.cart.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout is already in progress")
	}
	defer o.inFlight.Store(false)

	started := time.Now()
	ctx = o.logg.WithFields(ctx, map[string]any{
		"table":      table,
		"line_count": len(lines),
	})
	o.logg.Info(ctx, "checkout started")

	results := make([]LineResult, 0, len(lines))
	for _, line := range lines {
		result, err := o.submitLine(ctx, table, line)
		if err != nil {
			result.Err = err.Error()
			results = append(results, result)
			o.metrics.IncLine("failed")
			o.metrics.IncAborted()
			o.metrics.ObserveDuration("aborted", time.Since(started))

			lineCtx := o.logg.WithItem(ctx, line.Item)
			o.logg.Error(lineCtx, "checkout aborted", err)
			return nil, pkgerrors.
				Wrap(codeFor(err), err, fmt.Sprintf("sale failed for %s", line.Item)).
				WithDetails(results)
		}
		results = append(results, result)
		o.catalog.ApplySaleResult(line.Item, result.Remaining)
		o.metrics.IncLine("ok")
	}

	subtotal := decimal.Zero
	for _, result := range results {
		subtotal = subtotal.Add(result.LineTotal)
	}
	totals := money.Compute(subtotal)

	soldLines := make([]ledger.SoldLine, 0, len(results))
	for _, result := range results {
		soldLines = append(soldLines, ledger.SoldLine{
			Item:      result.Item,
			Qty:       result.Qty,
			UnitPrice: result.UnitPrice,
			LineTotal: result.LineTotal,
		})
	}

	sale, err := o.ledger.Append(ctx, ledger.AppendSaleInput{
		Table:  table,
		Lines:  soldLines,
		Totals: totals,
	})
	if err != nil {
		// sold lines are already confirmed remotely; surface the ledger
		// failure rather than pretending the checkout did not happen
		o.metrics.ObserveDuration("ledger_error", time.Since(started))
		return nil, err
	}

	o.cart.Reset()
	o.metrics.IncCompleted()
	o.metrics.ObserveDuration("completed", time.Since(started))
	o.logg.Info(o.logg.WithField(ctx, "receipt_id", sale.ID.String()), "checkout completed")

	return &Receipt{
		ID:        sale.ID,
		Table:     table,
		Lines:     results,
		Totals:    totals,
		Timestamp: sale.OccurredAt,
	}, nil
}

func (o *Orchestrator) submitLine(ctx context.Context, table string, line cart.Line) (LineResult, error) {
	result := LineResult{
		Item:      line.Item,
		Qty:       line.Qty,
		UnitPrice: line.UnitPrice,
		LineTotal: line.Total(),
	}

	price, _ := line.UnitPrice.Float64()
	confirmed, err := o.backend.SubmitSale(ctx, backend.SaleRequest{
		Item:  line.Item,
		Qty:   line.Qty,
		Price: price,
		Table: table,
	})
	if err != nil {
		return result, err
	}

	result.Remaining = confirmed.Remaining
	return result, nil
}

func codeFor(err error) pkgerrors.Code {
	if perr := pkgerrors.As(err); perr != nil {
		return perr.Code()
	}
	return pkgerrors.CodeDependency
}
