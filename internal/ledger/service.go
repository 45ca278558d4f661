package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kibanda-labs/cafeteria-pos/pkg/db/models"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

// SoldLine is one line of a completed sale as written to the ledger.
type SoldLine struct {
	Item      string          `json:"item"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Sale is the immutable ledger view of one completed checkout.
type Sale struct {
	ID         uuid.UUID    `json:"id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Table      string       `json:"table"`
	Lines      []SoldLine   `json:"lines"`
	Totals     money.Totals `json:"totals"`
}

// AppendSaleInput carries the data a new ledger entry requires.
type AppendSaleInput struct {
	Table  string
	Lines  []SoldLine
	Totals money.Totals
}

// Service records completed sales and serves the recent-sales view.
// Entries are append-only; nothing in the API mutates or deletes them.
type Service interface {
	Append(ctx context.Context, input AppendSaleInput) (*Sale, error)
	Recent(ctx context.Context) ([]Sale, error)
}

type service struct {
	repo         Repository
	displayLimit int
	now          func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, displayLimit int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if displayLimit <= 0 {
		return nil, fmt.Errorf("display limit must be positive")
	}
	return &service{
		repo:         repo,
		displayLimit: displayLimit,
		now:          time.Now,
	}, nil
}

func (s *service) Append(ctx context.Context, input AppendSaleInput) (*Sale, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale needs at least one line")
	}

	sale := &Sale{
		ID:         uuid.New(),
		OccurredAt: s.now().UTC(),
		Table:      input.Table,
		Lines:      input.Lines,
		Totals:     input.Totals,
	}

	payload, err := json.Marshal(sale.Lines)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode sale lines")
	}

	record := &models.SaleRecord{
		ID:         sale.ID,
		OccurredAt: sale.OccurredAt,
		TableLabel: sale.Table,
		Items:      payload,
		Subtotal:   sale.Totals.Subtotal,
		Tax:        sale.Totals.Tax,
		Total:      sale.Totals.Total,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist sale")
	}
	return sale, nil
}

func (s *service) Recent(ctx context.Context) ([]Sale, error) {
	records, err := s.repo.ListRecent(ctx, s.displayLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent sales")
	}

	sales := make([]Sale, 0, len(records))
	for _, record := range records {
		var lines []SoldLine
		if len(record.Items) > 0 {
			if err := json.Unmarshal(record.Items, &lines); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode sale lines")
			}
		}
		sales = append(sales, Sale{
			ID:         record.ID,
			OccurredAt: record.OccurredAt,
			Table:      record.TableLabel,
			Lines:      lines,
			Totals: money.Totals{
				Subtotal: record.Subtotal,
				Tax:      record.Tax,
				Total:    record.Total,
			},
		})
	}
	return sales, nil
}
