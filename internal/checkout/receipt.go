package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

// Receipt is the customer-facing record of a completed checkout.
type Receipt struct {
	ID        uuid.UUID    `json:"id"`
	Table     string       `json:"table"`
	Lines     []LineResult `json:"lines"`
	Totals    money.Totals `json:"totals"`
	Timestamp time.Time    `json:"timestamp"`
}

// Render produces the plain-text print duplicate of the receipt.
func (r *Receipt) Render() string {
	var b strings.Builder

	fmt.Fprintln(&b, "======= CAFETERIA RECEIPT =======")
	fmt.Fprintf(&b, "Receipt: %s\n", r.ID)
	fmt.Fprintf(&b, "Table:   %s\n", r.Table)
	fmt.Fprintf(&b, "Time:    %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, "---------------------------------")
	for _, line := range r.Lines {
		fmt.Fprintf(&b, "%-16s x%-3d %12s\n", line.Item, line.Qty, money.FormatKsh(line.LineTotal))
	}
	fmt.Fprintln(&b, "---------------------------------")
	fmt.Fprintf(&b, "Subtotal: %s\n", money.FormatKsh(r.Totals.Subtotal))
	fmt.Fprintf(&b, "Tax (16%%): %s\n", money.FormatKsh(r.Totals.Tax))
	fmt.Fprintf(&b, "TOTAL:    %s\n", money.FormatKsh(r.Totals.Total))
	fmt.Fprintln(&b, "=================================")
	fmt.Fprintln(&b, "Thank you, karibu tena!")

	return b.String()
}
