package money

import "github.com/shopspring/decimal"

// TaxRate is the VAT applied to every order.
var TaxRate = decimal.NewFromFloat(0.16)

// Totals carries the derived amounts for a cart or a completed order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute derives tax and total from a subtotal.
func Compute(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Line multiplies a unit price by a quantity.
func Line(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// FormatKsh renders an amount the way receipts print it.
func FormatKsh(amount decimal.Decimal) string {
	return "Ksh " + amount.StringFixed(2)
}
