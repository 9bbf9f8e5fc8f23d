package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineScale is the number of decimal places stored for quantity and unit price
const LineScale = 4

// LineItem is a priced line on a sales order, invoice, purchase order or vendor bill.
// Amount is always derived from Quantity and UnitPrice.
type LineItem struct {
	ID          uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Position    int
}

// LineInput carries the caller-supplied fields of a line item
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// NewLineItem validates the input and computes the line amount
func NewLineItem(in LineInput) (*LineItem, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot exceed 500 characters")
	}
	if in.Quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() {
		return nil, ErrInvalidUnitPrice
	}
	// the stored inputs must reproduce the amount after a reload
	if !fitsScale(in.Quantity) || !fitsScale(in.UnitPrice) {
		return nil, ErrTooPrecise
	}

	item := &LineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
	}
	item.Recalculate()
	return item, nil
}

func fitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(LineScale))
}

// Recalculate derives Amount from Quantity and UnitPrice
func (l *LineItem) Recalculate() {
	l.Amount = shared.RoundMoney(l.Quantity.Mul(l.UnitPrice))
}

// Totals is the result of pricing a list of lines
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals recomputes every line amount, then sums them and applies the tax rate.
// Line amounts and tax are rounded half-up to cents; subtotal and total are exact sums.
func ComputeTotals(lines []LineItem, taxRate decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrNoLines
	}
	if err := ValidateTaxRate(taxRate); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for i := range lines {
		lines[i].Recalculate()
		subtotal = subtotal.Add(lines[i].Amount)
	}
	tax := shared.RoundMoney(subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)))

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}, nil
}

// ValidateTaxRate checks the rate is a percentage between 0 and 100
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidTaxRate
	}
	return nil
}

// BuildLines converts inputs into line items, preserving input order
func BuildLines(inputs []LineInput) ([]LineItem, error) {
	if len(inputs) == 0 {
		return nil, ErrNoLines
	}
	lines := make([]LineItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := NewLineItem(in)
		if err != nil {
			return nil, err
		}
		item.Position = i + 1
		lines = append(lines, *item)
	}
	return lines, nil
}
