package project

import (
	"time"

	"github.com/projledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// Financials is the roll-up of a project's documents.
//
// Revenue is invoiced revenue, Cost is billed cost plus approved or paid
// expenses. Sales and purchase orders are commitments and are tracked apart
// so an order and the invoice raised from it are never counted twice.
type Financials struct {
	Revenue          decimal.Decimal
	Cost             decimal.Decimal
	Profit           decimal.Decimal
	CommittedRevenue decimal.Decimal
	CommittedCost    decimal.Decimal
	UpdatedAt        *time.Time
}

// ZeroFinancials returns financials for a project with no documents
func ZeroFinancials() Financials {
	return Financials{
		Revenue:          decimal.Zero,
		Cost:             decimal.Zero,
		Profit:           decimal.Zero,
		CommittedRevenue: decimal.Zero,
		CommittedCost:    decimal.Zero,
	}
}

// ComputeFinancials derives project financials from the per-kind document totals.
// Every field is recomputed from scratch; nothing is carried over from prior values.
func ComputeFinancials(totals billing.ProjectTotals, at time.Time) Financials {
	revenue := totals.Get(billing.KindInvoice)
	cost := totals.Get(billing.KindVendorBill).Add(totals.Get(billing.KindExpense))
	return Financials{
		Revenue:          revenue,
		Cost:             cost,
		Profit:           revenue.Sub(cost),
		CommittedRevenue: totals.Get(billing.KindSalesOrder),
		CommittedCost:    totals.Get(billing.KindPurchaseOrder),
		UpdatedAt:        &at,
	}
}

// Equal compares the monetary fields, ignoring the timestamp
func (f Financials) Equal(o Financials) bool {
	return f.Revenue.Equal(o.Revenue) &&
		f.Cost.Equal(o.Cost) &&
		f.Profit.Equal(o.Profit) &&
		f.CommittedRevenue.Equal(o.CommittedRevenue) &&
		f.CommittedCost.Equal(o.CommittedCost)
}
