package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTotalsReader_SumByProject(t *testing.T) {
	db := newTestDB(t)
	docs := NewGormDocumentRepository(db)
	expenses := NewGormExpenseRepository(db)
	reader := NewGormTotalsReader(db)
	ctx := context.Background()
	tenantID := uuid.New()
	p := createTestProject(t, db, tenantID)
	other := createTestProject(t, db, tenantID)

	save := func(kind billing.DocumentKind, number string, projectID *uuid.UUID, amount int64, status billing.Status) {
		doc := newTestDocument(t, tenantID, kind, number, projectID, amount)
		require.NoError(t, doc.ChangeStatus(status))
		require.NoError(t, docs.Save(ctx, doc))
	}
	save(billing.KindInvoice, "INV-2026-001", &p.ID, 100, billing.StatusSent)
	save(billing.KindInvoice, "INV-2026-002", &p.ID, 250, billing.StatusPaid)
	save(billing.KindInvoice, "INV-2026-003", &p.ID, 999, billing.StatusCancelled)
	save(billing.KindInvoice, "INV-2026-004", &other.ID, 500, billing.StatusSent)
	save(billing.KindVendorBill, "BILL-2026-001", &p.ID, 40, billing.StatusApproved)
	save(billing.KindSalesOrder, "SO-2026-001", &p.ID, 1000, billing.StatusConfirmed)
	save(billing.KindPurchaseOrder, "PO-2026-001", &p.ID, 300, billing.StatusDraft)

	addExpense := func(number string, amount string, status billing.Status) {
		e, err := billing.NewExpense(tenantID, billing.ExpenseInput{
			Number:      number,
			Amount:      decimal.RequireFromString(amount),
			Category:    billing.ExpenseCategoryTravel,
			ExpenseDate: time.Now(),
			ProjectID:   &p.ID,
		})
		require.NoError(t, err)
		if status != billing.StatusDraft {
			require.NoError(t, e.ChangeStatus(status))
		}
		require.NoError(t, expenses.Save(ctx, e))
	}
	addExpense("EXP-2026-001", "75.00", billing.StatusApproved)
	addExpense("EXP-2026-002", "12.30", billing.StatusPaid)
	addExpense("EXP-2026-003", "500", billing.StatusSubmitted)
	addExpense("EXP-2026-004", "800", billing.StatusRejected)

	totals, err := reader.SumByProject(ctx, tenantID, p.ID)
	require.NoError(t, err)

	assert.True(t, totals.Get(billing.KindInvoice).Equal(decimal.NewFromInt(350)), totals.Get(billing.KindInvoice).String())
	assert.True(t, totals.Get(billing.KindVendorBill).Equal(decimal.NewFromInt(40)))
	assert.True(t, totals.Get(billing.KindSalesOrder).Equal(decimal.NewFromInt(1000)))
	assert.True(t, totals.Get(billing.KindPurchaseOrder).Equal(decimal.NewFromInt(300)))
	assert.True(t, totals.Get(billing.KindExpense).Equal(decimal.RequireFromString("87.30")), totals.Get(billing.KindExpense).String())

	t.Run("empty project sums to zero for every kind", func(t *testing.T) {
		empty := createTestProject(t, db, tenantID)
		totals, err := reader.SumByProject(ctx, tenantID, empty.ID)
		require.NoError(t, err)
		for _, kind := range billing.AllKinds() {
			v, ok := totals[kind]
			assert.True(t, ok, kind)
			assert.True(t, v.IsZero(), kind)
		}
	})

	t.Run("other tenants see nothing", func(t *testing.T) {
		totals, err := reader.SumByProject(ctx, uuid.New(), p.ID)
		require.NoError(t, err)
		assert.True(t, totals.Get(billing.KindInvoice).IsZero())
	})
}
